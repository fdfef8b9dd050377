package services

import (
	"fmt"
	"math"
	"strings"
)

// sampleTemplate seeds the offline fallback catalog for one cuisine.
type sampleTemplate struct {
	Name          string
	Price         string
	Distance      float64
	Rating        float64
	Dietary       []string
	Ambiance      string
	ReviewSnippet string
}

var sampleTemplates = map[string]sampleTemplate{
	"Italian":        {"Trattoria Bella", "$$", 1.2, 4.5, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Romantic", "Amazing pasta and great atmosphere!"},
	"Mexican":        {"Taco Fiesta", "$", 0.8, 4.3, []string{"Vegetarian", "Vegan"}, "Casual", "Best tacos in town, super affordable!"},
	"Japanese":       {"Sushi Palace", "$$$", 2.1, 4.7, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Upscale", "Fresh fish and elegant presentation"},
	"Indian":         {"Spice Garden", "$$", 1.5, 4.6, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Casual", "Authentic flavors and generous portions!"},
	"Chinese":        {"Golden Dragon", "$$", 1.8, 4.4, []string{"Vegetarian", "Vegan"}, "Family-friendly", "Delicious dim sum and friendly service"},
	"Thai":           {"Bangkok Bistro", "$$", 2.0, 4.5, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Cozy", "Perfect balance of flavors, love the curry!"},
	"American":       {"The Burger Joint", "$", 0.5, 4.2, []string{"Vegetarian", "Vegan"}, "Casual", "Classic American comfort food done right"},
	"French":         {"Le Petit Bistro", "$$$$", 2.5, 4.8, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Romantic", "Exquisite French cuisine, worth every penny"},
	"Mediterranean":  {"Olive Grove", "$$", 1.3, 4.5, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Casual", "Fresh ingredients and healthy options"},
	"Korean":         {"Seoul Kitchen", "$$", 1.9, 4.6, []string{"Vegetarian", "Vegan"}, "Trendy", "Amazing BBQ and banchan selection"},
	"Vietnamese":     {"Pho Paradise", "$", 1.1, 4.4, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Casual", "Best pho in town, fresh and flavorful"},
	"Greek":          {"Athena's Table", "$$", 1.7, 4.5, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Family-friendly", "Authentic Greek food with great atmosphere"},
	"Spanish":        {"Tapas Bar", "$$$", 2.2, 4.7, []string{"Vegetarian", "Vegan", "Gluten-free"}, "Lively", "Amazing tapas and sangria selection"},
	"Middle Eastern": {"Cedar Grill", "$$", 1.4, 4.5, []string{"Vegetarian", "Vegan", "Halal"}, "Casual", "Delicious shawarma and fresh hummus"},
}

// alternate price tier used by each template's second variation.
var samplePriceVariations = map[string]string{"$": "$$", "$$": "$$$", "$$$": "$$", "$$$$": "$$$"}

// sampleRestaurants builds an offline candidate list for the requested
// cuisines: the template restaurant, a pricier downtown variation, and a
// budget express option while the list is still short. With no recognized
// cuisines it falls back to a default trio.
func sampleRestaurants(cuisines []string, location string) []*Restaurant {
	if location == "" {
		location = "Dallas, TX"
	}
	selected := []string{}
	for _, c := range cuisines {
		if _, ok := sampleTemplates[c]; ok {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		selected = []string{"Italian", "Mexican", "Japanese"}
	}

	restaurants := []*Restaurant{}
	for _, cuisine := range selected {
		tpl := sampleTemplates[cuisine]

		restaurants = append(restaurants, &Restaurant{
			Name:           tpl.Name,
			Cuisine:        cuisine,
			Price:          tpl.Price,
			Distance:       tpl.Distance,
			Rating:         tpl.Rating,
			DietaryOptions: tpl.Dietary,
			Ambiance:       tpl.Ambiance,
			Address:        fmt.Sprintf("%s, %s", tpl.Name, location),
			ReviewSnippet:  tpl.ReviewSnippet,
		})

		altPrice := samplePriceVariations[tpl.Price]
		if altPrice == "" {
			altPrice = "$$"
		}
		restaurants = append(restaurants, &Restaurant{
			Name:           tpl.Name + " Downtown",
			Cuisine:        cuisine,
			Price:          altPrice,
			Distance:       tpl.Distance + 1.5,
			Rating:         math.Max(3.8, tpl.Rating-0.3),
			DietaryOptions: tpl.Dietary,
			Ambiance:       tpl.Ambiance,
			Address:        fmt.Sprintf("%s Downtown, %s", tpl.Name, location),
			ReviewSnippet:  fmt.Sprintf("Great %s food with a modern twist!", strings.ToLower(cuisine)),
		})

		if len(restaurants) < 5 {
			price := "$"
			if tpl.Price == "$" {
				price = "$$"
			}
			dietary := tpl.Dietary
			if len(dietary) > 1 {
				dietary = dietary[:1]
			}
			restaurants = append(restaurants, &Restaurant{
				Name:           cuisine + " Express",
				Cuisine:        cuisine,
				Price:          price,
				Distance:       tpl.Distance + 0.5,
				Rating:         math.Max(3.5, tpl.Rating-0.5),
				DietaryOptions: dietary,
				Ambiance:       "Casual",
				Address:        fmt.Sprintf("%s Express, %s", cuisine, location),
				ReviewSnippet:  fmt.Sprintf("Quick and tasty %s cuisine at great prices!", strings.ToLower(cuisine)),
			})
		}
	}
	return restaurants
}
