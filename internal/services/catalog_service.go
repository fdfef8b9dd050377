package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dinesync/dinesync/internal/yelp"
)

const metersPerMile = 1609.34

// RestaurantSearcher is the external catalog provider.
type RestaurantSearcher interface {
	SearchRestaurants(ctx context.Context, q yelp.SearchQuery) ([]yelp.Business, error)
}

// CatalogService assembles the candidate restaurant list for a session:
// one provider search over the union of the group's constraints, with
// dietary and ambiance tags inferred from the listings. When the provider
// is unreachable it degrades to built-in sample data so a session can still
// produce a ranking.
type CatalogService struct {
	searcher RestaurantSearcher
	log      logrus.FieldLogger
}

func NewCatalogService(searcher RestaurantSearcher, log logrus.FieldLogger) *CatalogService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogService{searcher: searcher, log: log}
}

// Candidates searches near the session location using the widest constraints
// any participant stated. An empty result is a valid no-results outcome, not
// an error.
func (c *CatalogService) Candidates(ctx context.Context, location string, prefs []*Preference) ([]*Restaurant, error) {
	cuisines, prices, maxDist := unionConstraints(prefs)

	query := yelp.SearchQuery{
		Location: location,
		Cuisines: cuisines,
		Prices:   prices,
		Limit:    50,
	}
	if maxDist > 0 {
		query.RadiusMeters = int(maxDist * metersPerMile)
	}

	businesses, err := c.searcher.SearchRestaurants(ctx, query)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"location": location,
			"error":    err,
		}).Warn("restaurant search failed, using sample data")
		return sampleRestaurants(cuisines, location), nil
	}

	restaurants := make([]*Restaurant, 0, len(businesses))
	for i := range businesses {
		restaurants = append(restaurants, fromBusiness(&businesses[i], location))
	}
	return restaurants, nil
}

// unionConstraints widens the search to cover every participant: all stated
// cuisines (an "Any" entry drops the filter for that person), all budget
// tiers, and the largest distance limit. Results come back sorted for
// deterministic queries.
func unionConstraints(prefs []*Preference) (cuisines, prices []string, maxDist float64) {
	cuisineSet := map[string]bool{}
	priceSet := map[string]bool{}
	for _, p := range prefs {
		for _, c := range p.Cuisines {
			if c != "" && c != "Any" {
				cuisineSet[c] = true
			}
		}
		if p.Budget != "" {
			priceSet[p.Budget] = true
		}
		if p.MaxDistance > maxDist {
			maxDist = p.MaxDistance
		}
	}
	for c := range cuisineSet {
		cuisines = append(cuisines, c)
	}
	for p := range priceSet {
		prices = append(prices, p)
	}
	sort.Strings(cuisines)
	sort.Strings(prices)
	return cuisines, prices, maxDist
}

func fromBusiness(b *yelp.Business, location string) *Restaurant {
	cuisine := "Various"
	if len(b.Categories) > 0 && b.Categories[0].Title != "" {
		cuisine = b.Categories[0].Title
	}
	price := b.Price
	if price == "" {
		price = "$$"
	}
	address := location
	if len(b.Location.DisplayAddress) > 0 && b.Location.DisplayAddress[0] != "" {
		address = b.Location.DisplayAddress[0]
	}
	rating := b.Rating
	if rating == 0 {
		rating = 4.0
	}
	snippet := "Great food and service!"
	if b.ReviewCount > 0 {
		snippet = fmt.Sprintf("Rated %.1f stars by %d reviewers", rating, b.ReviewCount)
	}
	return &Restaurant{
		Name:           b.Name,
		Cuisine:        cuisine,
		Price:          price,
		Distance:       math.Round(b.Distance/metersPerMile*10) / 10,
		Rating:         rating,
		DietaryOptions: yelp.InferDietaryTags(b),
		Ambiance:       yelp.InferAmbiance(b),
		Address:        address,
		ReviewSnippet:  snippet,
	}
}
