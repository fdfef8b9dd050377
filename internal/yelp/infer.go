package yelp

import "strings"

// The search API does not expose dietary attributes, so they are inferred
// from the business name and category text with keyword rules. Each rule
// either adds its tag when a keyword is present (Any), withholds it when one
// is present (Exclude), or falls back to the upscale assumption (Upscale:
// $$$ and up kitchens accommodate the request). A positive Any match beats
// an Exclude match: a barbecue spot with a plant-based menu still earns the
// tag.
type dietaryRule struct {
	Tag     string
	Any     []string
	Exclude []string
	Upscale bool
}

var dietaryRules = []dietaryRule{
	{Tag: "Vegetarian", Any: []string{"vegan", "vegetarian", "plant", "salad", "mediterranean", "italian", "indian", "thai", "mexican"}, Exclude: []string{"steakhouse", "bbq", "barbecue", "smokehouse"}},
	{Tag: "Vegan", Any: []string{"vegan", "vegetarian", "plant", "salad", "mediterranean", "italian", "indian", "thai", "mexican"}, Upscale: true},
	{Tag: "Gluten-free", Any: []string{"gluten", "health", "salad", "mediterranean"}},
	{Tag: "Nut-free", Exclude: []string{"peanut", "almond", "walnut", "pecan"}},
	{Tag: "Halal", Any: []string{"halal", "middle", "mediterranean", "turkish", "lebanese", "pakistani", "indian"}},
	{Tag: "Kosher", Any: []string{"kosher", "jewish", "deli", "bagel"}},
	{Tag: "Dairy-free", Any: []string{"vegan", "asian", "thai", "vietnamese", "chinese", "japanese"}, Upscale: true},
	{Tag: "Soy-free", Exclude: []string{"asian", "chinese", "japanese", "korean", "sushi"}},
	{Tag: "Shellfish-free", Exclude: []string{"seafood", "sushi", "oyster", "crab", "lobster"}},
}

func isUpscale(price string) bool { return price == "$$$" || price == "$$$$" }

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// InferDietaryTags derives dietary tags from a listing's name, category
// aliases and price tier.
func InferDietaryTags(b *Business) []string {
	aliases := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		aliases = append(aliases, c.Alias)
	}
	text := strings.ToLower(b.Name + " " + strings.Join(aliases, " "))

	tags := []string{}
	for _, rule := range dietaryRules {
		switch {
		case containsAny(text, rule.Any):
			tags = append(tags, rule.Tag)
		case len(rule.Exclude) > 0:
			if !containsAny(text, rule.Exclude) {
				tags = append(tags, rule.Tag)
			}
		case rule.Upscale && isUpscale(b.Price):
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

// InferAmbiance derives a single ambiance tag. Price wins over category
// keywords; anything else is Casual.
func InferAmbiance(b *Business) string {
	if isUpscale(b.Price) {
		return "Upscale"
	}
	aliases := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		aliases = append(aliases, c.Alias)
	}
	text := strings.ToLower(strings.Join(aliases, " "))
	switch {
	case strings.Contains(text, "romantic"):
		return "Romantic"
	case strings.Contains(text, "family"):
		return "Family-friendly"
	default:
		return "Casual"
	}
}
