package yelp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func biz(name, price string, aliases ...string) *Business {
	b := &Business{Name: name, Price: price}
	for _, a := range aliases {
		b.Categories = append(b.Categories, Category{Alias: a, Title: a})
	}
	return b
}

func TestInferDietaryTagsSteakhouse(t *testing.T) {
	tags := InferDietaryTags(biz("Prime Steakhouse", "$$$", "steak"))
	assert.NotContains(t, tags, "Vegetarian")
	// Upscale fallback still applies to the vegan and dairy-free rules.
	assert.Contains(t, tags, "Vegan")
	assert.Contains(t, tags, "Dairy-free")
}

func TestInferDietaryTagsPlantForwardBarbecue(t *testing.T) {
	// A plant-based indicator outranks the barbecue exclusion.
	tags := InferDietaryTags(biz("Plant City BBQ", "$$", "bbq", "vegan"))
	assert.Contains(t, tags, "Vegetarian")
	assert.Contains(t, tags, "Vegan")
}

func TestInferDietaryTagsMediterranean(t *testing.T) {
	tags := InferDietaryTags(biz("Olive Grove", "$$", "mediterranean"))
	assert.Contains(t, tags, "Vegetarian")
	assert.Contains(t, tags, "Vegan")
	assert.Contains(t, tags, "Gluten-free")
	assert.Contains(t, tags, "Halal")
	assert.Contains(t, tags, "Soy-free")
	assert.Contains(t, tags, "Shellfish-free")
	assert.NotContains(t, tags, "Kosher")
}

func TestInferDietaryTagsSushi(t *testing.T) {
	tags := InferDietaryTags(biz("Sushi Palace", "$$", "sushi", "japanese"))
	assert.Contains(t, tags, "Dairy-free")
	assert.NotContains(t, tags, "Soy-free")
	assert.NotContains(t, tags, "Shellfish-free")
}

func TestInferDietaryTagsNutFocused(t *testing.T) {
	tags := InferDietaryTags(biz("The Peanut House", "$", "southern"))
	assert.NotContains(t, tags, "Nut-free")

	tags = InferDietaryTags(biz("Corner Diner", "$", "diners"))
	assert.Contains(t, tags, "Nut-free")
}

func TestInferDietaryTagsKosherDeli(t *testing.T) {
	tags := InferDietaryTags(biz("Katz's", "$$", "deli"))
	assert.Contains(t, tags, "Kosher")
}

func TestInferAmbiance(t *testing.T) {
	assert.Equal(t, "Upscale", InferAmbiance(biz("Le Petit Bistro", "$$$$", "french")))
	assert.Equal(t, "Romantic", InferAmbiance(biz("Bella", "$$", "romantic")))
	assert.Equal(t, "Family-friendly", InferAmbiance(biz("Dragon", "$$", "familyrestaurants")))
	assert.Equal(t, "Casual", InferAmbiance(biz("Taco Fiesta", "$", "mexican")))
	// Price outranks category keywords.
	assert.Equal(t, "Upscale", InferAmbiance(biz("Bella", "$$$", "romantic")))
}
