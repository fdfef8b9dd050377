// Package yelp holds the clients for the Yelp Fusion search API and the
// Yelp AI chat API, plus the heuristics that turn raw business listings
// into scoreable restaurant attributes.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultFusionBaseURL = "https://api.yelp.com/v3"

	maxSearchLimit  = 50
	maxRadiusMeters = 40000
)

// cuisineCategories maps common cuisine names to Yelp category aliases.
// Unknown cuisines are dropped from the filter rather than guessed.
var cuisineCategories = map[string]string{
	"italian":        "italian",
	"mexican":        "mexican",
	"chinese":        "chinese",
	"japanese":       "japanese",
	"thai":           "thai",
	"indian":         "indpak",
	"american":       "newamerican",
	"french":         "french",
	"mediterranean":  "mediterranean",
	"korean":         "korean",
	"vietnamese":     "vietnamese",
	"greek":          "greek",
	"spanish":        "spanish",
	"middle eastern": "mideastern",
}

// APIError is a non-2xx response from a Yelp API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yelp api error %d: %s", e.StatusCode, e.Body)
}

// Client calls the Yelp Fusion API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultFusionBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SearchQuery is one businesses/search call.
type SearchQuery struct {
	Location     string
	Cuisines     []string // cuisine names, mapped to category aliases
	Prices       []string // "$".."$$$$"
	RadiusMeters int
	Limit        int
}

// Category is one Yelp business category.
type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// Business is one listing from the search response. Distance is meters.
type Business struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Categories  []Category `json:"categories"`
	Price       string     `json:"price"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Distance    float64    `json:"distance"`
	Location    struct {
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}

type searchResponse struct {
	Businesses []Business `json:"businesses"`
}

// SearchRestaurants runs a restaurant search. Limit and radius are capped at
// the API maximums; an empty cuisine filter falls back to the generic
// restaurants category.
func (c *Client) SearchRestaurants(ctx context.Context, q SearchQuery) ([]Business, error) {
	params := url.Values{}
	params.Set("location", q.Location)

	categories := []string{}
	for _, cuisine := range q.Cuisines {
		if alias, ok := cuisineCategories[strings.ToLower(cuisine)]; ok {
			categories = append(categories, alias)
		}
	}
	if len(categories) == 0 {
		categories = []string{"restaurants"}
	}
	params.Set("categories", strings.Join(categories, ","))

	if len(q.Prices) > 0 {
		// Tier number is the symbol count: "$" is 1, "$$$$" is 4.
		tiers := make([]string, 0, len(q.Prices))
		for _, p := range q.Prices {
			if n := len(p); n >= 1 && n <= 4 && p == strings.Repeat("$", n) {
				tiers = append(tiers, strconv.Itoa(n))
			}
		}
		if len(tiers) > 0 {
			params.Set("price", strings.Join(tiers, ","))
		}
	}

	limit := q.Limit
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	params.Set("limit", strconv.Itoa(limit))

	if q.RadiusMeters > 0 {
		radius := q.RadiusMeters
		if radius > maxRadiusMeters {
			radius = maxRadiusMeters
		}
		params.Set("radius", strconv.Itoa(radius))
	}

	var resp searchResponse
	if err := c.get(ctx, "/businesses/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Businesses, nil
}

// BusinessDetails fetches one business by its Yelp id.
func (c *Client) BusinessDetails(ctx context.Context, id string) (*Business, error) {
	var biz Business
	if err := c.get(ctx, "/businesses/"+url.PathEscape(id), &biz); err != nil {
		return nil, err
	}
	return &biz, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build yelp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("yelp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode yelp response: %w", err)
	}
	return nil
}
