package services

import (
	"fmt"
	"sort"
	"strings"
)

// Scoring weights per participant (total = 100).
const (
	cuisineWeight  = 30.0
	dietaryWeight  = 25.0 // all-or-nothing
	priceWeight    = 20.0
	distanceWeight = 15.0
	ambianceWeight = 10.0
)

// budgetTiers maps price strings to ordinal tiers.
var budgetTiers = map[string]int{"$": 1, "$$": 2, "$$$": 3, "$$$$": 4}

// budgetTier returns the ordinal tier for a price string. Unknown values
// default to tier 2; scoring stays defensive here, malformed input is
// rejected at ingestion instead.
func budgetTier(price string) int {
	if v, ok := budgetTiers[price]; ok {
		return v
	}
	return 2
}

// ConsensusEngine scores restaurants against participant preferences.
//
// Individual scores are a weighted sum over cuisine, dietary options, price,
// distance and ambiance, normalized to [0,1]. Vetoed or dietary-violating
// restaurants score exactly 0. The group score blends average satisfaction
// with the least-satisfied participant (70%/30%) so one unhappy diner drags
// an otherwise popular option down.
type ConsensusEngine struct{}

func NewConsensusEngine() *ConsensusEngine { return &ConsensusEngine{} }

// IndividualScore returns how well one restaurant matches one participant,
// in [0,1]. It never fails: constraint violations score 0 instead.
func (e *ConsensusEngine) IndividualScore(r *Restaurant, p *Preference) float64 {
	// Veto keywords are absolute dealbreakers, checked against the
	// restaurant's name and cuisine text before anything else.
	if len(p.VetoItems) > 0 {
		text := strings.ToLower(r.Name + " " + r.Cuisine)
		for _, veto := range p.VetoItems {
			v := strings.ToLower(strings.TrimSpace(veto))
			if v != "" && strings.Contains(text, v) {
				return 0.0
			}
		}
	}

	score := 0.0

	// Dietary restrictions are a hard requirement: every required tag must
	// be offered or the restaurant scores 0 outright.
	if len(p.Dietary) > 0 {
		offered := make(map[string]bool, len(r.DietaryOptions))
		for _, opt := range r.DietaryOptions {
			offered[strings.ToLower(opt)] = true
		}
		for _, need := range p.Dietary {
			if !offered[strings.ToLower(need)] {
				return 0.0
			}
		}
	}
	score += dietaryWeight

	// Cuisine: exact match full, substring either way half, no stated
	// preference neutral half.
	if len(p.Cuisines) == 0 {
		score += cuisineWeight * 0.5
	} else {
		cuisine := strings.ToLower(r.Cuisine)
		matched := 0.0
		for _, c := range p.Cuisines {
			if strings.ToLower(c) == cuisine {
				matched = cuisineWeight
				break
			}
		}
		if matched == 0 {
			for _, c := range p.Cuisines {
				lc := strings.ToLower(c)
				if strings.Contains(cuisine, lc) || strings.Contains(lc, cuisine) {
					matched = cuisineWeight * 0.5
					break
				}
			}
		}
		score += matched
	}

	// Price: same tier full, one tier off half, further off nothing.
	// Either side unset scores neutral half.
	if p.Budget != "" && r.Price != "" {
		diff := budgetTier(p.Budget) - budgetTier(r.Price)
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			score += priceWeight
		case 1:
			score += priceWeight * 0.5
		}
	} else {
		score += priceWeight * 0.5
	}

	// Distance: linear falloff from full credit at the door to zero at the
	// participant's limit; beyond the limit scores nothing.
	if p.MaxDistance > 0 && r.Distance <= p.MaxDistance {
		score += distanceWeight * (1 - r.Distance/p.MaxDistance)
	}

	// Ambiance: tri-level like cuisine, against the restaurant's single tag.
	if len(p.Ambiance) > 0 && r.Ambiance != "" {
		ambiance := strings.ToLower(r.Ambiance)
		matched := 0.0
		for _, a := range p.Ambiance {
			if strings.ToLower(a) == ambiance {
				matched = ambianceWeight
				break
			}
		}
		if matched == 0 {
			for _, a := range p.Ambiance {
				la := strings.ToLower(a)
				if strings.Contains(ambiance, la) || strings.Contains(la, ambiance) {
					matched = ambianceWeight * 0.5
					break
				}
			}
		}
		score += matched
	} else {
		score += ambianceWeight * 0.5
	}

	return score / 100.0
}

// GroupScore scores one restaurant for the whole group.
func (e *ConsensusEngine) GroupScore(r *Restaurant, prefs []*Preference) *ConsensusResult {
	if len(prefs) == 0 {
		return &ConsensusResult{
			Restaurant:       r,
			IndividualScores: map[string]float64{},
			Explanation:      "No participants to score",
		}
	}

	individual := make(map[string]float64, len(prefs))
	sum := 0.0
	minScore, maxScore := 1.0, 0.0
	compromiser := ""
	for _, p := range prefs {
		s := e.IndividualScore(r, p)
		individual[p.Name] = s
		sum += s
		if s > maxScore {
			maxScore = s
		}
		// First participant in arrival order wins ties for the compromiser.
		if compromiser == "" || s < minScore {
			minScore = s
			compromiser = p.Name
		}
	}
	avg := sum / float64(len(prefs))

	return &ConsensusResult{
		Restaurant:       r,
		GroupScore:       avg*0.7 + minScore*0.3,
		IndividualScores: individual,
		CompromiseLevel:  minScore,
		Explanation:      explainScores(compromiser, minScore, maxScore),
	}
}

func explainScores(compromiser string, minScore, maxScore float64) string {
	switch {
	case maxScore-minScore < 0.1:
		return "Everyone loves this option equally"
	case minScore < 0.5:
		return fmt.Sprintf("%s is making a big compromise here", compromiser)
	case minScore < 0.7:
		return fmt.Sprintf("Fair compromise - %s is least satisfied but still okay", compromiser)
	default:
		return "Great option for everyone"
	}
}

// Rank scores every restaurant for the group and sorts best first. The sort
// is stable so identical inputs always produce identical orderings.
func (e *ConsensusEngine) Rank(restaurants []*Restaurant, prefs []*Preference) []*ConsensusResult {
	results := make([]*ConsensusResult, 0, len(restaurants))
	for _, r := range restaurants {
		results = append(results, e.GroupScore(r, prefs))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].GroupScore > results[j].GroupScore
	})
	return results
}
