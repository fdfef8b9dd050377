package services

import "time"

// Preference holds one participant's dining constraints for a session.
type Preference struct {
	Name        string    `json:"name"`
	Cuisines    []string  `json:"cuisines,omitempty"`
	Dietary     []string  `json:"dietary_restrictions,omitempty"`
	Budget      string    `json:"budget,omitempty"` // "$".."$$$$"
	MaxDistance float64   `json:"max_distance"`     // miles
	Ambiance    []string  `json:"ambiance,omitempty"`
	VetoItems   []string  `json:"veto_items,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Restaurant is one candidate being scored. Immutable once scored.
type Restaurant struct {
	Name           string   `json:"name"`
	Cuisine        string   `json:"cuisine"`
	Price          string   `json:"price"`
	Distance       float64  `json:"distance"` // miles from the session location
	Rating         float64  `json:"rating"`
	DietaryOptions []string `json:"dietary_options,omitempty"`
	Ambiance       string   `json:"ambiance,omitempty"`
	Address        string   `json:"address,omitempty"`
	ReviewSnippet  string   `json:"review_snippet,omitempty"`
}

// ConsensusResult is derived on demand and never persisted.
type ConsensusResult struct {
	Restaurant       *Restaurant        `json:"restaurant"`
	GroupScore       float64            `json:"group_score"`
	IndividualScores map[string]float64 `json:"individual_scores"`
	CompromiseLevel  float64            `json:"compromise_level"`
	Explanation      string             `json:"explanation"`
}

// Session is a group dining session. Participant order is arrival order.
type Session struct {
	ID           string       `json:"session_id"`
	Location     string       `json:"location"`
	CreatedAt    time.Time    `json:"created_at"`
	Participants []Preference `json:"participants"`
	ResultsReady bool         `json:"results_ready"`
}

// Certificate records the best average score a user achieved for a business.
// At most one certificate exists per (user, business) pair.
type Certificate struct {
	BusinessName string    `json:"business_name"`
	AvgScore     float64   `json:"avg_score"`
	AwardedAt    time.Time `json:"awarded_at"`
}

// BusinessProgress tracks one user's training progress for one business.
type BusinessProgress struct {
	Location           string    `json:"location,omitempty"`
	BusinessType       string    `json:"business_type,omitempty"`
	TotalScenarios     int       `json:"total_scenarios"`
	CompletedScenarios []int     `json:"completed_scenarios"`
	ScenarioTitles     []string  `json:"scenario_titles,omitempty"`
	Scores             []float64 `json:"scores"`
	Attempts           int       `json:"attempts"`
	Completed          bool      `json:"completed"`
	StartedAt          time.Time `json:"started_at"`
	LastUpdated        time.Time `json:"last_updated"`
}

// UserProfile is the persisted ledger record for one trainee.
// RecentScores keeps the last five recorded scores for the rolling
// perfect-score badge check; records persisted before the field existed
// load with it empty.
type UserProfile struct {
	Username      string                       `json:"username"`
	CreatedAt     time.Time                    `json:"created_at"`
	Businesses    map[string]*BusinessProgress `json:"businesses"`
	TotalAttempts int                          `json:"total_attempts"`
	TotalScore    float64                      `json:"total_score"`
	RecentScores  []float64                    `json:"recent_scores,omitempty"`
	Badges        []string                     `json:"badges"`
	Certificates  []Certificate                `json:"certificates"`
}
