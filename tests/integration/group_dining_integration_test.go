//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("DINESYNC_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("%s %s: status %d: %s", method, url, resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, url, err, raw)
		}
	}
}

func TestGroupDiningJourney(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	base := baseURL()

	var session struct {
		ID string `json:"session_id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/sessions", map[string]string{
		"location": "Dallas, TX",
	}, &session)
	if session.ID == "" {
		t.Fatalf("no session id returned")
	}

	doJSON(t, client, http.MethodPost, base+"/api/sessions/"+session.ID+"/participants", map[string]any{
		"name":         "Alice",
		"cuisines":     []string{"Italian"},
		"budget":       "$$",
		"max_distance": 5.0,
	}, nil)
	doJSON(t, client, http.MethodPost, base+"/api/sessions/"+session.ID+"/participants", map[string]any{
		"name":                 "Bob",
		"cuisines":             []string{"Mexican"},
		"dietary_restrictions": []string{"Vegetarian"},
		"budget":               "$",
		"max_distance":         3.0,
	}, nil)
	doJSON(t, client, http.MethodPost, base+"/api/sessions/"+session.ID+"/ready", nil, nil)

	var results struct {
		Results []struct {
			Restaurant struct {
				Name string `json:"name"`
			} `json:"restaurant"`
			GroupScore       float64            `json:"group_score"`
			IndividualScores map[string]float64 `json:"individual_scores"`
			Explanation      string             `json:"explanation"`
		} `json:"results"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/sessions/"+session.ID+"/results", nil, &results)
	if len(results.Results) == 0 {
		t.Fatalf("no ranked results")
	}
	for i := 1; i < len(results.Results); i++ {
		if results.Results[i].GroupScore > results.Results[i-1].GroupScore {
			t.Fatalf("results not ranked descending at %d", i)
		}
	}
	top := results.Results[0]
	if len(top.IndividualScores) != 2 || top.Explanation == "" {
		t.Fatalf("incomplete result: %+v", top)
	}
}

func TestTrainingLedgerJourney(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	base := baseURL()
	username := fmt.Sprintf("trainee %d", time.Now().Unix()%100000)
	userBase := base + "/api/users/" + username

	doJSON(t, client, http.MethodPost, userBase+"/businesses", map[string]any{
		"business":        "Cozy Cafe",
		"location":        "Oakland",
		"business_type":   "cafe",
		"total_scenarios": 2,
		"scenario_titles": []string{"Angry review", "Mixed review"},
	}, nil)

	for _, score := range []float64{7.5, 9.6} {
		doJSON(t, client, http.MethodPost, userBase+"/attempts", map[string]any{
			"business": "Cozy Cafe",
			"score":    score,
		}, nil)
	}
	for i := 0; i < 2; i++ {
		doJSON(t, client, http.MethodPost,
			fmt.Sprintf("%s/businesses/Cozy Cafe/scenarios/%d/complete", userBase, i), nil, nil)
	}

	var stats struct {
		TotalAttempts       int      `json:"total_attempts"`
		AvgScore            float64  `json:"avg_score"`
		CompletedBusinesses int      `json:"completed_businesses"`
		Badges              []string `json:"badges"`
	}
	doJSON(t, client, http.MethodGet, userBase+"/stats", nil, &stats)
	if stats.TotalAttempts != 2 || stats.CompletedBusinesses != 1 {
		t.Fatalf("stats %+v", stats)
	}
	if len(stats.Badges) == 0 {
		t.Fatalf("expected at least the first badge, got %v", stats.Badges)
	}

	doJSON(t, client, http.MethodPost, userBase+"/certificates", map[string]any{
		"business":  "Cozy Cafe",
		"avg_score": stats.AvgScore,
	}, nil)

	var board struct {
		Leaderboard []struct {
			Username string `json:"username"`
		} `json:"leaderboard"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/leaderboard?business=Cozy+Cafe", nil, &board)
	found := false
	for _, e := range board.Leaderboard {
		if e.Username == username {
			found = true
		}
	}
	if !found {
		t.Fatalf("user missing from business leaderboard: %+v", board.Leaderboard)
	}

	// Cleanup so reruns start fresh.
	doJSON(t, client, http.MethodDelete, userBase, nil, nil)
}
