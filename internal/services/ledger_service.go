package services

import (
	"fmt"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"
)

// Badge names, awarded cumulatively and never revoked.
const (
	badgeFirstSteps   = "First Steps"
	badgePractice     = "Practice Makes Perfect"
	badgeMaster       = "Master Trainer"
	badgeHighAchiever = "High Achiever"
	badgePerfect      = "Perfect Score"
)

// Certification tier thresholds. Tiers are evaluated independently and the
// highest one whose conditions all hold is reported.
const (
	CertNone   = "None"
	CertBronze = "Bronze"
	CertSilver = "Silver"
	CertGold   = "Gold"
)

// recentWindow is how many trailing scores are kept on the profile for the
// rolling perfect-score check and trend reporting.
const recentWindow = 5

// LedgerStore abstracts persistence operations required by LedgerService.
type LedgerStore interface {
	GetUser(username string) (*UserProfile, error)
	PutUser(u *UserProfile) error
	DeleteUser(username string) (bool, error)
	ListUsers() ([]*UserProfile, error)
}

// LedgerService tracks per-user training history: scored attempts, badge and
// certificate eligibility, and leaderboard ranking. Unknown usernames are
// created on first touch; no ledger operation fails for a missing user.
type LedgerService struct {
	store LedgerStore
	now   func() time.Time
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ValidateUsername enforces the username rules with rule-specific messages
// so callers can tell a length failure from a character-set failure.
func ValidateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < 3 || n > 20 {
		return NewInvalidError("username must be between 3 and 20 characters")
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			continue
		}
		return NewInvalidError("username may only contain letters, numbers, spaces and underscores")
	}
	return nil
}

func (s *LedgerService) getOrCreate(username string) (*UserProfile, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u = &UserProfile{
			Username:     username,
			CreatedAt:    s.now(),
			Businesses:   map[string]*BusinessProgress{},
			Badges:       []string{},
			Certificates: []Certificate{},
		}
		if err := s.store.PutUser(u); err != nil {
			return nil, err
		}
		return u, nil
	}
	// Records persisted before a field existed load with it nil.
	if u.Businesses == nil {
		u.Businesses = map[string]*BusinessProgress{}
	}
	return u, nil
}

// Profile returns the user's ledger record, creating it if needed.
func (s *LedgerService) Profile(username string) (*UserProfile, error) {
	return s.getOrCreate(username)
}

func (s *LedgerService) ensureBusiness(u *UserProfile, business string) *BusinessProgress {
	bp := u.Businesses[business]
	if bp == nil {
		bp = &BusinessProgress{
			CompletedScenarios: []int{},
			Scores:             []float64{},
			StartedAt:          s.now(),
			LastUpdated:        s.now(),
		}
		u.Businesses[business] = bp
	}
	return bp
}

// RecordAttempt appends one scored attempt to the user's history for the
// given business. Attempt recording alone never flips the completed flag;
// that is driven by CompleteScenario.
func (s *LedgerService) RecordAttempt(username, business string, score float64) (*UserProfile, error) {
	if business == "" {
		return nil, NewInvalidError("business name required")
	}
	if score < 0 || score > 10 {
		return nil, NewInvalidError("score must be between 0 and 10")
	}
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	bp := s.ensureBusiness(u, business)
	bp.Scores = append(bp.Scores, score)
	bp.Attempts = len(bp.Scores)
	bp.LastUpdated = s.now()

	u.TotalAttempts++
	u.TotalScore += score
	u.RecentScores = append(u.RecentScores, score)
	if len(u.RecentScores) > recentWindow {
		u.RecentScores = u.RecentScores[len(u.RecentScores)-recentWindow:]
	}
	s.checkBadges(u)

	if err := s.store.PutUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *LedgerService) checkBadges(u *UserProfile) {
	award := func(name string, earned bool) {
		if !earned {
			return
		}
		for _, b := range u.Badges {
			if b == name {
				return
			}
		}
		u.Badges = append(u.Badges, name)
	}
	avg := averageScore(u)
	award(badgeFirstSteps, u.TotalAttempts >= 1)
	award(badgePractice, u.TotalAttempts >= 10)
	award(badgeMaster, u.TotalAttempts >= 50)
	award(badgeHighAchiever, u.TotalAttempts >= 5 && avg >= 8.0)
	for _, sc := range u.RecentScores {
		if sc >= 9.5 {
			award(badgePerfect, true)
			break
		}
	}
}

func averageScore(u *UserProfile) float64 {
	if u.TotalAttempts == 0 {
		return 0
	}
	return u.TotalScore / float64(u.TotalAttempts)
}

func businessAverage(bp *BusinessProgress) float64 {
	if len(bp.Scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, sc := range bp.Scores {
		sum += sc
	}
	return sum / float64(len(bp.Scores))
}

// UserStats is a derived summary of one user's ledger, recomputed on read.
type UserStats struct {
	Username            string    `json:"username"`
	TotalAttempts       int       `json:"total_attempts"`
	AvgScore            float64   `json:"avg_score"`
	TotalBusinesses     int       `json:"total_businesses"`
	CompletedBusinesses int       `json:"completed_businesses"`
	Badges              []string  `json:"badges"`
	CertificateCount    int       `json:"certificate_count"`
	MemberSince         time.Time `json:"member_since"`
}

func (s *LedgerService) Stats(username string) (*UserStats, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, bp := range u.Businesses {
		if bp.Completed {
			completed++
		}
	}
	badges := u.Badges
	if badges == nil {
		badges = []string{}
	}
	return &UserStats{
		Username:            u.Username,
		TotalAttempts:       u.TotalAttempts,
		AvgScore:            averageScore(u),
		TotalBusinesses:     len(u.Businesses),
		CompletedBusinesses: completed,
		Badges:              badges,
		CertificateCount:    len(u.Certificates),
		MemberSince:         u.CreatedAt,
	}, nil
}

// AwardCertificate upserts the certificate for (user, business). An existing
// certificate is replaced only by a strictly higher average score; it is
// never downgraded and never duplicated.
func (s *LedgerService) AwardCertificate(username, business string, avgScore float64) (*Certificate, error) {
	if business == "" {
		return nil, NewInvalidError("business name required")
	}
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	for i := range u.Certificates {
		if u.Certificates[i].BusinessName != business {
			continue
		}
		if avgScore > u.Certificates[i].AvgScore {
			u.Certificates[i].AvgScore = avgScore
			u.Certificates[i].AwardedAt = s.now()
			if err := s.store.PutUser(u); err != nil {
				return nil, err
			}
		}
		cert := u.Certificates[i]
		return &cert, nil
	}
	cert := Certificate{BusinessName: business, AvgScore: avgScore, AwardedAt: s.now()}
	u.Certificates = append(u.Certificates, cert)
	if err := s.store.PutUser(u); err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *LedgerService) Certificates(username string) ([]Certificate, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	if u.Certificates == nil {
		return []Certificate{}, nil
	}
	return u.Certificates, nil
}

// LeaderboardEntry is one ranked row. Completed is only meaningful for
// business-scoped boards.
type LeaderboardEntry struct {
	Username      string  `json:"username"`
	AvgScore      float64 `json:"avg_score"`
	TotalAttempts int     `json:"total_attempts"`
	Completed     bool    `json:"completed,omitempty"`
}

// Leaderboard ranks users. With an empty business it is global: every user
// with at least one attempt, by average score descending. With a business it
// covers users with progress on that business, by (average, completed)
// descending, so completed runs outrank incomplete ones at equal score.
func (s *LedgerService) Leaderboard(business string) ([]LeaderboardEntry, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}
	// Pre-sort by username so equal scores rank deterministically.
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	entries := []LeaderboardEntry{}
	for _, u := range users {
		if business == "" {
			if u.TotalAttempts == 0 {
				continue
			}
			entries = append(entries, LeaderboardEntry{
				Username:      u.Username,
				AvgScore:      averageScore(u),
				TotalAttempts: u.TotalAttempts,
			})
			continue
		}
		bp := u.Businesses[business]
		if bp == nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Username:      u.Username,
			AvgScore:      businessAverage(bp),
			TotalAttempts: bp.Attempts,
			Completed:     bp.Completed,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AvgScore != entries[j].AvgScore {
			return entries[i].AvgScore > entries[j].AvgScore
		}
		if business != "" && entries[i].Completed != entries[j].Completed {
			return entries[i].Completed
		}
		return false
	})
	return entries, nil
}

// CertificationStatus reports the user's current tier plus what is still
// missing for the next one. Tiers are derived on read, never persisted.
type CertificationStatus struct {
	Level         string   `json:"level"`
	TotalAttempts int      `json:"total_attempts"`
	AvgScore      float64  `json:"avg_score"`
	BadgeCount    int      `json:"badge_count"`
	NextLevel     string   `json:"next_level,omitempty"`
	Requirements  []string `json:"requirements,omitempty"`
}

type certTier struct {
	name     string
	attempts int
	avg      float64
	badges   int
}

var certTiers = []certTier{
	{CertBronze, 10, 6.0, 0},
	{CertSilver, 25, 7.5, 3},
	{CertGold, 50, 8.5, 5},
}

func (t certTier) holds(attempts int, avg float64, badges int) bool {
	return attempts >= t.attempts && avg >= t.avg && badges >= t.badges
}

func (s *LedgerService) Certification(username string) (*CertificationStatus, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	attempts, avg, badges := u.TotalAttempts, averageScore(u), len(u.Badges)

	status := &CertificationStatus{
		Level:         CertNone,
		TotalAttempts: attempts,
		AvgScore:      avg,
		BadgeCount:    badges,
	}
	next := -1
	for i, tier := range certTiers {
		if tier.holds(attempts, avg, badges) {
			status.Level = tier.name
		} else if next < 0 {
			next = i
		}
	}
	if next >= 0 {
		tier := certTiers[next]
		status.NextLevel = tier.name
		if attempts < tier.attempts {
			status.Requirements = append(status.Requirements,
				fmt.Sprintf("at least %d attempts (have %d)", tier.attempts, attempts))
		}
		if avg < tier.avg {
			status.Requirements = append(status.Requirements,
				fmt.Sprintf("average score %.1f or higher (have %.1f)", tier.avg, avg))
		}
		if badges < tier.badges {
			status.Requirements = append(status.Requirements,
				fmt.Sprintf("at least %d badges (have %d)", tier.badges, badges))
		}
	}
	return status, nil
}

// StartBusiness creates or refreshes the progress bookkeeping for one
// business. Existing scores and completion state survive a restart of the
// same business; only the descriptive fields are rewritten.
func (s *LedgerService) StartBusiness(username, business, location, businessType string, totalScenarios int, titles []string) (*BusinessProgress, error) {
	if business == "" {
		return nil, NewInvalidError("business name required")
	}
	if totalScenarios < 0 {
		return nil, NewInvalidError("total scenarios must not be negative")
	}
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	bp := s.ensureBusiness(u, business)
	bp.Location = location
	bp.BusinessType = businessType
	bp.TotalScenarios = totalScenarios
	bp.ScenarioTitles = titles
	bp.Completed = totalScenarios > 0 && len(bp.CompletedScenarios) == totalScenarios
	bp.LastUpdated = s.now()
	if err := s.store.PutUser(u); err != nil {
		return nil, err
	}
	return bp, nil
}

// CompleteScenario marks one scenario index done. The completed-index set is
// kept sorted and deduplicated; the business is completed once every index
// is present.
func (s *LedgerService) CompleteScenario(username, business string, index int) (*BusinessProgress, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	bp := u.Businesses[business]
	if bp == nil {
		return nil, NewNotFoundError("no progress recorded for business")
	}
	if index < 0 || index >= bp.TotalScenarios {
		return nil, NewInvalidError("scenario index out of range")
	}
	i := sort.SearchInts(bp.CompletedScenarios, index)
	if i == len(bp.CompletedScenarios) || bp.CompletedScenarios[i] != index {
		bp.CompletedScenarios = append(bp.CompletedScenarios, 0)
		copy(bp.CompletedScenarios[i+1:], bp.CompletedScenarios[i:])
		bp.CompletedScenarios[i] = index
	}
	bp.Completed = bp.TotalScenarios > 0 && len(bp.CompletedScenarios) == bp.TotalScenarios
	bp.LastUpdated = s.now()
	if err := s.store.PutUser(u); err != nil {
		return nil, err
	}
	return bp, nil
}

// ResumeState returns saved progress for the business, or nil when there is
// nothing to resume (no progress, or the business is already completed).
func (s *LedgerService) ResumeState(username, business string) (*BusinessProgress, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	bp := u.Businesses[business]
	if bp == nil || bp.Completed {
		return nil, nil
	}
	return bp, nil
}

// ClearBusinessProgress drops the progress record for one business. The
// user's cumulative counters and badges are untouched; badges are monotonic.
func (s *LedgerService) ClearBusinessProgress(username, business string) error {
	u, err := s.getOrCreate(username)
	if err != nil {
		return err
	}
	if u.Businesses[business] == nil {
		return NewNotFoundError("no progress recorded for business")
	}
	delete(u.Businesses, business)
	return s.store.PutUser(u)
}

func (s *LedgerService) DeleteUser(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	ok, err := s.store.DeleteUser(username)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("user not found")
	}
	return nil
}

// ListBusinesses returns the user's trained business names, sorted.
func (s *LedgerService) ListBusinesses(username string) ([]string, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(u.Businesses))
	for name := range u.Businesses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AllBusinesses returns every business name any user has trained, sorted.
func (s *LedgerService) AllBusinesses() ([]string, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	names := []string{}
	for _, u := range users {
		for name := range u.Businesses {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Trend summarizes the direction of the user's recent scores.
type Trend struct {
	Scores    []float64 `json:"scores"`
	Delta     float64   `json:"delta"`
	Direction string    `json:"direction"` // improving, declining or steady
}

// ImprovementTrend compares the older and newer halves of the last n
// recorded scores. The profile retains a bounded trailing window, so n is
// capped at what is available.
func (s *LedgerService) ImprovementTrend(username string, n int) (*Trend, error) {
	u, err := s.getOrCreate(username)
	if err != nil {
		return nil, err
	}
	scores := u.RecentScores
	if n > 0 && n < len(scores) {
		scores = scores[len(scores)-n:]
	}
	trend := &Trend{Scores: append([]float64{}, scores...), Direction: "steady"}
	if len(scores) < 2 {
		return trend, nil
	}
	mid := len(scores) / 2
	older := mean(scores[:mid])
	newer := mean(scores[mid:])
	trend.Delta = newer - older
	switch {
	case trend.Delta > 0:
		trend.Direction = "improving"
	case trend.Delta < 0:
		trend.Direction = "declining"
	}
	return trend, nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
