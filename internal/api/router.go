package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dinesync/dinesync/internal/services"
)

// Router wires the HTTP surface to the services.
type Router struct {
	store    Store
	sessions *services.SessionService
	ledger   *services.LedgerService
	engine   *services.ConsensusEngine
	catalog  *services.CatalogService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewRouter builds a router over the given store. A nil store gets an
// in-memory one; a nil catalog disables the results endpoint's provider
// search (it serves sample data through the catalog fallback instead).
func NewRouter(store Store, catalog *services.CatalogService, log logrus.FieldLogger) *Router {
	if store == nil {
		store = newMemoryStore()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{
		store:    store,
		sessions: services.NewSessionService(newSessionStoreAdapter(store)),
		ledger:   services.NewLedgerService(newLedgerStoreAdapter(store)),
		engine:   services.NewConsensusEngine(),
		catalog:  catalog,
		validate: validator.New(),
		log:      log,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", rt.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", rt.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", rt.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", rt.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/participants", rt.handleAddParticipant)
	mux.HandleFunc("POST /api/sessions/{id}/ready", rt.handleMarkReady)
	mux.HandleFunc("GET /api/sessions/{id}/results", rt.handleResults)
	mux.HandleFunc("POST /api/consensus/rank", rt.handleRank)

	mux.HandleFunc("POST /api/users/{username}/attempts", rt.handleRecordAttempt)
	mux.HandleFunc("GET /api/users/{username}/stats", rt.handleStats)
	mux.HandleFunc("GET /api/users/{username}/certificates", rt.handleListCertificates)
	mux.HandleFunc("POST /api/users/{username}/certificates", rt.handleAwardCertificate)
	mux.HandleFunc("GET /api/users/{username}/certification", rt.handleCertification)
	mux.HandleFunc("GET /api/users/{username}/trend", rt.handleTrend)
	mux.HandleFunc("POST /api/users/{username}/businesses", rt.handleStartBusiness)
	mux.HandleFunc("GET /api/users/{username}/businesses", rt.handleUserBusinesses)
	mux.HandleFunc("POST /api/users/{username}/businesses/{business}/scenarios/{index}/complete", rt.handleCompleteScenario)
	mux.HandleFunc("GET /api/users/{username}/businesses/{business}/resume", rt.handleResume)
	mux.HandleFunc("DELETE /api/users/{username}/businesses/{business}", rt.handleClearBusiness)
	mux.HandleFunc("DELETE /api/users/{username}", rt.handleDeleteUser)

	mux.HandleFunc("GET /api/leaderboard", rt.handleLeaderboard)
	mux.HandleFunc("GET /api/businesses", rt.handleAllBusinesses)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errorStatus = map[services.ErrorCode]int{
	services.ErrorInvalid:       http.StatusBadRequest,
	services.ErrorNotFound:      http.StatusNotFound,
	services.ErrorConflict:      http.StatusConflict,
	services.ErrorBadGateway:    http.StatusBadGateway,
	services.ErrorUnprocessable: http.StatusUnprocessableEntity,
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status, found := errorStatus[se.Code]
		if !found {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]string{"error": se.Message, "code": string(se.Code)})
		return
	}
	rt.log.WithField("error", err).Error("internal error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// decode parses the body into dst and runs struct validation, returning an
// invalid ServiceError with the offending field named.
func (rt *Router) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return services.NewInvalidError("invalid JSON body: " + err.Error())
	}
	if err := rt.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return services.NewInvalidError(fmt.Sprintf("field %s fails %s validation", e.Field(), e.Tag()))
		}
		return services.NewInvalidError(err.Error())
	}
	return nil
}

type createSessionRequest struct {
	Location string `json:"location" validate:"required"`
}

func (rt *Router) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := rt.decode(r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	sess, err := rt.sessions.Create(req.Location)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (rt *Router) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := rt.sessions.List()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

func (rt *Router) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.sessions.Get(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (rt *Router) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.Delete(r.PathValue("id")); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type participantRequest struct {
	Name        string   `json:"name" validate:"required"`
	Cuisines    []string `json:"cuisines"`
	Dietary     []string `json:"dietary_restrictions"`
	Budget      string   `json:"budget" validate:"omitempty,oneof=$ $$ $$$ $$$$"`
	MaxDistance float64  `json:"max_distance" validate:"gte=0"`
	Ambiance    []string `json:"ambiance"`
	VetoItems   []string `json:"veto_items"`
}

func (req *participantRequest) toPreference() services.Preference {
	return services.Preference{
		Name:        req.Name,
		Cuisines:    req.Cuisines,
		Dietary:     req.Dietary,
		Budget:      req.Budget,
		MaxDistance: req.MaxDistance,
		Ambiance:    req.Ambiance,
		VetoItems:   req.VetoItems,
	}
}

func (rt *Router) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := rt.decode(r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	sess, err := rt.sessions.AddParticipant(r.PathValue("id"), req.toPreference())
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (rt *Router) handleMarkReady(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.sessions.MarkReady(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// GET /api/sessions/{id}/results — search the catalog with the group's
// combined constraints and rank the candidates. An empty candidate list is
// a valid no-results response.
func (rt *Router) handleResults(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.sessions.Get(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	prefs := make([]*services.Preference, 0, len(sess.Participants))
	for i := range sess.Participants {
		prefs = append(prefs, &sess.Participants[i])
	}

	var restaurants []*services.Restaurant
	if rt.catalog != nil {
		restaurants, err = rt.catalog.Candidates(r.Context(), sess.Location, prefs)
		if err != nil {
			rt.writeError(w, err)
			return
		}
	}
	results := rt.engine.Rank(restaurants, prefs)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"results":    results,
	})
}

type rankRequest struct {
	Restaurants  []*services.Restaurant `json:"restaurants"`
	Participants []participantRequest   `json:"participants" validate:"dive"`
}

// POST /api/consensus/rank — pure scoring, no session or store involved.
func (rt *Router) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := rt.decode(r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	prefs := make([]*services.Preference, 0, len(req.Participants))
	for i := range req.Participants {
		p := req.Participants[i].toPreference()
		prefs = append(prefs, &p)
	}
	results := rt.engine.Rank(req.Restaurants, prefs)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type attemptRequest struct {
	Business string  `json:"business" validate:"required"`
	Score    float64 `json:"score" validate:"gte=0,lte=10"`
}

func (rt *Router) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := rt.decode(r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	u, err := rt.ledger.RecordAttempt(r.PathValue("username"), req.Business, req.Score)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.ledger.Stats(r.PathValue("username"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := rt.ledger.Certificates(r.PathValue("username"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"certificates": certs})
}

type certificateRequest struct {
	Business string  `json:"business" validate:"required"`
	AvgScore float64 `json:"avg_score" validate:"gte=0,lte=10"`
}

func (rt *Router) handleAwardCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := rt.decode(r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	cert, err := rt.ledger.AwardCertificate(r.PathValue("username"), req.Business, req.AvgScore)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (rt *Router) handleCertification(w http.ResponseWriter, r *http.Request) {
	status, err := rt.ledger.Certification(r.PathValue("username"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) handleTrend(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			rt.writeError(w, services.NewInvalidError("n must be a non-negative integer"))
			return
		}
		n = v
	}
	trend, err := rt.ledger.ImprovementTrend(r.PathValue("username"), n)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

type startBusinessRequest struct {
	Business       string   `json:"business" validate:"required"`
	Location       string   `json:"location"`
	BusinessType   string   `json:"business_type"`
	TotalScenarios int      `json:"total_scenarios" validate:"gte=0"`
	ScenarioTitles []string `json:"scenario_titles"`
}

func (rt *Router) handleStartBusiness(w http.ResponseWriter, r *http.Request) {
	var req startBusinessRequest
	if err := rt.decode(r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	bp, err := rt.ledger.StartBusiness(r.PathValue("username"), req.Business,
		req.Location, req.BusinessType, req.TotalScenarios, req.ScenarioTitles)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

func (rt *Router) handleUserBusinesses(w http.ResponseWriter, r *http.Request) {
	names, err := rt.ledger.ListBusinesses(r.PathValue("username"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"businesses": names})
}

func (rt *Router) handleCompleteScenario(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		rt.writeError(w, services.NewInvalidError("scenario index must be an integer"))
		return
	}
	bp, err := rt.ledger.CompleteScenario(r.PathValue("username"), r.PathValue("business"), index)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

func (rt *Router) handleResume(w http.ResponseWriter, r *http.Request) {
	bp, err := rt.ledger.ResumeState(r.PathValue("username"), r.PathValue("business"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resume": bp})
}

func (rt *Router) handleClearBusiness(w http.ResponseWriter, r *http.Request) {
	if err := rt.ledger.ClearBusinessProgress(r.PathValue("username"), r.PathValue("business")); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (rt *Router) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := rt.ledger.DeleteUser(r.PathValue("username")); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (rt *Router) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := rt.ledger.Leaderboard(r.URL.Query().Get("business"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

func (rt *Router) handleAllBusinesses(w http.ResponseWriter, r *http.Request) {
	names, err := rt.ledger.AllBusinesses()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"businesses": names})
}
