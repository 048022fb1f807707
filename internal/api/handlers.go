package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/report"
	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondDocument writes a rendered report as plain text or, with
// ?format=pdf, as a PDF.
func (s *Server) respondDocument(w http.ResponseWriter, r *http.Request, text string, pdf func(*bytes.Buffer) error) {
	switch r.URL.Query().Get("format") {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
	case "pdf":
		var buf bytes.Buffer
		if err := pdf(&buf); err != nil {
			if errors.Is(err, report.ErrFontNotFound) {
				respondError(w, http.StatusServiceUnavailable, "pdf_unavailable", err.Error())
				return
			}
			s.logger.Error("failed to render pdf", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to render pdf")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(buf.Bytes())
	default:
		respondError(w, http.StatusBadRequest, "validation_error", "format must be text or pdf")
	}
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return records.DefaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return n, nil
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"records": s.records != nil,
		"time":    timeNow().UTC().Format(time.RFC3339),
	})
}

// Screening handlers

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	domain := screening.Domain(r.URL.Query().Get("domain"))
	if domain == "" {
		respondJSON(w, http.StatusOK, s.catalog.Items)
		return
	}
	if err := screening.ValidateDomain(domain); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.catalog.ByDomain(domain))
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	text, err := report.Form(s.catalog)
	if err != nil {
		s.logger.Error("failed to render form", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to render form")
		return
	}
	s.respondDocument(w, r, text, func(buf *bytes.Buffer) error {
		return report.FormPDF(s.catalog, s.config.FontPath, buf)
	})
}

type scoreRequest struct {
	Responses screening.ResponseSet `json:"responses"`
	ClientID  string                `json:"client_id"`
}

type scoreResponse struct {
	Result         screening.Result         `json:"result"`
	Interpretation screening.Interpretation `json:"interpretation"`
	ScreeningID    string                   `json:"screening_id,omitempty"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := screening.Score(s.catalog, req.Responses)
	if err != nil {
		if errors.Is(err, screening.ErrInvalidResponse) {
			respondError(w, http.StatusBadRequest, "invalid_response", err.Error())
			return
		}
		s.logger.Error("failed to score", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to score")
		return
	}

	out := scoreResponse{Result: res, Interpretation: screening.InterpretResult(res)}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID != "" && s.records != nil {
		saved, err := s.records.SaveScreening(clientID, req.Responses, out.Interpretation)
		if err != nil {
			s.logger.Error("failed to save screening", "client_id", clientID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to save screening")
			return
		}
		out.ScreeningID = saved.ID
	}

	status := http.StatusOK
	if out.ScreeningID != "" {
		status = http.StatusCreated
	}
	respondJSON(w, status, out)
}

type interpretRequest struct {
	TotalScore *float64 `json:"total_score"`
	Temporal   *float64 `json:"temporal"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.TotalScore == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "total_score is required")
		return
	}

	var subscales map[screening.Domain]float64
	if req.Temporal != nil {
		subscales = map[screening.Domain]float64{screening.DomainTemporal: *req.Temporal}
	}
	in := screening.Interpret(*req.TotalScore, subscales)
	in.Subscales = nil
	respondJSON(w, http.StatusOK, in)
}

// Trajectory handlers

type runRequest struct {
	Case       string              `json:"case"`
	Profile    *trajectory.Profile `json:"profile"`
	Months     int                 `json:"months"`
	StartMonth int                 `json:"start_month"`
	Seed       int64               `json:"seed"`
	ClientID   string              `json:"client_id"`
}

// profile resolves the request's profile. An explicit profile wins over a case.
func (req runRequest) profile() (trajectory.Profile, error) {
	if req.Profile != nil {
		return *req.Profile, nil
	}
	if req.Case == "" {
		return trajectory.Profile{}, errors.New("case or profile is required")
	}
	p, ok := trajectory.Cases()[req.Case]
	if !ok {
		return trajectory.Profile{}, errors.New("unknown case " + strconv.Quote(req.Case))
	}
	return p, nil
}

// withDefaults fills zero settings from the server config. A seed that
// is still zero is drawn from the clock so the response can report it.
func (s *Server) withDefaults(req runRequest) runRequest {
	if req.Months == 0 {
		req.Months = s.config.DurationMonths
	}
	if req.StartMonth == 0 {
		req.StartMonth = s.config.InterventionMonth
	}
	if req.Seed == 0 {
		req.Seed = s.config.Seed
	}
	if req.Seed == 0 {
		req.Seed = timeNow().UnixNano()
	}
	return req
}

func isDomainError(err error) bool {
	return errors.Is(err, trajectory.ErrInvalidProfile) ||
		errors.Is(err, trajectory.ErrInvalidInterventionType) ||
		errors.Is(err, trajectory.ErrInvalidIntervention)
}

type simulateRequest struct {
	runRequest
	Intervention string `json:"intervention"`
}

type simulateResponse struct {
	Policy       trajectory.Policy     `json:"policy"`
	Seed         int64                 `json:"seed"`
	Trajectory   trajectory.Trajectory `json:"trajectory"`
	SimulationID string                `json:"simulation_id,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.runRequest = s.withDefaults(req.runRequest)

	p, err := req.profile()
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	policy := trajectory.NoIntervention
	var iv *trajectory.Intervention
	if req.Intervention != "" && req.Intervention != string(trajectory.NoIntervention) {
		iv = &trajectory.Intervention{Type: trajectory.InterventionType(req.Intervention), StartMonth: req.StartMonth}
		policy = trajectory.Policy(req.Intervention)
	}

	tr, err := s.model.Simulate(p, req.Months, iv, trajectory.NewSeededSource(req.Seed))
	if err != nil {
		if isDomainError(err) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		s.logger.Error("failed to simulate", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to simulate")
		return
	}

	id, ok := s.saveSimulation(w, req.runRequest, p, []records.Outcome{{Policy: policy, Final: tr.Final}})
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, simulateResponse{Policy: policy, Seed: req.Seed, Trajectory: tr, SimulationID: id})
}

type compareRow struct {
	Policy trajectory.Policy  `json:"policy"`
	Final  trajectory.Summary `json:"final"`
}

type compareResponse struct {
	Months       int               `json:"months"`
	StartMonth   int               `json:"start_month"`
	Seed         int64             `json:"seed"`
	Runs         []compareRow      `json:"runs"`
	Best         trajectory.Policy `json:"best_policy"`
	SimulationID string            `json:"simulation_id,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req = s.withDefaults(req)

	p, err := req.profile()
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	c, err := s.model.Compare(r.Context(), p, trajectory.CompareOptions{
		Months:     req.Months,
		StartMonth: req.StartMonth,
		Seed:       req.Seed,
	})
	if err != nil {
		if isDomainError(err) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		s.logger.Error("failed to compare", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to compare")
		return
	}

	out := compareResponse{Months: c.Months, StartMonth: c.StartMonth, Seed: c.Seed}
	for _, o := range records.OutcomesFrom(c) {
		out.Runs = append(out.Runs, compareRow{Policy: o.Policy, Final: o.Final})
	}
	if best, ok := c.Best(); ok {
		out.Best = best.Policy
	}

	id, ok := s.saveSimulation(w, req, p, records.OutcomesFrom(c))
	if !ok {
		return
	}
	out.SimulationID = id
	respondJSON(w, http.StatusOK, out)
}

// saveSimulation stores a run when the request names a client. ok is
// false when an error response has already been written.
func (s *Server) saveSimulation(w http.ResponseWriter, req runRequest, p trajectory.Profile, outcomes []records.Outcome) (id string, ok bool) {
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" || s.records == nil {
		return "", true
	}
	saved, err := s.records.SaveSimulation(records.Simulation{
		ClientID:   clientID,
		Profile:    p,
		Months:     req.Months,
		StartMonth: req.StartMonth,
		Seed:       req.Seed,
		Outcomes:   outcomes,
	})
	if err != nil {
		s.logger.Error("failed to save simulation", "client_id", clientID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save simulation")
		return "", false
	}
	return saved.ID, true
}

// History handlers

func (s *Server) requireRecords(w http.ResponseWriter) bool {
	if s.records == nil {
		respondError(w, http.StatusServiceUnavailable, "records_disabled", "client records are disabled")
		return false
	}
	return true
}

func (s *Server) lookupScreening(w http.ResponseWriter, r *http.Request) (*records.Screening, bool) {
	if !s.requireRecords(w) {
		return nil, false
	}
	sc, err := s.records.GetScreening(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "screening not found")
			return nil, false
		}
		s.logger.Error("failed to get screening", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get screening")
		return nil, false
	}
	return sc, true
}

func (s *Server) handleGetScreening(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.lookupScreening(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sc)
}

func (s *Server) handleScreeningReport(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.lookupScreening(w, r)
	if !ok {
		return
	}
	at, err := time.Parse(time.RFC3339, sc.CreatedAt)
	if err != nil {
		at = timeNow()
	}
	data := report.NewClinicalData(sc.ClientID, s.catalog, sc.Interpretation, at)

	text, err := report.Clinical(data)
	if err != nil {
		s.logger.Error("failed to render report", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to render report")
		return
	}
	s.respondDocument(w, r, text, func(buf *bytes.Buffer) error {
		return report.ClinicalPDF(data, s.config.FontPath, buf)
	})
}

func (s *Server) handleListScreenings(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w) {
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	list, err := s.records.ListScreenings(chi.URLParam(r, "clientID"), limit)
	if err != nil {
		s.logger.Error("failed to list screenings", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list screenings")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecords(w) {
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	list, err := s.records.ListSimulations(chi.URLParam(r, "clientID"), limit)
	if err != nil {
		s.logger.Error("failed to list simulations", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list simulations")
		return
	}
	respondJSON(w, http.StatusOK, list)
}
