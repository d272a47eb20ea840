package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/server/models"
	"github.com/insuredesk/policykeeper/internal/server/validation"
)

const dateLayout = "2006-01-02"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// policyPayload is the wire form of a policy record. Dates travel as
// date-only strings.
type policyPayload struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PolicyType   string `json:"policyType"`
	PolicyNumber string `json:"policyNumber"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

type validateResponse struct {
	Valid      bool                   `json:"valid"`
	Violations []validation.Violation `json:"violations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (p policyPayload) toRecord() models.PolicyRecord {
	rec := models.PolicyRecord{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		PolicyType:   models.PolicyType(p.PolicyType),
		PolicyNumber: p.PolicyNumber,
	}
	// Unparseable or absent dates stay zero and surface as validation
	// violations, not transport faults.
	if t, err := time.Parse(dateLayout, p.StartDate); err == nil {
		rec.StartDate = t
	}
	if t, err := time.Parse(dateLayout, p.EndDate); err == nil {
		rec.EndDate = t
	}
	return rec
}

func payloadFromRecord(rec *models.PolicyRecord) policyPayload {
	return policyPayload{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		Phone:        rec.Phone,
		Address:      rec.Address,
		PolicyType:   string(rec.PolicyType),
		PolicyNumber: rec.PolicyNumber,
		StartDate:    rec.StartDate.Format(dateLayout),
		EndDate:      rec.EndDate.Format(dateLayout),
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handlePolicyTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.PolicyType{"policyTypes": models.PolicyTypes()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.AccessToken,
		Username:    session.User.Username,
		FullName:    session.User.FullName,
		Email:       session.User.Email,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		s.logger.Error(r.Context(), "registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.metrics.UsersRegistered.Inc()
	s.logger.Info(r.Context(), "registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"username": user.Username})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var payload policyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.metrics.ValidationChecks.Inc()
	violations := validation.Validate(payload.toRecord(), time.Now())
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(violations) == 0, Violations: violations})
}

func (s *Server) handleSavePolicy(w http.ResponseWriter, r *http.Request) {
	var payload policyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := payload.toRecord()

	s.metrics.ValidationChecks.Inc()
	if violations := validation.Validate(rec, time.Now()); len(violations) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Valid: false, Violations: violations})
		return
	}

	start := time.Now()
	id, err := s.policies.Save(r.Context(), rec)
	s.metrics.SaveDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, common.ErrStoreUnavailable):
			s.metrics.SavesFailed.WithLabelValues("unavailable").Inc()
			writeError(w, http.StatusServiceUnavailable, "record store unavailable")
		case errors.Is(err, common.ErrConflict):
			s.metrics.SavesFailed.WithLabelValues("conflict").Inc()
			writeError(w, http.StatusConflict, "save did not occur, please retry")
		default:
			s.metrics.SavesFailed.WithLabelValues("error").Inc()
			s.logger.Error(r.Context(), "save failed", "error", err)
			writeError(w, http.StatusBadGateway, "save did not occur")
		}
		return
	}

	s.metrics.RecordsSaved.Inc()
	s.logger.Info(r.Context(), "record saved", "id", id, "username", usernameFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := s.policies.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "record not found")
		case errors.Is(err, common.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "record store unavailable")
		default:
			s.logger.Error(r.Context(), "read failed", "error", err)
			writeError(w, http.StatusBadGateway, "read failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, payloadFromRecord(rec))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
