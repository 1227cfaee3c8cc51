package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/config"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/roles"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Score      usecase.ScoreService
	Batch      usecase.BatchService
	DBCheck    func(ctx context.Context) error
	CacheCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, score usecase.ScoreService, batch usecase.BatchService, dbCheck, cacheCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Score: score, Batch: batch, DBCheck: dbCheck, CacheCheck: cacheCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func acceptable(w http.ResponseWriter, r *http.Request) bool {
	if a := r.Header.Get("Accept"); a != "" && a != "*/*" && !strings.Contains(a, "application/json") {
		writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a}}})
		return false
	}
	return true
}

func validationDetails(err error) map[string]string {
	verrs := map[string]string{}
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			verrs[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return verrs
}

type scoreRequest struct {
	Candidate domain.CandidateProfile `json:"candidate" validate:"required"`
	Role      *domain.RoleDefinition  `json:"role"`
	RoleRef   string                  `json:"role_ref" validate:"omitempty,max=512"`
	Weights   map[string]float64      `json:"weights"`
}

func (s *Server) resolveRole(req *domain.RoleDefinition, ref string) (domain.RoleDefinition, error) {
	if req != nil {
		return *req, nil
	}
	if ref == "" {
		return domain.RoleDefinition{}, fmt.Errorf("%w: role or role_ref required", domain.ErrInvalidArgument)
	}
	return roles.Load(ref)
}

// ScoreHandler evaluates a single candidate against a role.
func (s *Server) ScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptable(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		role, err := s.resolveRole(req.Role, req.RoleRef)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		res, err := s.Score.Score(r.Context(), req.Candidate, role, req.Weights)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type batchScoreRequest struct {
	Candidates []domain.CandidateProfile `json:"candidates" validate:"required,min=1,max=1000"`
	Role       *domain.RoleDefinition    `json:"role"`
	RoleRef    string                    `json:"role_ref" validate:"omitempty,max=512"`
	Weights    map[string]float64        `json:"weights"`
}

// BatchScoreHandler evaluates a batch of candidates against one role.
func (s *Server) BatchScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptable(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 16<<20) // 16MB
		var req batchScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		role, err := s.resolveRole(req.Role, req.RoleRef)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out, err := s.Batch.Run(r.Context(), req.Candidates, role, req.Weights)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ReadyzHandler returns a readiness handler that probes the database and
// the embedding cache backend.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.CacheCheck != nil {
			if err := s.CacheCheck(ctx); err != nil {
				checks = append(checks, check{Name: "cache", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "cache", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"ready": ok, "checks": checks})
	}
}
