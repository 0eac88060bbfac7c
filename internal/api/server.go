// Package api exposes the calculator over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/config"
	calcerr "github.com/ducminhle1904/dca-calculator/internal/errors"
	"github.com/ducminhle1904/dca-calculator/internal/form"
	"github.com/ducminhle1904/dca-calculator/internal/leverage"
	"github.com/ducminhle1904/dca-calculator/internal/logger"
	"github.com/ducminhle1904/dca-calculator/internal/monitoring"
	"github.com/ducminhle1904/dca-calculator/pkg/reporting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CalculateRequest is the body of /api/v1/calculate and /api/v1/export.
// Input keys that are absent keep the configured defaults; values may be
// JSON strings or numbers.
type CalculateRequest struct {
	Variant string     `json:"variant"`
	Input   form.Input `json:"input"`
}

type CalculateResponse struct {
	ID         string                   `json:"id"`
	Result     calculator.DisplayResult `json:"result"`
	Assessment *leverage.Assessment     `json:"assessment"`
}

type DefaultsResponse struct {
	Variant string     `json:"variant"`
	Input   form.Input `json:"input"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

const kindBadRequest = "BAD_REQUEST"

// Server is the calculator REST API
type Server struct {
	cfg      *config.Config
	engine   *calculator.Engine
	leverage *leverage.Calculator
	reporter *reporting.DefaultReporter
	health   *monitoring.HealthChecker
	logger   *zap.Logger
	mux      *http.ServeMux
	srv      *http.Server
}

func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   calculator.NewEngine(cfg.EngineOptions()),
		leverage: leverage.NewCalculatorWithLimits(cfg.Leverage),
		reporter: reporting.NewDefaultReporter(),
		health:   monitoring.NewHealthChecker(),
		logger:   log,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.Handle("POST /api/v1/calculate", s.instrument("/api/v1/calculate", s.handleCalculate))
	s.mux.Handle("POST /api/v1/export", s.instrument("/api/v1/export", s.handleExport))
	s.mux.Handle("GET /api/v1/defaults", s.instrument("/api/v1/defaults", s.handleDefaults))
	s.mux.Handle("GET /health", s.health)
	s.mux.Handle("GET /metrics", monitoring.NewMetricsHandler())
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// Run serves until ctx is cancelled, then drains and shuts down within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.cfg.Server.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_server_started", zap.String("address", s.cfg.Server.ListenAddress))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.health.Drain()
		shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.logger.Info("api_server_stopping")
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	}
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.calculate(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, CalculateResponse{
		ID:         rep.ID,
		Result:     rep.Result.Display(),
		Assessment: rep.Assessment,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := reporting.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorBody{Kind: kindBadRequest, Field: "format", Message: err.Error()})
		return
	}

	rep, ok := s.calculate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.reporter.Write(&buf, rep, format); err != nil {
		monitoring.RecordError("export")
		s.logger.Error("export failed", zap.String("id", rep.ID), zap.String("format", string(format)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrorBody{Kind: "EXPORT_FAILED", Message: "could not render report"})
		return
	}
	monitoring.RecordExport(string(format))

	name := filepath.Base(reporting.DefaultOutputPath("", rep, format))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Calculation-ID", rep.ID)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DefaultsResponse{
		Variant: s.cfg.Variant().String(),
		Input:   s.cfg.Calculator.Defaults,
	})
}

// calculate decodes the request and runs one calculation. On failure it
// has already written the error response.
func (s *Server) calculate(w http.ResponseWriter, r *http.Request) (reporting.Report, bool) {
	req := CalculateRequest{Input: s.cfg.Calculator.Defaults}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorBody{Kind: kindBadRequest, Message: "invalid JSON: " + err.Error()})
		return reporting.Report{}, false
	}

	variant := s.cfg.Variant()
	if req.Variant != "" {
		v, err := calculator.ParseVariant(req.Variant)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorBody{Kind: kindBadRequest, Field: "variant", Message: err.Error()})
			return reporting.Report{}, false
		}
		variant = v
	}

	res, err := s.compute(req.Input, variant)
	if err != nil {
		s.health.Observe(false)
		ce, ok := calcerr.AsCalcError(err)
		if !ok {
			monitoring.RecordError("calculate")
			s.logger.Error("calculation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, ErrorBody{Kind: "INTERNAL", Message: "calculation failed"})
			return reporting.Report{}, false
		}
		monitoring.RecordRejection(variant.String(), string(ce.Kind))
		s.logger.Info("calculation rejected",
			zap.String("variant", variant.String()),
			zap.String("kind", string(ce.Kind)),
			zap.String("field", ce.Field))
		writeError(w, http.StatusUnprocessableEntity, ErrorBody{
			Kind:    string(ce.Kind),
			Field:   ce.Field,
			Message: ce.UserMessage(),
		})
		return reporting.Report{}, false
	}

	s.health.Observe(true)
	monitoring.RecordCalculation(variant.String(), res.Leverage)

	rep := reporting.Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Result:      res,
		Assessment:  s.leverage.Assess(res),
	}
	s.logger.Info("calculation completed", append(logger.ResultFields(res), zap.String("id", rep.ID))...)
	return rep, true
}

func (s *Server) compute(in form.Input, variant calculator.Variant) (*calculator.CalculationResult, error) {
	params, err := form.Collect(in, variant)
	if err != nil {
		return nil, err
	}
	return s.engine.Compute(params)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, body ErrorBody) {
	writeJSON(w, status, ErrorResponse{Error: body})
}
