package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openprobity/crosswalk/internal/runtime"
	"github.com/openprobity/crosswalk/pkg/actions"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/probity"
	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Engine defines the interface for the transform execution core.
type Engine interface {
	Run(ctx context.Context, cw *domain.Crosswalk, source *tabular.Table) (*runtime.Result, error)
	Validate(ctx context.Context, tr *domain.Transform, source *tabular.Table) error
}

// Server exposes transform execution and replay validation over HTTP.
type Server struct {
	Engine Engine
	Logger *slog.Logger
}

// NewHandler creates a new HTTP handler for the engine. When gatherer is
// non-nil, Prometheus metrics are served at /metrics.
func NewHandler(engine Engine, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	server := &Server{Engine: engine, Logger: logger}
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/transform", server.Transform)
	r.Post("/validate", server.Validate)

	return r
}

// WireColumn is one named column of cells as carried on the wire.
type WireColumn struct {
	Name  string `json:"name"`
	Cells []any  `json:"cells"`
}

// TransformRequest carries a crosswalk document and the source table.
type TransformRequest struct {
	Crosswalk map[string]any `json:"crosswalk"`
	Table     []WireColumn   `json:"table"`
}

// TransformResponse returns the conformed table, the transform record,
// and any coercion warnings.
type TransformResponse struct {
	Table     []WireColumn      `json:"table"`
	Transform *domain.Transform `json:"transform"`
	Warnings  []actions.Warning `json:"warnings,omitempty"`
}

// ValidateRequest carries a transform record and the claimed source table.
type ValidateRequest struct {
	Transform map[string]any `json:"transform"`
	Table     []WireColumn   `json:"table"`
}

// ValidateResponse reports the replay verdict.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Detail string `json:"detail,omitempty"`
}

// Transform handles the POST /transform request.
func (s *Server) Transform(w http.ResponseWriter, r *http.Request) {
	var body TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cw, err := domain.DecodeCrosswalk(body.Crosswalk)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid crosswalk: %v", err), http.StatusBadRequest)
		return
	}

	table, err := tableFromWire(body.Table)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid table: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.Engine.Run(r.Context(), cw, table)
	if err != nil {
		http.Error(w, fmt.Sprintf("Transform error: %v", err), statusFor(err))
		return
	}

	resp := TransformResponse{
		Table:     tableToWire(result.Table),
		Transform: result.Transform,
		Warnings:  result.Warnings,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("transform encode failed", "err", err)
	}
}

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tr, err := domain.DecodeTransform(body.Transform)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid transform: %v", err), http.StatusBadRequest)
		return
	}

	table, err := tableFromWire(body.Table)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid table: %v", err), http.StatusBadRequest)
		return
	}

	resp := ValidateResponse{Valid: true}
	if err := s.Engine.Validate(r.Context(), tr, table); err != nil {
		var mismatch *probity.MismatchError
		if !errors.As(err, &mismatch) {
			http.Error(w, fmt.Sprintf("Validate error: %v", err), statusFor(err))
			return
		}
		resp.Valid = false
		resp.Detail = mismatch.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("validate encode failed", "err", err)
	}
}

// statusFor maps definition and input faults to 422 and everything else
// to 500.
func statusFor(err error) int {
	var (
		syntaxErr    *script.SyntaxError
		unknownErr   *script.UnknownActionError
		arityErr     *script.ArityError
		actionErr    *actions.ValidationError
		ambiguousErr *actions.AmbiguousCategoryError
		schemaErr    *schema.ValidationError
		coerceErr    *schema.CoercionError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &unknownErr) ||
		errors.As(err, &arityErr) || errors.As(err, &actionErr) ||
		errors.As(err, &ambiguousErr) || errors.As(err, &schemaErr) ||
		errors.As(err, &coerceErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func tableFromWire(cols []WireColumn) (*tabular.Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	out := make([]*tabular.Column, len(cols))
	for i, c := range cols {
		out[i] = &tabular.Column{Name: c.Name, Cells: c.Cells}
	}
	return tabular.FromColumns(out)
}

func tableToWire(t *tabular.Table) []WireColumn {
	names := t.ColumnNames()
	cols := make([]WireColumn, len(names))
	for i, name := range names {
		col, _ := t.Column(name)
		cols[i] = WireColumn{Name: name, Cells: col.Cells}
	}
	return cols
}
