package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/openprobity/crosswalk/internal/adapters/http"
	"github.com/openprobity/crosswalk/internal/runtime"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/observability"
	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	exec := runtime.NewExecutor(
		runtime.WithLogger(logger),
		runtime.WithMetrics(observability.New(registry)),
	)
	return httpadapter.NewHandler(exec, logger, registry)
}

func surveyCrosswalk(t *testing.T) *domain.Crosswalk {
	t.Helper()
	source := schema.New("raw", schema.Field{Name: "JOB TITLE", Type: schema.TypeString})
	dest := schema.New("clean", schema.Field{Name: "occupation", Type: schema.TypeString})
	cw := domain.NewCrosswalk("survey", source, dest)
	require.NoError(t, cw.AppendScript("RENAME > 'occupation' < 'JOB TITLE'"))
	return cw
}

// asDoc round-trips an entity through JSON into the generic document form
// the wire types carry.
func asDoc(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func sourceColumns() []httpadapter.WireColumn {
	return []httpadapter.WireColumn{
		{Name: "JOB TITLE", Cells: []any{"analyst", "clerk"}},
	}
}

func TestServer_Transform(t *testing.T) {
	handler := newHandler(t)

	rec := postJSON(t, handler, "/transform", httpadapter.TransformRequest{
		Crosswalk: asDoc(t, surveyCrosswalk(t)),
		Table:     sourceColumns(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp httpadapter.TransformResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Table, 1)
	assert.Equal(t, "occupation", resp.Table[0].Name)
	assert.Equal(t, []any{"analyst", "clerk"}, resp.Table[0].Cells)
	require.NotNil(t, resp.Transform)
	assert.NotEmpty(t, resp.Transform.DestinationChecksum)
}

func TestServer_TransformRejectsBadInput(t *testing.T) {
	handler := newHandler(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable crosswalk script", func(t *testing.T) {
		doc := asDoc(t, surveyCrosswalk(t))
		doc["actions"] = []any{"FROBNICATE > 'x' < 'y'"}
		rec := postJSON(t, handler, "/transform", httpadapter.TransformRequest{
			Crosswalk: doc,
			Table:     sourceColumns(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty table", func(t *testing.T) {
		rec := postJSON(t, handler, "/transform", httpadapter.TransformRequest{
			Crosswalk: asDoc(t, surveyCrosswalk(t)),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("column missing from the submitted table", func(t *testing.T) {
		rec := postJSON(t, handler, "/transform", httpadapter.TransformRequest{
			Crosswalk: asDoc(t, surveyCrosswalk(t)),
			Table:     []httpadapter.WireColumn{{Name: "wrong", Cells: []any{"x"}}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("required field not produced", func(t *testing.T) {
		source := schema.New("raw", schema.Field{Name: "JOB TITLE", Type: schema.TypeString})
		dest := schema.New("clean",
			schema.Field{Name: "occupation", Type: schema.TypeString},
			schema.Field{Name: "grade", Type: schema.TypeString,
				Constraints: schema.Constraints{Required: true}},
		)
		cw := domain.NewCrosswalk("survey", source, dest)
		require.NoError(t, cw.AppendScript("RENAME > 'occupation' < 'JOB TITLE'"))

		rec := postJSON(t, handler, "/transform", httpadapter.TransformRequest{
			Crosswalk: asDoc(t, cw),
			Table:     sourceColumns(),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "grade")
	})

	t.Run("ambiguous category assignment", func(t *testing.T) {
		source := schema.New("raw",
			schema.Field{Name: "USE", Type: schema.TypeString},
			schema.Field{Name: "OTHER USE", Type: schema.TypeString},
		)
		dest := schema.New("clean", schema.Field{Name: "sector", Type: schema.TypeString})
		cw := domain.NewCrosswalk("survey", source, dest)
		require.NoError(t, cw.AppendScript("CATEGORISE - > 'sector'::'retail' < 'USE'::['shop']"))
		require.NoError(t, cw.AppendScript("CATEGORISE - > 'sector'::'office' < 'OTHER USE'::['shop']"))

		rec := postJSON(t, handler, "/transform", httpadapter.TransformRequest{
			Crosswalk: asDoc(t, cw),
			Table: []httpadapter.WireColumn{
				{Name: "USE", Cells: []any{"shop"}},
				{Name: "OTHER USE", Cells: []any{"shop"}},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "shop")
	})
}

func TestServer_Validate(t *testing.T) {
	handler := newHandler(t)

	exec := runtime.NewExecutor()
	cw := surveyCrosswalk(t)
	tbl, err := tabular.FromColumns([]*tabular.Column{
		{Name: "JOB TITLE", Cells: []any{"analyst", "clerk"}},
	})
	require.NoError(t, err)
	result, err := exec.Run(context.Background(), cw, tbl)
	require.NoError(t, err)

	t.Run("faithful replay is valid", func(t *testing.T) {
		rec := postJSON(t, handler, "/validate", httpadapter.ValidateRequest{
			Transform: asDoc(t, result.Transform),
			Table:     sourceColumns(),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp httpadapter.ValidateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Empty(t, resp.Detail)
	})

	t.Run("tampered checksum is invalid, not an error", func(t *testing.T) {
		tampered := *result.Transform
		tampered.DestinationChecksum = "deadbeef"
		rec := postJSON(t, handler, "/validate", httpadapter.ValidateRequest{
			Transform: asDoc(t, &tampered),
			Table:     sourceColumns(),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp httpadapter.ValidateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Contains(t, resp.Detail, "checksum mismatch")
	})
}

func TestServer_Healthz(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	handler := newHandler(t)

	// Run one transform so the counters exist.
	postJSON(t, handler, "/transform", httpadapter.TransformRequest{
		Crosswalk: asDoc(t, surveyCrosswalk(t)),
		Table:     sourceColumns(),
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crosswalk_transforms_total")
}
