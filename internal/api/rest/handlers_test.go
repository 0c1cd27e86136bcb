package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/config"
	"github.com/fieldtel/number-provisioning-backend/internal/service/provisioning"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Version: "test",
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RateLimit: config.RateLimitConfig{
				RequestsPerSecond: 1000,
				BurstSize:         1000,
			},
		},
		Generation: config.GenerationConfig{
			MaxBatchSize: 100,
			MaxRecords:   100,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := numbering.NewGenerator(rand.New(rand.NewSource(1)))
	svc := provisioning.NewService(logger, gen, nil, nil, nil)
	return NewServer(cfg, logger, svc, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ResponseEnvelope {
	t.Helper()
	var env ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, "test", env.Meta.Version)
}

func TestValidateRecordsJSON(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/validate", map[string]interface{}{
		"records": []numbering.RawRecord{
			{Phone: "+573001234567", Name: "Ana", Country: "Colombia"},
			{Phone: "12345", Name: "Luis", Country: "Colombia"},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool                          `json:"success"`
		Data    provisioning.ValidationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data.Valid, 1)
	assert.Equal(t, "+573001234567", env.Data.Valid[0].E164)
	require.Len(t, env.Data.Errors, 1)
	assert.Equal(t, 1, env.Data.Errors[0].Index)
}

func TestValidateRecordsCSV(t *testing.T) {
	srv := testServer(t)
	body := strings.Join([]string{
		"phone,name,email,region,country",
		"+573001234567,Ana,ana@example.com,Antioquia,Colombia",
	}, "\n")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/numbers/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data provisioning.ValidationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Valid, 1)
	assert.Equal(t, "Ana", env.Data.Valid[0].Record.Name)
}

func TestValidateRecordsEmptyBatch(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/validate", map[string]interface{}{
		"records": []numbering.RawRecord{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestValidateRecordsTooLarge(t *testing.T) {
	srv := testServer(t)
	records := make([]numbering.RawRecord, 101)
	for i := range records {
		records[i] = numbering.RawRecord{Phone: "+573001234567", Country: "Colombia"}
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/validate", map[string]interface{}{
		"records": records,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BATCH_TOO_LARGE", env.Error.Code)
	assert.Equal(t, float64(100), env.Error.Details["limit"])
	assert.Equal(t, float64(101), env.Error.Details["received"])
}

func TestValidateRecordsMalformedJSON(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/numbers/validate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MALFORMED_JSON", env.Error.Code)
}

func TestGenerateNumbers(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/generate", map[string]interface{}{
		"counts": map[string]int{"Colombia": 5, "Mexico": 3},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data provisioning.GenerationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Len(t, env.Data.Numbers, 8)
	assert.Equal(t, 5, env.Data.Summary["Colombia"])
	assert.Equal(t, 3, env.Data.Summary["Mexico"])
	assert.Empty(t, env.Data.Shortfall)
}

func TestGenerateNumbersTooLarge(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/generate", map[string]interface{}{
		"counts": map[string]int{"Colombia": 101},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BATCH_TOO_LARGE", env.Error.Code)
	assert.Equal(t, float64(100), env.Error.Details["limit"])
	assert.Equal(t, float64(101), env.Error.Details["requested"])
}

func TestGenerateNumbersRejectsNonPositiveCount(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/generate", map[string]interface{}{
		"counts": map[string]int{"Colombia": 0},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestGroupContacts(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/numbers/groups", map[string]interface{}{
		"contacts": []numbering.RawRecord{
			{Phone: "+573001234567", Name: "Ana", Country: "Colombia"},
			{Phone: "+34612345678", Name: "Pau", Country: "Spain"},
		},
		"generated": []numbering.GeneratedNumber{
			{Country: "Colombia", E164: "+573009876543"},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data groupResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Groups, 1)
	assert.Equal(t, "+573009876543", env.Data.Groups[0].OriginatingNumber)
	require.Len(t, env.Data.Groups[0].Contacts, 1)
	assert.Equal(t, "Ana", env.Data.Groups[0].Contacts[0].Name)
	require.Len(t, env.Data.Diagnostics.DroppedContacts, 1)
	assert.Equal(t, "Pau", env.Data.Diagnostics.DroppedContacts[0].Name)
}

func TestRequestIDPropagation(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "fixed-id", env.Meta.RequestID)
}

func TestRateLimitExceeded(t *testing.T) {
	srv := testServer(t)
	srv.limiter.SetLimit(0)
	srv.limiter.SetBurst(0)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestUnknownRouteReturnsEnveloped404(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/unknown", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "RESOURCE_NOT_FOUND", env.Error.Code)
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestProvisionedSummaryWithoutPersistence(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/numbers/summary", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PERSISTENCE_DISABLED", env.Error.Code)
}
