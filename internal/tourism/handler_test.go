package tourism

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"tourstats/pkg/models"
)

type fakeModeler struct {
	failing map[string]bool
	runs    []string
}

func (m *fakeModeler) LinearRegression(ctx context.Context, modelName string, y []float64, x map[string][]float64) (json.RawMessage, error) {
	return m.run(modelName)
}

func (m *fakeModeler) GLM(ctx context.Context, modelName string, y []float64, x map[string][]float64, family string) (json.RawMessage, error) {
	return m.run(modelName)
}

func (m *fakeModeler) run(modelName string) (json.RawMessage, error) {
	m.runs = append(m.runs, modelName)
	if m.failing[modelName] {
		return nil, errors.New("remote boom")
	}
	return json.RawMessage(`{"model_name":"` + modelName + `","r2":0.5}`), nil
}

func fixtureEnvelope() models.Envelope {
	row := func(year string, month float64, area string, italian, foreign float64) map[string]any {
		return map[string]any{
			"anno":                       year,
			"mese":                       month,
			"ambito::filter":             area,
			"presenze_italiane":          italian,
			"presenze_straniere":         foreign,
			"arrivi_italiani":            italian / 2,
			"arrivi_stranieri":           foreign / 2,
			"arrivi_totali":              (italian + foreign) / 2,
			"presenze_totali":            italian + foreign,
			"permanenza_media_italiani":  2.0,
			"permanenza_media_stranieri": 2.0,
			"permanenza_media":           2.0,
			"posti_letto":                1000 + italian,
			"camere":                     400 + foreign,
			"esercizi":                   50 + month,
		}
	}
	return models.Envelope{
		"dataset": "tuscany-tourism",
		"rows": []any{
			row("2024", 1, "Pisa", 100, 50),
			row("2024", 1, "Siena", 40, 60),
			row("2024", 2, "Pisa", 200, 0),
			row("2024", 2, "Siena", 50, 50),
		},
	}
}

func newTestServer(t *testing.T, fetcher Fetcher, warm bool) (*gin.Engine, *Cache, *fakeModeler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cache := NewCache(fetcher, clockwork.NewFakeClock())
	if warm {
		if err := cache.WarmUp(context.Background()); err != nil {
			t.Fatalf("warm-up: %v", err)
		}
	}

	modeler := &fakeModeler{}
	router := gin.New()
	NewHandler(cache, 30*time.Minute, modeler).RegisterRoutes(router.Group("/tourism"))
	return router, cache, modeler
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestDataEndpointsAnswer503UntilWarmed(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	router, _, _ := newTestServer(t, fetcher, false)

	for _, path := range []string{
		"/tourism", "/tourism/normalizedData", "/tourism/central-tendency",
		"/tourism/kpi", "/tourism/pcc12", "/tourism/variables", "/tourism/glm",
	} {
		w := get(router, path)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: got %d, want 503", path, w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["error"] != "not_ready" {
			t.Errorf("%s: error code %v, want not_ready", path, body["error"])
		}
	}
}

func TestDatasetCarriesProvenanceTag(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["source"] != "cache" {
		t.Errorf("source within TTL: got %v, want cache", body["source"])
	}
	if body["dataset"] != "tuscany-tourism" {
		t.Errorf("envelope fields must be passed through, dataset=%v", body["dataset"])
	}
	if _, ok := body["rows"]; !ok {
		t.Error("envelope rows missing from response")
	}
}

func TestNormalizedDataShape(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/normalizedData")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var body struct {
		OK     bool         `json:"ok"`
		Count  int          `json:"count"`
		Sample []models.Row `json:"sample"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.Count != 4 || len(body.Sample) != 4 {
		t.Errorf("got ok=%v count=%d sample=%d, want ok=true count=4 sample=4", body.OK, body.Count, len(body.Sample))
	}
	for _, r := range body.Sample {
		if r.TotalStays != r.ItalianStays+r.ForeignStays {
			t.Errorf("row %s/%s: total %v != %v + %v", r.Area, r.Month, r.TotalStays, r.ItalianStays, r.ForeignStays)
		}
	}
}

func TestDominanceEndpoint(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/dominance-ratio")
	var body []models.DominanceRow
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("areas: got %d, want 2", len(body))
	}
	// Pisa: 300/50 = 6.0 dominates Siena: 90/110
	if body[0].Area != "Pisa" || body[0].Ratio == nil || *body[0].Ratio != 6 {
		t.Errorf("top row: got %s ratio=%v, want Pisa ratio=6", body[0].Area, body[0].Ratio)
	}
}

func TestKPIEndpoint(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/kpi")
	var kpi models.KPIBundle
	if err := json.Unmarshal(w.Body.Bytes(), &kpi); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if kpi.TotalTouristStays == nil || *kpi.TotalTouristStays != 550 {
		t.Errorf("total: got %v, want 550", kpi.TotalTouristStays)
	}
	if kpi.MaxMonthlyLabel == nil || *kpi.MaxMonthlyLabel != "2024-02" {
		t.Errorf("max label: got %v, want 2024-02", kpi.MaxMonthlyLabel)
	}
}

func TestCorrelationEndpointDiagonal(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/pcc12")
	var m models.CorrelationMatrix
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m.Columns) != 12 || len(m.Values) != 12 {
		t.Fatalf("matrix size: got %dx%d, want 12x12", len(m.Columns), len(m.Values))
	}
	for i := range m.Values {
		if m.Values[i][i] == nil || *m.Values[i][i] != 1 {
			t.Errorf("diagonal [%d]: got %v, want 1", i, m.Values[i][i])
		}
	}
}

func TestInvalidEnvelopeShape(t *testing.T) {
	fetcher := &fakeFetcher{env: models.Envelope{"rows": "not an array"}}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/kpi")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "invalid_envelope" {
		t.Errorf("error code: got %v, want invalid_envelope", body["error"])
	}
}

func TestLinearRegressionPerTargetResults(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, modeler := newTestServer(t, fetcher, true)
	modeler.failing = map[string]bool{"ols_total_stays": true}

	w := get(router, "/tourism/linearRegression")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var body struct {
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 3 {
		t.Fatalf("results: got %d targets, want 3", len(body.Results))
	}

	var failed map[string]any
	_ = json.Unmarshal(body.Results["total_stays"], &failed)
	if _, ok := failed["error"]; !ok {
		t.Error("failing target must carry a per-column error entry")
	}

	var okResult map[string]any
	_ = json.Unmarshal(body.Results["stays_italians"], &okResult)
	if okResult["model_name"] != "ols_stays_italians" {
		t.Errorf("stays_italians result: got %v", okResult)
	}
}

func TestGLMEchoesFamilies(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/glm")
	var body struct {
		Families map[string]string `json:"families"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Families["total_stays"] != "poisson" {
		t.Errorf("families: got %v, want poisson for total_stays", body.Families)
	}
}

func TestSeasonalityEndpointSorted(t *testing.T) {
	fetcher := &fakeFetcher{env: fixtureEnvelope()}
	router, _, _ := newTestServer(t, fetcher, true)

	w := get(router, "/tourism/seasonality-monthly-trends")
	var body []models.SeasonalityRow
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 || body[0].MonthNum != "01" || body[1].MonthNum != "02" {
		t.Errorf("order: got %+v, want months 01 then 02", body)
	}
}
