package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/infra/filestore"
	"github.com/xavierca1/prospector/internal/infra/http/middleware"
	"github.com/xavierca1/prospector/internal/outreach"
	"github.com/xavierca1/prospector/internal/usecase"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendCSVExport(ctx context.Context, to, filename, csv string) error {
	args := m.Called(ctx, to, filename, csv)
	return args.Error(0)
}

type fakeBroker struct{ closed bool }

func (f fakeBroker) IsClosed() bool { return f.closed }

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk unavailable") }

type testServer struct {
	handler http.Handler
	store   *usecase.ProspectStore
	mailer  *MockMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	store := usecase.NewProspectStore(fs, nil)
	store.Initialize(context.Background())

	mailer := new(MockMailer)
	router := NewRouter(
		RouterConfig{AllowedOrigins: []string{"*"}, RateLimiter: middleware.NewRateLimiter(1000, time.Minute)},
		NewProspectHandler(store, mailer),
		NewOutreachHandler(outreach.DefaultSearchEndpoints()),
		NewHealthHandler(fs, nil, false, store.Len),
	)

	return &testServer{handler: router, store: store, mailer: mailer}
}

func (s *testServer) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(t *testing.T, firstName string) *entity.Prospect {
	t.Helper()
	p, err := s.store.Append(context.Background(), usecase.LogProspectInput{
		FirstName: firstName,
		LastName:  "Doe",
		Company:   "Acme",
		Email:     strings.ToLower(firstName) + "@acme.com",
	})
	require.NoError(t, err)
	return p
}

// ============ PROSPECTS ============

func TestCreateProspect(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/prospects", map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"company":    "Acme",
		"domain":     "acme.com",
		"email":      "jane@acme.com",
		"title":      "CTO",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var p entity.Prospect
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, entity.StatusNotContacted, p.Status)
	assert.Equal(t, 1, s.store.Len())
}

func TestCreateProspectInvalidJSON(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/prospects", "invalid json")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse map[string]interface{}
	json.NewDecoder(w.Body).Decode(&errResponse)
	assert.Equal(t, "INVALID_JSON", errResponse["error"])
}

func TestCreateProspectValidationError(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/prospects", map[string]string{
		"first_name": "Jane",
		"email":      "jane@acme.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
	assert.Equal(t, "VALIDATION_ERROR", errResponse.Error)
	assert.Contains(t, errResponse.Message, "company")
	assert.Equal(t, 0, s.store.Len())
}

func TestListProspectsNewestFirst(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")
	s.seed(t, "John")

	w := s.do(http.MethodGet, "/prospects", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []entity.Prospect
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "John", list[0].FirstName)
	assert.Equal(t, "Jane", list[1].FirstName)
}

func TestListProspectsEmptyIsArray(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/prospects", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestUpdateStatus(t *testing.T) {
	s := newTestServer(t)
	p := s.seed(t, "Jane")

	w := s.do(http.MethodPatch, "/prospects/"+p.ID+"/status", map[string]string{"status": "Replied"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":true`)
	assert.Equal(t, entity.StatusReplied, s.store.List()[0].Status)
}

func TestUpdateStatusUnknownID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPatch, "/prospects/missing/status", map[string]string{"status": "Replied"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":false`)
}

func TestUpdateStatusInvalidStatus(t *testing.T) {
	s := newTestServer(t)
	p := s.seed(t, "Jane")

	w := s.do(http.MethodPatch, "/prospects/"+p.ID+"/status", map[string]string{"status": "Ghosted"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)
	p := s.seed(t, "Jane")

	w := s.do(http.MethodDelete, "/prospects/"+p.ID, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_CONFIRMED")
	assert.Equal(t, 1, s.store.Len())
}

func TestDeleteConfirmed(t *testing.T) {
	s := newTestServer(t)
	p := s.seed(t, "Jane")

	w := s.do(http.MethodDelete, "/prospects/"+p.ID+"?confirm=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":true`)
	assert.Equal(t, 0, s.store.Len())
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")

	w := s.do(http.MethodDelete, "/prospects/missing?confirm=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":false`)
	assert.Equal(t, 1, s.store.Len())
}

// ============ EXPORT ============

func TestExportCSVNoData(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/prospects/export", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NO_DATA")
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")
	s.seed(t, "John")

	w := s.do(http.MethodGet, "/prospects/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "prospects.csv")

	lines := strings.Split(w.Body.String(), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"John"`))
}

func TestEmailExport(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")

	s.mailer.On("SendCSVExport", mock.Anything, "rep@example.com", "prospects.csv", mock.MatchedBy(func(csv string) bool {
		return strings.Contains(csv, `"Jane"`)
	})).Return(nil)

	w := s.do(http.MethodPost, "/prospects/export/email", map[string]string{"to": "rep@example.com"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	s.mailer.AssertExpectations(t)
}

func TestEmailExportFailure(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")
	s.mailer.On("SendCSVExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	w := s.do(http.MethodPost, "/prospects/export/email", map[string]string{"to": "rep@example.com"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "MAIL_ERROR")
}

func TestEmailExportNoData(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/prospects/export/email", map[string]string{"to": "rep@example.com"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	s.mailer.AssertNotCalled(t, "SendCSVExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailExportMissingRecipient(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")

	w := s.do(http.MethodPost, "/prospects/export/email", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============ OUTREACH ============

func TestSearchURLEmailFinderWithoutDomain(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/search-url?service=email-finder&first_name=Jane&last_name=Doe", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_DOMAIN")
}

func TestSearchURL(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/search-url?service=profile-search&first_name=Jane&last_name=Doe&company=Acme", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "profile-search", resp["service"])
	assert.Contains(t, resp["url"], "keywords=Jane+Doe+Acme")
}

func TestSearchURLUnknownService(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/search-url?service=telepathy", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_SERVICE")
}

func TestEmailGuessesEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/email-guesses?first_name=Jane&last_name=Doe&domain=acme.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var g outreach.Guesses
	require.NoError(t, json.NewDecoder(w.Body).Decode(&g))
	assert.Len(t, g.Emails, 10)
	assert.Contains(t, g.Emails, "jdoe@acme.com")

	w = s.do(http.MethodGet, "/email-guesses?first_name=Jane", nil)
	require.Equal(t, http.StatusOK, w.Code)
	g = outreach.Guesses{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&g))
	assert.Empty(t, g.Emails)
	assert.Equal(t, outreach.GuessPrompt, g.Prompt)
}

func TestColdEmailEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/cold-email?first_name=Jane&company=Acme", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["draft"], "Hi Jane,")
}

// ============ HEALTH ============

func TestHealthHealthy(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Jane")

	w := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.Prospects)
	assert.Equal(t, "healthy", resp.Dependencies["storage"])
	assert.Equal(t, "not configured", resp.Dependencies["rabbitmq"])
}

func TestHealthDegraded(t *testing.T) {
	h := NewHealthHandler(failingPinger{}, fakeBroker{closed: true}, true, nil)

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "configured", resp.Dependencies["mail"])
	assert.Contains(t, resp.Dependencies["rabbitmq"], "closed")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", nil)

	w := s.do(http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

// ============ RATE LIMIT ============

func postFrom(h http.Handler, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/prospects", strings.NewReader("{}"))
	req.RemoteAddr = "10.0.0.7:5555"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func newLimitedRouter(t *testing.T, trustProxy bool) http.Handler {
	t.Helper()
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	store := usecase.NewProspectStore(newNopKV(), nil)
	return NewRouter(
		RouterConfig{AllowedOrigins: []string{"*"}, RateLimiter: limiter, TrustProxy: trustProxy},
		NewProspectHandler(store, nil),
		NewOutreachHandler(outreach.DefaultSearchEndpoints()),
		NewHealthHandler(nil, nil, false, store.Len),
	)
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	h := newLimitedRouter(t, false)

	assert.Equal(t, http.StatusBadRequest, postFrom(h, "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(h, "2.2.2.2"))
}

func TestRateLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	h := newLimitedRouter(t, true)

	assert.Equal(t, http.StatusBadRequest, postFrom(h, "1.1.1.1"))
	assert.Equal(t, http.StatusBadRequest, postFrom(h, "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(h, "1.1.1.1"))
}

type nopKV struct{}

func newNopKV() nopKV { return nopKV{} }

func (nopKV) Load(context.Context, string) ([]byte, error) { return nil, entity.ErrKeyNotFound }
func (nopKV) Save(context.Context, string, []byte) error { return nil }
