package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpAdapter "github.com/aretw0/polyglot/pkg/adapters/http"
	"github.com/aretw0/polyglot/pkg/adapters/memory"
	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/observability"
	"github.com/aretw0/polyglot/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	docs    *memory.Bus
	topics  *memory.Bus
	admin   *memory.RuleAdmin
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a, err := annotate.Load(annotate.DefaultModel, "")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	f := &fixture{
		docs:   memory.NewBus(),
		topics: memory.NewBus(),
		admin:  memory.NewRuleAdmin(),
	}
	w, err := worker.New(worker.Config{
		Annotator:      a,
		DocumentSender: f.docs,
		TermSender:     f.topics,
		RuleAdmin:      f.admin,
	}, worker.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	f.handler = httpAdapter.NewHandler(w,
		httpAdapter.WithAnnotator(a),
		httpAdapter.WithGatherer(reg),
	)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMessages_Paragraph(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/messages",
		`{"id":"m-1","correlation_id":"c1","properties":{"ParagraphNumber":"3"},"body":"The cats sat."}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp httpAdapter.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Warmup)
	assert.Equal(t, []string{"cat", "sit"}, resp.Terms.Sorted())
	require.NotNil(t, resp.Rule)
	assert.Equal(t, "paragraph-3-rule", resp.Rule.Name)
	assert.Empty(t, resp.Error)

	assert.Len(t, f.docs.Messages(domain.Queue(domain.AnnotatedParagraphsQueue)), 1)
	assert.Len(t, f.topics.Messages(domain.Topic(domain.LemmasTopic)), 3)
	assert.Equal(t, 1, f.admin.Count(domain.DictionaryArticlesTopic, "c1"))
}

func TestMessages_Warmup(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/messages", `{"id":"warmup-message"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp httpAdapter.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Warmup)
	assert.Zero(t, f.docs.Total()+f.topics.Total())
}

func TestMessages_FailureIsReportedNotRaised(t *testing.T) {
	f := newFixture(t)
	f.topics.FailOn(domain.Topic(domain.LemmasTopic), domain.ErrTransport)

	rec := f.do(t, http.MethodPost, "/v1/messages",
		`{"id":"m-1","correlation_id":"c1","properties":{"ParagraphNumber":"1"},"body":"Dogs bark."}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp httpAdapter.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []domain.Track{domain.TrackTerms}, resp.FailedTracks)
	assert.NotEmpty(t, resp.Error)
	assert.Len(t, f.docs.Messages(domain.Queue(domain.AnnotatedParagraphsQueue)), 1)
}

func TestMessages_BadRequest(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/messages", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/messages", `{"body":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/messages", `{"id":"m","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInspect(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/inspect", `{"text":"The cats sat."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpAdapter.InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Document)
	assert.Len(t, resp.Document.Tokens, 4)
	assert.Equal(t, []string{"cat", "sit"}, resp.Terms.Sorted())
	require.NotNil(t, resp.Filter)
	assert.Equal(t, "sys.label IN (@w1, @w2)", resp.Filter.Expression)
	assert.Zero(t, f.docs.Total()+f.topics.Total())
}

func TestInspect_NoTermsHasNoFilter(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/inspect", `{"text":"?!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpAdapter.InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Filter)
	assert.Zero(t, resp.Terms.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/v1/messages", `{"id":"warmup-message"}`)

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "polyglot_warmups_total 1")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodOptions, "/v1/messages", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestInspect_DisabledWithoutAnnotator(t *testing.T) {
	w, err := worker.New(worker.Config{
		Annotator:      annotate.NewLazy(func() (*annotate.Annotator, error) { return annotate.Load("", "") }),
		DocumentSender: memory.NewBus(),
		TermSender:     memory.NewBus(),
		RuleAdmin:      memory.NewRuleAdmin(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/inspect", strings.NewReader(`{"text":"x"}`))
	rec := httptest.NewRecorder()
	httpAdapter.NewHandler(w).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
