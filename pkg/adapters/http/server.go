package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/polyglot/internal/logging"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/ports"
	"github.com/aretw0/polyglot/pkg/terms"
	"github.com/aretw0/polyglot/pkg/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes bounds a single request body.
const MaxBodyBytes = 1 << 20

// Processor runs one inbound message through the pipeline.
type Processor interface {
	Process(ctx context.Context, msg domain.Message) (*worker.Outcome, error)
}

// MessageRequest is the JSON form of an inbound paragraph message.
type MessageRequest struct {
	ID            string            `json:"id"`
	CorrelationID string            `json:"correlation_id"`
	Properties    map[string]string `json:"properties"`
	Body          string            `json:"body"`
}

// MessageResponse summarizes a completed invocation.
// The invocation itself always completes; failures are reported, not raised.
type MessageResponse struct {
	Warmup             bool               `json:"warmup"`
	Terms              domain.TermSet     `json:"terms"`
	Rule               *domain.RuleHandle `json:"rule,omitempty"`
	AlreadyProvisioned bool               `json:"already_provisioned"`
	FailedTracks       []domain.Track     `json:"failed_tracks,omitempty"`
	Error              string             `json:"error,omitempty"`
}

// InspectRequest asks for a routing preview of a text.
type InspectRequest struct {
	Text string `json:"text"`
}

// InspectResponse is the routing preview of a text.
type InspectResponse struct {
	Document *domain.AnnotatedDocument `json:"document"`
	Terms    domain.TermSet            `json:"terms"`
	Filter   *domain.RoutingFilter     `json:"filter,omitempty"`
}

// Server is the HTTP trigger for the paragraph pipeline.
type Server struct {
	processor Processor
	annotator ports.Annotator
	extractor terms.Extractor
	builder   filter.Builder
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithAnnotator enables POST /v1/inspect.
func WithAnnotator(a ports.Annotator) Option {
	return func(s *Server) {
		s.annotator = a
	}
}

// WithExtractor overrides the extractor used by /v1/inspect.
func WithExtractor(e terms.Extractor) Option {
	return func(s *Server) {
		s.extractor = e
	}
}

// WithFilterLimits sets the limits used by /v1/inspect.
func WithFilterLimits(limits filter.Limits) Option {
	return func(s *Server) {
		s.builder = filter.New(limits)
	}
}

// WithGatherer exposes the registry on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the processor.
func NewHandler(processor Processor, opts ...Option) http.Handler {
	s := &Server{
		processor: processor,
		builder:   filter.New(filter.DefaultLimits()),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Post("/v1/messages", s.Messages)
	if s.annotator != nil {
		r.Post("/v1/inspect", s.Inspect)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// Messages handles POST /v1/messages.
func (s *Server) Messages(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := decode(w, r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Messages: Invalid request body", "error", err)
		return
	}
	if body.ID == "" {
		http.Error(w, "Missing message id", http.StatusBadRequest)
		return
	}

	msg := domain.Message{
		ID:            body.ID,
		CorrelationID: body.CorrelationID,
		Properties:    domain.CloneProperties(body.Properties),
		Body:          []byte(body.Body),
	}

	out, err := s.processor.Process(r.Context(), msg)
	worker.LogOutcome(s.logger, msg, out, err)

	resp := MessageResponse{Terms: domain.NewTermSet()}
	if out != nil {
		resp.Warmup = out.Warmup
		resp.Rule = out.Rule
		resp.AlreadyProvisioned = out.AlreadyProvisioned
		if out.Terms != nil {
			resp.Terms = out.Terms
		}
	}
	if err != nil {
		resp.Error = err.Error()
		resp.FailedTracks = domain.FailedTracks(err)
	}
	writeJSON(w, s.logger, http.StatusAccepted, resp)
}

// Inspect handles POST /v1/inspect. Nothing is sent or provisioned.
func (s *Server) Inspect(w http.ResponseWriter, r *http.Request) {
	var body InspectRequest
	if err := decode(w, r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Inspect: Invalid request body", "error", err)
		return
	}

	doc, err := s.annotator.Annotate(r.Context(), body.Text)
	if err != nil {
		http.Error(w, "Annotation failed", http.StatusUnprocessableEntity)
		s.logger.Warn("Inspect: annotation failed", "error", err)
		return
	}

	resp := InspectResponse{Document: doc, Terms: s.extractor.Extract(doc)}
	if resp.Terms.Len() > 0 {
		f, err := s.builder.Build(resp.Terms)
		if err != nil && !errors.Is(err, domain.ErrFilterTooLarge) {
			http.Error(w, "Filter build failed", http.StatusInternalServerError)
			s.logger.Error("Inspect: filter build failed", "error", err)
			return
		}
		if err == nil {
			resp.Filter = &f
		}
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
