package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/polyglot/internal/logging"
	"github.com/aretw0/polyglot/internal/sanitize"
	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/terms"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ModelURI is the resource that describes the loaded annotation model.
const ModelURI = "polyglot://model"

// TextArgs is the input of every text tool.
type TextArgs struct {
	Text string `json:"text"`
}

// TermsResponse lists the routing terms of a text.
type TermsResponse struct {
	Terms []string `json:"terms" jsonschema_description:"Distinct root forms in sorted order"`
}

// FilterResponse is a routing filter together with the terms it binds.
type FilterResponse struct {
	Terms      []string          `json:"terms"`
	Expression string            `json:"expression" jsonschema_description:"Parameterized match expression"`
	Parameters map[string]string `json:"parameters" jsonschema_description:"Parameter bindings @w1..@wN"`
}

// Server exposes the annotation pipeline as MCP tools.
// Tools are side-effect free: nothing is sent and no rule is created.
type Server struct {
	annotator *annotate.Annotator
	extractor terms.Extractor
	builder   filter.Builder
	version   string
	maxInput  int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithExtractor overrides the term extractor.
func WithExtractor(e terms.Extractor) Option {
	return func(s *Server) {
		s.extractor = e
	}
}

// WithFilterLimits sets the limits used by build_filter.
func WithFilterLimits(limits filter.Limits) Option {
	return func(s *Server) {
		s.builder = filter.New(limits)
	}
}

// WithMaxInput sets the largest text, in bytes, a tool accepts.
func WithMaxInput(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// WithVersion sets the version reported during initialization.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(annotator *annotate.Annotator, opts ...Option) *Server {
	s := &Server{
		annotator: annotator,
		builder:   filter.New(filter.DefaultLimits()),
		version:   "dev",
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("polyglot-mcp", s.version)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: annotate
	s.mcpServer.AddTool(mcp.NewTool("annotate",
		mcp.WithDescription("Tokenize a paragraph and return the annotated document (tokens with offsets, root forms and flags)."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Paragraph text")),
		mcp.WithOutputSchema[domain.AnnotatedDocument](),
	), mcp.NewStructuredToolHandler(s.handleAnnotate))

	// TOOL: extract_terms
	s.mcpServer.AddTool(mcp.NewTool("extract_terms",
		mcp.WithDescription("Return the distinct routing terms of a paragraph."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Paragraph text")),
		mcp.WithOutputSchema[TermsResponse](),
	), mcp.NewStructuredToolHandler(s.handleExtractTerms))

	// TOOL: build_filter
	s.mcpServer.AddTool(mcp.NewTool("build_filter",
		mcp.WithDescription("Build the routing filter a paragraph would be provisioned with."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Paragraph text")),
		mcp.WithOutputSchema[FilterResponse](),
	), mcp.NewStructuredToolHandler(s.handleBuildFilter))
}

func (s *Server) handleAnnotate(ctx context.Context, _ mcp.CallToolRequest, args TextArgs) (domain.AnnotatedDocument, error) {
	text, err := s.clean(args.Text)
	if err != nil {
		return domain.AnnotatedDocument{}, err
	}
	doc, err := s.annotator.Annotate(ctx, text)
	if err != nil {
		return domain.AnnotatedDocument{}, fmt.Errorf("annotate failed: %w", err)
	}
	return *doc, nil
}

func (s *Server) handleExtractTerms(ctx context.Context, _ mcp.CallToolRequest, args TextArgs) (TermsResponse, error) {
	set, err := s.terms(ctx, args.Text)
	if err != nil {
		return TermsResponse{}, err
	}
	return TermsResponse{Terms: set.Sorted()}, nil
}

func (s *Server) handleBuildFilter(ctx context.Context, _ mcp.CallToolRequest, args TextArgs) (FilterResponse, error) {
	set, err := s.terms(ctx, args.Text)
	if err != nil {
		return FilterResponse{}, err
	}
	f, err := s.builder.Build(set)
	if err != nil {
		s.logger.Warn("build_filter rejected", "terms", set.Len(), "error", err)
		return FilterResponse{}, fmt.Errorf("build filter failed: %w", err)
	}
	return FilterResponse{
		Terms:      set.Sorted(),
		Expression: f.Expression,
		Parameters: f.Parameters,
	}, nil
}

func (s *Server) terms(ctx context.Context, text string) (domain.TermSet, error) {
	text, err := s.clean(text)
	if err != nil {
		return nil, err
	}
	doc, err := s.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("annotate failed: %w", err)
	}
	return s.extractor.Extract(doc), nil
}

func (s *Server) clean(text string) (string, error) {
	clean, err := sanitize.Text(text, s.maxInput)
	if err != nil {
		s.logger.Warn("MCP: input rejected", "error", err, "size", len(text))
		return "", fmt.Errorf("input rejected: %w", err)
	}
	return clean, nil
}

func (s *Server) registerResources() {
	// EXPOSE: polyglot://model
	s.mcpServer.AddResource(mcp.NewResource(ModelURI, "Annotation Model",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.modelInfo()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ModelURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

func (s *Server) modelInfo() (string, error) {
	limits := s.builder.Limits
	info := map[string]any{
		"model":                 s.annotator.Name(),
		"keep_stopwords":        s.extractor.KeepStopwords,
		"max_expression_length": limits.MaxExpressionLength,
		"max_parameters":        limits.MaxParameters,
	}
	data, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal model info: %w", err)
	}
	return string(data), nil
}
