package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/engine"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/logging"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

const (
	// maxRequestBody is the maximum allowed JSON request body size (1 MB).
	maxRequestBody int64 = 1 << 20
	// multipartOverhead leaves room for multipart framing around an upload.
	multipartOverhead int64 = 1 << 20
	// maxMultipartMemory is how much of an upload is held in memory before
	// spilling to a temporary file.
	maxMultipartMemory int64 = 8 << 20
)

// Orchestrator is the pipeline as seen by the HTTP handlers.
type Orchestrator interface {
	Submit(ctx context.Context, ownerID string, in engine.Input) (*model.Artifact, error)
	RunSummarize(ctx context.Context, ownerID string, req engine.SummarizeRequest) (*model.Artifact, error)
	RunTranslate(ctx context.Context, ownerID string, req engine.TranslateRequest) (*model.Artifact, string, error)
	History(ctx context.Context, ownerID string, limit int) ([]model.Artifact, error)
	Replay(ctx context.Context, ownerID, id string) (*model.Artifact, error)
	ClearHistory(ctx context.Context, ownerID string) (int64, error)
}

// Accounts registers users and issues tokens.
type Accounts interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
}

// Authenticator wraps handlers that require a verified owner.
type Authenticator interface {
	RequireAuth(next http.Handler) http.Handler
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	MaxUploadBytes int64
	CORSOrigin     string
	Logger         *zap.Logger
}

// Server holds the HTTP handlers and dependencies.
type Server struct {
	pipeline Orchestrator
	accounts Accounts
	auth     Authenticator
	health   Pinger
	opts     Options
	logger   *zap.Logger
	mux      *http.ServeMux
}

// New creates a new API server.
func New(p Orchestrator, accounts Accounts, authn Authenticator, health Pinger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	srv := &Server{
		pipeline: p,
		accounts: accounts,
		auth:     authn,
		health:   health,
		opts:     opts,
		logger:   opts.Logger.Named("api"),
		mux:      http.NewServeMux(),
	}
	srv.routes()
	return srv
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	h := jsonContent(s.mux)
	h = limitBody(s.opts.MaxUploadBytes+multipartOverhead)(h)
	h = corsMiddleware(s.opts.CORSOrigin)(h)
	return logging.RequestLogger(s.logger)(h)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("POST /{$}", s.handleLogin)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.Handle("POST /upload", s.auth.RequireAuth(http.HandlerFunc(s.handleUpload)))
	s.mux.Handle("POST /summarize", s.auth.RequireAuth(http.HandlerFunc(s.handleSummarize)))
	s.mux.Handle("POST /translate", s.auth.RequireAuth(http.HandlerFunc(s.handleTranslate)))
	s.mux.Handle("GET /summaries", s.auth.RequireAuth(http.HandlerFunc(s.handleListSummaries)))
	s.mux.Handle("GET /summaries/{id}", s.auth.RequireAuth(http.HandlerFunc(s.handleGetSummary)))
	s.mux.Handle("DELETE /summaries", s.auth.RequireAuth(http.HandlerFunc(s.handleClearSummaries)))
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// corsMiddleware sets CORS headers for the configured origin.
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limitBody restricts every request body to n bytes.
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

func jsonContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}
