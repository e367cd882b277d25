package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/librarygrid/librarygrid/internal/config"
	"github.com/librarygrid/librarygrid/internal/library"
)

// Books is the part of the library store the HTTP layer reads from.
type Books interface {
	Search(ctx context.Context, q string, limit int) ([]library.Book, error)
	Count(ctx context.Context) (int, error)
}

type Server struct {
	cfg       *config.Config
	books     Books
	webDir    string
	logger    *slog.Logger
	limiter   *rate.Limiter
	httpSrv   *http.Server
	startTime time.Time
}

func New(cfg *config.Config, books Books, webDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.Search.Rate > 0 {
		limit = rate.Limit(cfg.Search.Rate)
	}

	s := &Server{
		cfg:       cfg,
		books:     books,
		webDir:    webDir,
		logger:    logger,
		limiter:   rate.NewLimiter(limit, max(cfg.Search.Burst, 1)),
		startTime: time.Now(),
	}
	s.httpSrv = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /grid", s.handleGrid)

	search := http.NewServeMux()
	search.HandleFunc("GET /booksearch", s.handleBookSearch)
	search.HandleFunc("GET /ws/booksearch", s.handleBookSearchWS)
	search.HandleFunc("/", s.handleNotFound)

	mux.Handle("/booksearch", s.rateLimitMiddleware(search))
	mux.Handle("/ws/", search)

	mux.Handle("/", s.staticHandler())

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)

	return handler
}

// Start serves until Shutdown is called, then returns http.ErrServerClosed.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("librarygrid listening", "addr", ln.Addr().String(), "web", s.webDir)
	return s.httpSrv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
