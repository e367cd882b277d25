package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/library"
	"github.com/librarygrid/librarygrid/internal/marker"
	"github.com/librarygrid/librarygrid/internal/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	webVersion, err := marker.Read(filepath.Join(s.webDir, layout.VersionFile))
	if err != nil {
		webVersion = "unknown"
	}

	status := "ok"
	count, err := s.books.Count(r.Context())
	if err != nil {
		s.logger.Warn("health: count books", "error", err)
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"version":     version.Version,
		"commit":      version.Commit,
		"web_version": webVersion,
		"uptime":      time.Since(s.startTime).Seconds(),
		"book_count":  count,
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GridResponse{XSize: s.cfg.Grid.XSize, YSize: s.cfg.Grid.YSize})
}

func (s *Server) handleBookSearch(w http.ResponseWriter, r *http.Request) {
	q, err := normalizeQuery(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.search(r.Context(), q)
	if err != nil {
		s.logger.Error("booksearch failed", "query", q, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, library.ErrNotInitialized) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) search(ctx context.Context, q string) (SearchResponse, error) {
	books, err := s.books.Search(ctx, q, s.cfg.Search.Limit)
	if err != nil {
		return SearchResponse{}, err
	}
	return SearchResponse{Query: q, Books: books}, nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// staticHandler serves the deployed web tree. The directory is resolved on
// every request so a swapped-in tree is picked up without a restart.
func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.Dir(s.webDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		name := filepath.Join(s.webDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); err != nil {
			s.handleNotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
