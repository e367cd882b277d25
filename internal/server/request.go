package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/librarygrid/librarygrid/internal/library"
)

var errEmptyQuery = errors.New("query must not be empty")

type SearchResponse struct {
	Query string         `json:"query"`
	Books []library.Book `json:"books"`
}

type GridResponse struct {
	XSize int `json:"x_size"`
	YSize int `json:"y_size"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func normalizeQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", errEmptyQuery
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
