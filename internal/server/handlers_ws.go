package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleBookSearchWS answers every text message with the search result for
// that message, in the same shape as GET /booksearch.
func (s *Server) handleBookSearchWS(w http.ResponseWriter, r *http.Request) {
	// the server timeouts would otherwise cut long-lived sessions
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // the UI is served from the same host
	})
	if err != nil {
		s.logger.Warn("ws: accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				s.logger.Debug("ws: read", "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "text queries only")
			return
		}

		if err := wsjson.Write(ctx, conn, s.answer(ctx, string(data))); err != nil {
			return
		}
	}
}

func (s *Server) answer(ctx context.Context, raw string) any {
	q, err := normalizeQuery(raw)
	if err != nil {
		return ErrorResponse{Error: err.Error()}
	}
	if !s.limiter.Allow() {
		return ErrorResponse{Error: "too many requests"}
	}

	resp, err := s.search(ctx, q)
	if err != nil {
		s.logger.Error("ws: booksearch failed", "query", q, "error", err)
		return ErrorResponse{Error: "search failed"}
	}
	return resp
}
