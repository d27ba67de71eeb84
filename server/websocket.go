package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/log"
)

// handleWebSocket answers one query per text frame until the client disconnects.
func (s *Server) handleWebSocket(c echo.Context) error {
	ctx := c.Request().Context()
	logger := log.FromCtx(ctx)

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("websocket closed")
			}
			return nil
		}

		var req queryRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			if err := conn.WriteJSON(errorResponse{Error: "invalid message"}); err != nil {
				return nil
			}
			continue
		}

		ans, _, err := s.answer(ctx, req)
		var out any = ans
		if err != nil {
			out = errorResponse{Error: err.Error()}
		}
		if err := conn.WriteJSON(out); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return nil
		}
	}
}

// answer validates req and runs it under the model timeout.
func (s *Server) answer(ctx context.Context, req queryRequest) (*core.Answer, int, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, http.StatusBadRequest, errEmptyQuery
	}
	k := req.K
	if k <= 0 {
		k = s.cfg.TopK
	}

	ctx, cancel := s.modelContext(ctx)
	defer cancel()

	ans, err := s.answerer.Answer(ctx, query, k)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("answer failed")
		return nil, http.StatusInternalServerError, err
	}
	return ans, http.StatusOK, nil
}
