package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"campus-quiz-service/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type liveFrame struct {
	Type    string             `json:"type"`
	Payload domain.Leaderboard `json:"payload"`
}

// LiveLeaderboard upgrades the request to a websocket and streams a
// leaderboard frame on every accepted submission, starting with the current
// standing. The stream is server-to-client only; the read pump exists solely
// to notice the client going away.
func (h *Handler) LiveLeaderboard(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("leaderboard subscription failed")
		return
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(liveFrame{Type: "leaderboard", Payload: lb}); err != nil {
				log.Debug().Err(err).Msg("ws write failed, dropping subscriber")
				return
			}
		case <-done:
			return
		}
	}
}
