package web

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sonashow/internal/logging"
	"sonashow/internal/notifications"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// maxFrameSize bounds inbound websocket frames.
const maxFrameSize = 64 << 10

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *Server) handleSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(maxFrameSize)

	first := s.hub.Count() == 0
	id := s.hub.Add(ws)
	defer s.hub.Remove(id)
	logger := s.logger.With(logging.String("client_id", id))

	if snapshot := s.ctrl.ConnectSnapshot(first); len(snapshot) > 0 {
		if err := s.hub.SendTo(id, notifications.EventMoreShowsLoaded, snapshot); err != nil {
			logger.Debug("initial snapshot failed", logging.Error(err))
			return
		}
	}

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Event == "" {
			logger.Debug("ignoring malformed frame", logging.Int("bytes", len(payload)))
			continue
		}
		if err := s.ctrl.Dispatch(frame.Event, frame.Data); err != nil {
			logging.WarnWithContext(logger, "client event rejected", "client_event_rejected",
				logging.String("event", frame.Event),
				logging.Error(err),
				logging.String(logging.FieldImpact, "event ignored"))
		}
	}
}
