package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/service"
)

const streamHeartbeat = 25 * time.Second

// StreamHandler pushes order events to authenticated clients over
// server-sent events. Delivery is best effort: a client that was not
// connected when the event fired has to refetch its orders.
type StreamHandler struct {
	bus    service.EventBus
	logger *logrus.Logger
}

func NewStreamHandler(bus service.EventBus, logger *logrus.Logger) *StreamHandler {
	return &StreamHandler{bus: bus, logger: logger}
}

func (h *StreamHandler) StreamOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	events, cancel := h.bus.Subscribe(c.Request.Context(), userID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	h.logger.Debugf("SSE stream opened for user %s", userID)

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.Debugf("SSE stream closed for user %s", userID)
}
