package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	defaultPingPeriod = 54 * time.Second
	writeWait         = 5 * time.Second
	eventBuffer       = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventStream pushes lifecycle events to websocket subscribers. A
// subscriber that falls behind the hub buffer misses events.
type eventStream struct {
	hub        *app.Hub
	pingPeriod time.Duration
}

func (es *eventStream) serve(ctx context.Context, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	defer conn.Close()

	events, cancel := es.hub.Subscribe(eventBuffer)
	defer cancel()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	go es.readPump(conn, stop)
	es.writePump(ctx, conn, events)
}

// readPump discards client frames; it exists to notice the close.
func (es *eventStream) readPump(conn *websocket.Conn, stop context.CancelFunc) {
	defer stop()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("events readPump closing")
			return
		}
	}
}

func (es *eventStream) writePump(ctx context.Context, conn *websocket.Conn, events <-chan domain.Event) {
	ping := time.NewTicker(es.pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("events marshal")
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("events set deadline")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("events write error")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
