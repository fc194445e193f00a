package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/protocol"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, conn *core.Conn, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(conn.ID)).Msg("readPump closing")
		ctl.Orch.Disconnect(conn)
		ctl.limiter.Forget(conn.ID)
		cancel()
		c.Close()
	}()

	readWait := 2 * ctl.Cfg.PingPeriod
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleFrame(ctx, conn, data)
		}
	}
}

// handleFrame parses and dispatches one inbound frame. Unparseable and
// unrecognized payloads are dropped without a reply.
func (ctl *Controller) handleFrame(ctx context.Context, conn *core.Conn, data []byte) {
	msg, ok := protocol.Parse(data)
	if !ok {
		log.Debug().Str("module", "signal").Str("conn", string(conn.ID)).Msg("dropping unrecognized payload")
		return
	}
	switch msg.(type) {
	case protocol.JoinRoom, protocol.LeaveRoom, protocol.EndRoom:
		if !ctl.limiter.Allow(conn.ID) {
			log.Warn().Str("module", "signal").Str("conn", string(conn.ID)).Msg("room control rate limit hit")
			return
		}
	}
	ctl.Orch.Dispatch(ctx, conn, msg)
}
