package signal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/app/orch"
	"github.com/novatrack/realtime/internal/config"
	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// SessionCookie carries the caller's session token in browser contexts; a
// ?token= query parameter is accepted as fallback for non-browser clients.
const SessionCookie = "nova_session"

type Controller struct {
	Orch    *orch.Orchestrator
	Dir     core.Directory
	Cfg     *config.Config
	limiter *RateLimiter
}

func NewController(o *orch.Orchestrator, dir core.Directory, cfg *config.Config) *Controller {
	return &Controller{
		Orch:    o,
		Dir:     dir,
		Cfg:     cfg,
		limiter: NewRateLimiter(cfg.SignalRateLimit, cfg.SignalRateInterval),
	}
}

// wsConn is the transport endpoint handed to the core. Frames are queued on
// a buffered channel; a full queue drops the frame rather than blocking a
// broadcast.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSocket authorizes and upgrades one realtime connection. Any failure
// before the upgrade answers with a plain HTTP status and never reaches the
// core.
func (ctl *Controller) HandleSocket(ctx context.Context, c *gin.Context) {
	org, err := strconv.ParseInt(c.Query("organisationId"), 10, 64)
	if err != nil || org <= 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	token := ctl.sessionToken(c)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	sess, err := ctl.Dir.Verify(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrSessionInvalid) {
			c.AbortWithStatus(http.StatusUnauthorized)
		} else {
			log.Error().Err(err).Str("module", "signal").Msg("session verify")
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}
	mem, err := ctl.Dir.Membership(c.Request.Context(), domain.OrgID(org), sess.UserID)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("membership lookup")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if mem == nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	wc := &wsConn{conn: ws, send: make(chan core.Frame, 64)}
	conn := core.NewConn(domain.ConnID(uuid.NewString()), domain.OrgID(org), sess.UserID, wc)
	log.Info().Str("module", "signal").Str("conn", string(conn.ID)).Int64("user", int64(sess.UserID)).Int64("org", org).Msg("new WS connection")

	connCtx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(conn)
	go ctl.writePump(connCtx, wc)
	go ctl.readPump(connCtx, cancel, conn, wc)
}

func (ctl *Controller) sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	return c.Query("token")
}
