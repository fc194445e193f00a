package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrack/realtime/internal/app"
	"github.com/novatrack/realtime/internal/app/orch"
	"github.com/novatrack/realtime/internal/config"
	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
	"github.com/novatrack/realtime/internal/protocol"
)

type fakeDirectory struct{}

func (fakeDirectory) Verify(_ context.Context, token string) (*core.Session, error) {
	if token != "good" {
		return nil, core.ErrSessionInvalid
	}
	return &core.Session{ID: "sess-1", UserID: 42, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeDirectory) GetSession(_ context.Context, id string) (*core.Session, error) {
	return nil, core.ErrSessionInvalid
}

func (fakeDirectory) Membership(_ context.Context, org domain.OrgID, user domain.UserID) (*core.Membership, error) {
	if org == 10 && user == 42 {
		return &core.Membership{Role: "member"}, nil
	}
	return nil, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:               "release",
		ReadLimit:          32768,
		PingPeriod:         54 * time.Second,
		SignalRateLimit:    20,
		SignalRateInterval: 10 * time.Second,
	}
	reg := app.NewRegistry()
	presence := app.NewPresenceIndex()
	rooms := app.NewRoomIndex()
	cast := app.NewBroadcaster(reg, presence, rooms)
	ctl := NewController(orch.New(reg, presence, rooms, cast, fakeDirectory{}), fakeDirectory{}, cfg)

	r := gin.New()
	r.GET("/api/ws", func(c *gin.Context) {
		ctl.HandleSocket(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?" + query
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHandleSocketRejectsBeforeUpgrade(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		query  string
		status int
	}{
		{"organisationId=abc&token=good", http.StatusBadRequest},
		{"token=good", http.StatusBadRequest},
		{"organisationId=10", http.StatusUnauthorized},
		{"organisationId=10&token=bad", http.StatusUnauthorized},
		{"organisationId=11&token=good", http.StatusForbidden},
	}
	for _, c := range cases {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, c.query), nil)
		require.Error(t, err, c.query)
		require.NotNil(t, resp, c.query)
		assert.Equal(t, c.status, resp.StatusCode, c.query)
	}
}

func TestHandleSocketConnectFlow(t *testing.T) {
	srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "organisationId=10&token=good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	online := readFrame(t, conn)
	assert.Equal(t, protocol.TypeOnlineUsers, online["type"])
	assert.Equal(t, []any{float64(42)}, online["userIds"])

	parts := readFrame(t, conn)
	assert.Equal(t, protocol.TypeRoomParticipants, parts["type"])
	assert.Equal(t, float64(42), parts["roomUserId"])

	// Unknown payloads are dropped without closing the connection.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"mystery"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"leave-room"}`)))

	joined := readFrame(t, conn)
	assert.Equal(t, protocol.TypeRoomJoined, joined["type"])
	assert.Equal(t, float64(42), joined["roomUserId"])
}
