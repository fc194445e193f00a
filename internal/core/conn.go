package core

import (
	"sync"

	"github.com/novatrack/realtime/internal/domain"
)

// Frame is a marshaled wire message.
type Frame []byte

// SignalConnection abstracts the realtime transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Conn is one live transport session for one user device/tab. It carries
// the occupied room ref, which other connections' handlers may move (an
// end-room relocates every participant), so access is serialized here.
type Conn struct {
	ID     domain.ConnID
	UserID domain.UserID
	OrgID  domain.OrgID

	sig SignalConnection

	mu   sync.Mutex
	room domain.RoomRef
}

func NewConn(id domain.ConnID, org domain.OrgID, user domain.UserID, sig SignalConnection) *Conn {
	return &Conn{ID: id, UserID: user, OrgID: org, sig: sig}
}

func (c *Conn) Signal() SignalConnection { return c.sig }

// Room returns the ref of the room this connection currently occupies.
func (c *Conn) Room() domain.RoomRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// RoomOwner resolves the current room's addressing key.
func (c *Conn) RoomOwner() domain.UserID {
	return c.Room().Owner(c.UserID)
}

func (c *Conn) SetRoom(r domain.RoomRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = r.Normalize(c.UserID)
}
