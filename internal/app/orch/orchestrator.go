// Package orch ties the realtime core together: it authorizes and registers
// new connections, dispatches inbound messages to the room state machine or
// the signaling relay, and unwinds all indices on disconnect.
package orch

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/app"
	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
	"github.com/novatrack/realtime/internal/protocol"
)

type Orchestrator struct {
	Registry  *app.Registry
	Presence  *app.PresenceIndex
	Rooms     *app.RoomIndex
	Cast      *app.Broadcaster
	Directory core.MembershipDirectory
}

func New(reg *app.Registry, presence *app.PresenceIndex, rooms *app.RoomIndex, cast *app.Broadcaster, dir core.MembershipDirectory) *Orchestrator {
	return &Orchestrator{Registry: reg, Presence: presence, Rooms: rooms, Cast: cast, Directory: dir}
}

// Connect registers an authorized connection into all three indices. The
// connection starts in its own self-room. Session and membership checks
// happen in the transport adapter before the upgrade; by the time a Conn
// exists it is legitimate.
func (o *Orchestrator) Connect(conn *core.Conn) {
	conn.SetRoom(domain.SelfRoom())
	o.Registry.Register(conn)
	o.Presence.Add(conn.OrgID, conn.UserID, conn.ID)
	o.Rooms.Add(conn.OrgID, conn.UserID, conn.UserID, conn.ID)

	o.Cast.OnlineUsers(conn.OrgID)
	o.Cast.RoomParticipants(conn.OrgID, conn.UserID)
	log.Info().Str("module", "orch").Str("conn", string(conn.ID)).Int64("user", int64(conn.UserID)).Int64("org", int64(conn.OrgID)).Msg("connection joined")
}

// Disconnect unwinds the connection from every index and re-broadcasts the
// views it affected.
func (o *Orchestrator) Disconnect(conn *core.Conn) {
	owner := conn.RoomOwner()
	o.Registry.Unregister(conn.ID)
	o.Presence.Remove(conn.OrgID, conn.UserID, conn.ID)
	o.Rooms.Remove(conn.OrgID, owner, conn.UserID, conn.ID)

	o.Cast.OnlineUsers(conn.OrgID)
	o.Cast.RoomParticipants(conn.OrgID, owner)
	log.Info().Str("module", "orch").Str("conn", string(conn.ID)).Int64("user", int64(conn.UserID)).Msg("connection left")
}

// Dispatch routes one parsed inbound message. In-band failures are reported
// to the sender only and never terminate the connection.
func (o *Orchestrator) Dispatch(ctx context.Context, conn *core.Conn, msg protocol.Inbound) {
	var err error
	switch m := msg.(type) {
	case protocol.JoinRoom:
		err = o.JoinRoom(ctx, conn, m.RoomUserID)
	case protocol.LeaveRoom:
		err = o.LeaveRoom(conn)
	case protocol.EndRoom:
		err = o.EndRoom(conn)
	case protocol.SessionSignal:
		err = o.RelaySessionSignal(conn, m)
	case protocol.PeerState:
		err = o.RelayPeerState(conn, m)
	}
	if err != nil {
		o.reportError(conn, err)
	}
}

func (o *Orchestrator) reportError(conn *core.Conn, err error) {
	var re *core.RoomError
	if !errors.As(err, &re) {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(conn.ID)).Msg("message handling failed")
		return
	}
	log.Debug().Str("module", "orch").Str("conn", string(conn.ID)).Str("code", string(re.Code)).Msg("room error")
	o.Cast.ToConns([]domain.ConnID{conn.ID}, protocol.NewRoomError(string(re.Code), re.Message))
}
