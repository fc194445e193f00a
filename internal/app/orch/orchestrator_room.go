package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
	"github.com/novatrack/realtime/internal/protocol"
)

// JoinRoom moves the connection into target's room.
//
// Rejoining the current room is an idempotent no-op that re-sends the
// room-joined and room-participants frames without mutating anything; the
// in-call check is deliberately skipped for it so repeated joins stay
// idempotent mid-call. The membership lookup for a foreign room owner is
// the one suspension point in the core: a second join racing through that
// gap resolves last-write-wins on the connection's room ref.
func (o *Orchestrator) JoinRoom(ctx context.Context, conn *core.Conn, target domain.UserID) error {
	if target.Valid() && target == conn.RoomOwner() {
		o.resendRoomState(conn)
		return nil
	}
	if o.Rooms.UserInCall(conn.OrgID, conn.UserID) {
		return core.ErrInCall("already in a call")
	}
	if !target.Valid() {
		return core.ErrInvalidRoom("roomUserId must be a positive integer")
	}
	if target != conn.UserID {
		mem, err := o.Directory.Membership(ctx, conn.OrgID, target)
		if err != nil {
			log.Warn().Err(err).Str("module", "orch").Int64("org", int64(conn.OrgID)).Int64("target", int64(target)).Msg("membership lookup failed, dropping join")
			return nil
		}
		if mem == nil {
			return core.ErrForbiddenRoom("room owner is not an organisation member")
		}
	}

	o.moveToRoom(conn, target)
	o.Cast.RoomJoined(conn.OrgID, target, conn.UserID)
	if target != conn.UserID {
		o.Cast.RoomJoined(conn.OrgID, target, target)
	}
	return nil
}

// LeaveRoom returns the connection to its own self-room. Always legal.
func (o *Orchestrator) LeaveRoom(conn *core.Conn) error {
	if conn.Room().IsSelf() {
		o.resendRoomState(conn)
		return nil
	}
	o.moveToRoom(conn, conn.UserID)
	o.Cast.RoomJoined(conn.OrgID, conn.UserID, conn.UserID)
	return nil
}

// EndRoom dissolves the sender's own room. Every other participant is
// relocated to their own self-room. A connection that currently occupies
// someone else's room cannot end anything.
func (o *Orchestrator) EndRoom(conn *core.Conn) error {
	if !conn.Room().IsSelf() {
		return core.ErrForbiddenRoom("not the room owner")
	}
	org, owner := conn.OrgID, conn.UserID

	var affected []domain.UserID
	for _, u := range o.Rooms.Participants(org, owner) {
		if u == owner {
			continue
		}
		affected = append(affected, u)
		for _, id := range o.Rooms.ParticipantConns(org, owner, u) {
			o.Rooms.Remove(org, owner, u, id)
			pc, ok := o.Registry.Lookup(id)
			if !ok {
				continue
			}
			o.Rooms.Add(org, u, u, id)
			pc.SetRoom(domain.SelfRoom())
		}
	}

	for _, u := range affected {
		o.Cast.RoomJoined(org, u, u)
	}
	// An already-empty room still gets its (empty) list re-published.
	o.Cast.RoomParticipants(org, owner)
	for _, u := range affected {
		o.Cast.RoomParticipants(org, u)
	}
	o.Cast.OnlineUsers(org)
	log.Info().Str("module", "orch").Int64("org", int64(org)).Int64("owner", int64(owner)).Int("relocated", len(affected)).Msg("room ended")
	return nil
}

// moveToRoom performs the genuine transition: out of the old room, into the
// new one, then participant lists for both plus the org summary.
func (o *Orchestrator) moveToRoom(conn *core.Conn, target domain.UserID) {
	org, user := conn.OrgID, conn.UserID
	old := conn.RoomOwner()

	o.Rooms.Remove(org, old, user, conn.ID)
	o.Rooms.Add(org, target, user, conn.ID)
	conn.SetRoom(domain.JoinedRoom(target))

	o.Cast.RoomParticipants(org, old)
	o.Cast.RoomParticipants(org, target)
	o.Cast.OnlineUsers(org)
	log.Info().Str("module", "orch").Str("conn", string(conn.ID)).Int64("from", int64(old)).Int64("to", int64(target)).Msg("moved room")
}

// resendRoomState re-sends the current room frames to one connection only.
func (o *Orchestrator) resendRoomState(conn *core.Conn) {
	org, owner := conn.OrgID, conn.RoomOwner()
	to := []domain.ConnID{conn.ID}
	o.Cast.ToConns(to, protocol.NewRoomJoined(org, owner))
	o.Cast.ToConns(to, protocol.NewRoomParticipants(org, owner, o.Rooms.Participants(org, owner)))
}
