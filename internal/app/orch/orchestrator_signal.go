package orch

import (
	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
	"github.com/novatrack/realtime/internal/protocol"
)

// checkSignalRoom validates that the sender may signal into the addressed
// room: the ref must match the room the connection currently occupies, and
// the sender must still be a participant of it.
func (o *Orchestrator) checkSignalRoom(conn *core.Conn, room domain.UserID) error {
	if room != conn.RoomOwner() {
		return core.ErrSignalInvalid("stale room signaling")
	}
	if !o.Rooms.IsParticipant(conn.OrgID, room, conn.UserID) {
		return core.ErrSignalInvalid("sender not in room")
	}
	return nil
}

// RelaySessionSignal forwards an offer, answer or ICE candidate to the
// addressed participant's live connections that still occupy the room.
// Connections that have since left are skipped, not errored.
func (o *Orchestrator) RelaySessionSignal(conn *core.Conn, m protocol.SessionSignal) error {
	if err := o.checkSignalRoom(conn, m.RoomUserID); err != nil {
		return err
	}
	if m.TargetUserID == conn.UserID {
		return core.ErrSignalInvalid("invalid target")
	}
	if !o.Rooms.IsParticipant(conn.OrgID, m.RoomUserID, m.TargetUserID) {
		return core.ErrSignalInvalid("target not in room")
	}
	targets := o.Presence.Conns(conn.OrgID, m.TargetUserID)
	if len(targets) == 0 {
		return core.ErrSignalInvalid("target not connected")
	}

	live := targets[:0]
	for _, id := range targets {
		tc, ok := o.Registry.Lookup(id)
		if !ok || tc.RoomOwner() != m.RoomUserID {
			continue
		}
		live = append(live, id)
	}
	o.Cast.ToConns(live, protocol.SessionSignalForward{
		Type:       m.Kind,
		RoomUserID: m.RoomUserID,
		FromUserID: conn.UserID,
		SDP:        m.SDP,
		Candidate:  m.Candidate,
	})
	return nil
}

// RelayPeerState fans a mute/speaking update out to the whole room topic.
func (o *Orchestrator) RelayPeerState(conn *core.Conn, m protocol.PeerState) error {
	if err := o.checkSignalRoom(conn, m.RoomUserID); err != nil {
		return err
	}
	o.Cast.ToConns(o.Rooms.RoomConns(conn.OrgID, m.RoomUserID), protocol.PeerStateForward{
		Type:       protocol.TypePeerState,
		RoomUserID: m.RoomUserID,
		FromUserID: conn.UserID,
		Muted:      m.Muted,
		Speaking:   m.Speaking,
	})
	return nil
}
