package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/domain"
	"github.com/novatrack/realtime/internal/protocol"
)

// Broadcaster computes derived presence/room views and publishes them to
// topic subscribers. Delivery is fire-and-forget, at most once: slow
// subscribers are skipped, never retried.
type Broadcaster struct {
	Registry *Registry
	Presence *PresenceIndex
	Rooms    *RoomIndex
}

func NewBroadcaster(reg *Registry, presence *PresenceIndex, rooms *RoomIndex) *Broadcaster {
	return &Broadcaster{Registry: reg, Presence: presence, Rooms: rooms}
}

// OnlineUsers publishes the org-wide presence summary to every connection
// in the org.
func (b *Broadcaster) OnlineUsers(org domain.OrgID) {
	users := b.Presence.OnlineUsers(org)
	inCall, owners := b.Rooms.InCall(org)
	b.ToConns(b.Presence.OrgConns(org), protocol.NewOnlineUsers(org, users, inCall, owners))
}

// RoomParticipants publishes the room's current participant list to the
// room topic (its current occupants).
func (b *Broadcaster) RoomParticipants(org domain.OrgID, owner domain.UserID) {
	parts := b.Rooms.Participants(org, owner)
	b.ToConns(b.Rooms.RoomConns(org, owner), protocol.NewRoomParticipants(org, owner, parts))
}

// RoomJoined sends the one-shot join notification to every live connection
// of one user.
func (b *Broadcaster) RoomJoined(org domain.OrgID, owner, user domain.UserID) {
	b.ToUser(org, user, protocol.NewRoomJoined(org, owner))
}

// RelayEvent forwards an externally produced domain event verbatim onto the
// org presence topic. The payload is not interpreted here.
func (b *Broadcaster) RelayEvent(org domain.OrgID, event json.RawMessage) {
	for _, id := range b.Presence.OrgConns(org) {
		b.sendRaw(id, event)
	}
}

// ToUser sends one message to every live connection of one user in the org.
func (b *Broadcaster) ToUser(org domain.OrgID, user domain.UserID, v any) {
	b.ToConns(b.Presence.Conns(org, user), v)
}

// ToConns marshals once and fans out to the given connections.
func (b *Broadcaster) ToConns(ids []domain.ConnID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal broadcast")
		return
	}
	for _, id := range ids {
		b.sendRaw(id, data)
	}
}

func (b *Broadcaster) sendRaw(id domain.ConnID, data []byte) {
	conn, ok := b.Registry.Lookup(id)
	if !ok {
		return
	}
	if err := conn.Signal().TrySend(data); err != nil {
		log.Warn().Str("module", "app.broadcast").Str("conn", string(id)).Msg("dropped frame for slow subscriber")
	}
}
