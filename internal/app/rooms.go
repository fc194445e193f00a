package app

import (
	"sort"
	"sync"

	"github.com/novatrack/realtime/internal/domain"
)

// RoomIndex tracks call rooms: org -> room owner -> participant -> set of
// connection ids. Every member has an implicit room keyed by their own user
// id; a room is "in call" when it holds at least two distinct participants.
// All levels are pruned when they empty.
type RoomIndex struct {
	mu   sync.RWMutex
	orgs map[domain.OrgID]map[domain.UserID]map[domain.UserID]map[domain.ConnID]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{orgs: make(map[domain.OrgID]map[domain.UserID]map[domain.UserID]map[domain.ConnID]struct{})}
}

func (r *RoomIndex) Add(org domain.OrgID, owner, user domain.UserID, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms, ok := r.orgs[org]
	if !ok {
		rooms = make(map[domain.UserID]map[domain.UserID]map[domain.ConnID]struct{})
		r.orgs[org] = rooms
	}
	parts, ok := rooms[owner]
	if !ok {
		parts = make(map[domain.UserID]map[domain.ConnID]struct{})
		rooms[owner] = parts
	}
	conns, ok := parts[user]
	if !ok {
		conns = make(map[domain.ConnID]struct{})
		parts[user] = conns
	}
	conns[conn] = struct{}{}
}

func (r *RoomIndex) Remove(org domain.OrgID, owner, user domain.UserID, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms, ok := r.orgs[org]
	if !ok {
		return
	}
	parts, ok := rooms[owner]
	if !ok {
		return
	}
	conns, ok := parts[user]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(parts, user)
	}
	if len(parts) == 0 {
		delete(rooms, owner)
	}
	if len(rooms) == 0 {
		delete(r.orgs, org)
	}
}

// Participants returns the duplicate-free set of user ids currently keyed
// in the room, sorted.
func (r *RoomIndex) Participants(org domain.OrgID, owner domain.UserID) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parts := r.orgs[org][owner]
	out := make([]domain.UserID, 0, len(parts))
	for u := range parts {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *RoomIndex) IsParticipant(org domain.OrgID, owner, user domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.orgs[org][owner][user]
	return ok
}

// ParticipantConns returns the connection ids a participant holds inside
// one room.
func (r *RoomIndex) ParticipantConns(org domain.OrgID, owner, user domain.UserID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := r.orgs[org][owner][user]
	out := make([]domain.ConnID, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	return out
}

// RoomConns returns every connection id currently inside the room, the
// subscriber set of the room topic.
func (r *RoomIndex) RoomConns(org domain.OrgID, owner domain.UserID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ConnID
	for _, conns := range r.orgs[org][owner] {
		for id := range conns {
			out = append(out, id)
		}
	}
	return out
}

// UserInCall reports whether the user participates in any room of the org
// that holds two or more distinct participants.
func (r *RoomIndex) UserInCall(org domain.OrgID, user domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, parts := range r.orgs[org] {
		if _, ok := parts[user]; ok && len(parts) >= 2 {
			return true
		}
	}
	return false
}

// InCall returns the users participating in a call and the owners of rooms
// holding a call, both sorted.
func (r *RoomIndex) InCall(org domain.OrgID) (users, owners []domain.UserID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users = make([]domain.UserID, 0)
	owners = make([]domain.UserID, 0)
	seen := make(map[domain.UserID]struct{})
	for owner, parts := range r.orgs[org] {
		if len(parts) < 2 {
			continue
		}
		owners = append(owners, owner)
		for u := range parts {
			if _, ok := seen[u]; !ok {
				seen[u] = struct{}{}
				users = append(users, u)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return users, owners
}
