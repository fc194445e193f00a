package app

import (
	"sort"
	"sync"

	"github.com/novatrack/realtime/internal/domain"
)

// PresenceIndex tracks which organisation members are online:
// org -> user -> set of connection ids. Entries are reference-counted by
// connection membership; removing the last connection prunes the user, and
// removing the last user prunes the org.
type PresenceIndex struct {
	mu   sync.RWMutex
	orgs map[domain.OrgID]map[domain.UserID]map[domain.ConnID]struct{}
}

func NewPresenceIndex() *PresenceIndex {
	return &PresenceIndex{orgs: make(map[domain.OrgID]map[domain.UserID]map[domain.ConnID]struct{})}
}

func (p *PresenceIndex) Add(org domain.OrgID, user domain.UserID, conn domain.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	users, ok := p.orgs[org]
	if !ok {
		users = make(map[domain.UserID]map[domain.ConnID]struct{})
		p.orgs[org] = users
	}
	conns, ok := users[user]
	if !ok {
		conns = make(map[domain.ConnID]struct{})
		users[user] = conns
	}
	conns[conn] = struct{}{}
}

func (p *PresenceIndex) Remove(org domain.OrgID, user domain.UserID, conn domain.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	users, ok := p.orgs[org]
	if !ok {
		return
	}
	conns, ok := users[user]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(users, user)
	}
	if len(users) == 0 {
		delete(p.orgs, org)
	}
}

// OnlineUsers returns the users with at least one live connection, sorted.
func (p *PresenceIndex) OnlineUsers(org domain.OrgID) []domain.UserID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	users := p.orgs[org]
	out := make([]domain.UserID, 0, len(users))
	for u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Conns returns the live connection ids of one user in one org.
func (p *PresenceIndex) Conns(org domain.OrgID, user domain.UserID) []domain.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conns := p.orgs[org][user]
	out := make([]domain.ConnID, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	return out
}

// OrgConns returns every live connection id in the org, the subscriber set
// of the org-wide presence topic.
func (p *PresenceIndex) OrgConns(org domain.OrgID) []domain.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []domain.ConnID
	for _, conns := range p.orgs[org] {
		for id := range conns {
			out = append(out, id)
		}
	}
	return out
}
