package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novatrack/realtime/internal/domain"
)

func TestPresenceIndexRefCounting(t *testing.T) {
	p := NewPresenceIndex()
	org := domain.OrgID(10)

	p.Add(org, 1, "c1")
	p.Add(org, 1, "c2")
	p.Add(org, 2, "c3")

	assert.Equal(t, []domain.UserID{1, 2}, p.OnlineUsers(org))
	assert.Len(t, p.Conns(org, 1), 2)

	p.Remove(org, 1, "c1")
	assert.Equal(t, []domain.UserID{1, 2}, p.OnlineUsers(org), "user stays online while a connection remains")

	p.Remove(org, 1, "c2")
	assert.Equal(t, []domain.UserID{2}, p.OnlineUsers(org), "last connection removes the user entry")

	p.Remove(org, 2, "c3")
	assert.Empty(t, p.OnlineUsers(org))
	assert.Empty(t, p.OrgConns(org), "last user removes the org entry")
}

func TestPresenceIndexRemoveUnknownIsNoop(t *testing.T) {
	p := NewPresenceIndex()
	p.Remove(10, 1, "ghost")
	assert.Empty(t, p.OnlineUsers(10))
}

func TestPresenceIndexOrgIsolation(t *testing.T) {
	p := NewPresenceIndex()
	p.Add(10, 1, "c1")
	p.Add(20, 1, "c2")

	assert.Equal(t, []domain.UserID{1}, p.OnlineUsers(10))
	assert.Len(t, p.Conns(10, 1), 1)
	assert.Len(t, p.Conns(20, 1), 1)

	p.Remove(10, 1, "c1")
	assert.Empty(t, p.OnlineUsers(10))
	assert.Equal(t, []domain.UserID{1}, p.OnlineUsers(20))
}
