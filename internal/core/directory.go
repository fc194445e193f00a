package core

import (
	"context"
	"errors"
	"time"

	"github.com/novatrack/realtime/internal/domain"
)

// ErrSessionInvalid is returned by SessionVerifier for a missing, unknown
// or expired credential.
var ErrSessionInvalid = errors.New("session invalid")

// Session is the verified identity behind a connection credential.
type Session struct {
	ID        string
	UserID    domain.UserID
	ExpiresAt time.Time
}

// Membership is a user's role inside an organisation.
type Membership struct {
	Role string
}

// SessionVerifier resolves connection credentials. Implemented by the main
// application's directory API; the realtime core never stores credentials.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// MembershipDirectory answers organisation membership lookups.
// A nil Membership with nil error means "not a member".
type MembershipDirectory interface {
	Membership(ctx context.Context, org domain.OrgID, user domain.UserID) (*Membership, error)
}

// Directory bundles both collaborators the lifecycle needs.
type Directory interface {
	SessionVerifier
	MembershipDirectory
}
