// Package domain contains entity without logic, just meta-data
package domain

import "strconv"

type (
	// OrgID is the tenant boundary scoping all presence and room state.
	OrgID int64
	// UserID identifies an organisation member. Always positive.
	UserID int64
	// ConnID is the opaque id of one live transport session.
	ConnID string
)

func (o OrgID) String() string  { return strconv.FormatInt(int64(o), 10) }
func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// Valid reports whether the id is a positive integer.
func (u UserID) Valid() bool { return u > 0 }
