package domain

// RoomRef is the room a connection currently occupies: either the member's
// own self-room or another member's room joined for a call. The zero value
// is the self-room.
type RoomRef struct {
	owner UserID
}

func SelfRoom() RoomRef { return RoomRef{} }

// JoinedRoom builds a ref to owner's room. Refs to the connection's own
// user id collapse back to the self-room via Normalize.
func JoinedRoom(owner UserID) RoomRef { return RoomRef{owner: owner} }

// Normalize collapses JoinedRoom(self) into SelfRoom.
func (r RoomRef) Normalize(self UserID) RoomRef {
	if r.owner == self {
		return RoomRef{}
	}
	return r
}

func (r RoomRef) IsSelf() bool { return r.owner == 0 }

// Joined returns the foreign room owner, if any.
func (r RoomRef) Joined() (UserID, bool) {
	if r.owner == 0 {
		return 0, false
	}
	return r.owner, true
}

// Owner resolves the addressing key of the occupied room for the given
// connection owner.
func (r RoomRef) Owner(self UserID) UserID {
	if r.owner == 0 {
		return self
	}
	return r.owner
}
