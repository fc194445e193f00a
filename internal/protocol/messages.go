// Package protocol defines the JSON wire messages of the realtime
// transport. Inbound payloads form a tagged union on the "type" field and
// are parsed exactly once; anything that matches no variant is dropped.
package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/novatrack/realtime/internal/domain"
)

const (
	TypeJoinRoom  = "join-room"
	TypeLeaveRoom = "leave-room"
	TypeEndRoom   = "end-room"

	TypeOffer        = "webrtc-offer"
	TypeAnswer       = "webrtc-answer"
	TypeICECandidate = "webrtc-ice-candidate"
	TypePeerState    = "webrtc-peer-state"

	TypeOnlineUsers      = "online-users"
	TypeRoomParticipants = "room-participants"
	TypeRoomJoined       = "room-joined"
	TypeRoomError        = "room-error"
)

// Inbound is one parsed client message.
type Inbound interface{ inbound() }

// JoinRoom asks to move this connection into roomUserId's room.
type JoinRoom struct {
	RoomUserID domain.UserID `json:"roomUserId"`
}

// LeaveRoom moves the connection back to its own self-room.
type LeaveRoom struct{}

// EndRoom dissolves the sender's own room, relocating every participant.
type EndRoom struct{}

// SessionSignal is a targeted offer/answer/ICE message relayed between two
// call participants. Kind is one of TypeOffer, TypeAnswer, TypeICECandidate.
type SessionSignal struct {
	Kind         string                   `json:"-"`
	RoomUserID   domain.UserID            `json:"roomUserId"`
	TargetUserID domain.UserID            `json:"targetUserId"`
	SDP          string                   `json:"sdp,omitempty"`
	Candidate    *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// PeerState is a mute/speaking update fanned out to the whole room.
type PeerState struct {
	RoomUserID domain.UserID `json:"roomUserId"`
	Muted      bool          `json:"muted"`
	Speaking   *bool         `json:"speaking,omitempty"`
}

func (JoinRoom) inbound()      {}
func (LeaveRoom) inbound()     {}
func (EndRoom) inbound()       {}
func (SessionSignal) inbound() {}
func (PeerState) inbound()     {}

// Parse decodes one inbound frame. ok is false for unparseable payloads and
// unknown types; callers drop those silently.
func Parse(data []byte) (msg Inbound, ok bool) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	switch env.Type {
	case TypeJoinRoom:
		var m JoinRoom
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	case TypeLeaveRoom:
		return LeaveRoom{}, true
	case TypeEndRoom:
		return EndRoom{}, true
	case TypeOffer, TypeAnswer, TypeICECandidate:
		var m SessionSignal
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		m.Kind = env.Type
		return m, true
	case TypePeerState:
		var m PeerState
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

// OnlineUsers is the org-wide presence summary.
type OnlineUsers struct {
	Type                   string          `json:"type"`
	OrganisationID         domain.OrgID    `json:"organisationId"`
	UserIDs                []domain.UserID `json:"userIds"`
	InCallUserIDs          []domain.UserID `json:"inCallUserIds"`
	InCallRoomOwnerUserIDs []domain.UserID `json:"inCallRoomOwnerUserIds"`
}

// RoomParticipants is the current participant list of one room.
type RoomParticipants struct {
	Type               string          `json:"type"`
	OrganisationID     domain.OrgID    `json:"organisationId"`
	RoomUserID         domain.UserID   `json:"roomUserId"`
	ParticipantUserIDs []domain.UserID `json:"participantUserIds"`
}

// RoomJoined is a one-shot notification that a room was entered.
type RoomJoined struct {
	Type           string        `json:"type"`
	OrganisationID domain.OrgID  `json:"organisationId"`
	RoomUserID     domain.UserID `json:"roomUserId"`
}

// RoomError reports an in-band failure to the offending sender only.
type RoomError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionSignalForward is a relayed offer/answer/ICE message, tagged with
// the originating user.
type SessionSignalForward struct {
	Type       string                   `json:"type"`
	RoomUserID domain.UserID            `json:"roomUserId"`
	FromUserID domain.UserID            `json:"fromUserId"`
	SDP        string                   `json:"sdp,omitempty"`
	Candidate  *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// PeerStateForward is a relayed mute/speaking update.
type PeerStateForward struct {
	Type       string        `json:"type"`
	RoomUserID domain.UserID `json:"roomUserId"`
	FromUserID domain.UserID `json:"fromUserId"`
	Muted      bool          `json:"muted"`
	Speaking   *bool         `json:"speaking,omitempty"`
}

func NewOnlineUsers(org domain.OrgID, users, inCall, owners []domain.UserID) OnlineUsers {
	return OnlineUsers{
		Type:                   TypeOnlineUsers,
		OrganisationID:         org,
		UserIDs:                users,
		InCallUserIDs:          inCall,
		InCallRoomOwnerUserIDs: owners,
	}
}

func NewRoomParticipants(org domain.OrgID, owner domain.UserID, participants []domain.UserID) RoomParticipants {
	return RoomParticipants{
		Type:               TypeRoomParticipants,
		OrganisationID:     org,
		RoomUserID:         owner,
		ParticipantUserIDs: participants,
	}
}

func NewRoomJoined(org domain.OrgID, owner domain.UserID) RoomJoined {
	return RoomJoined{Type: TypeRoomJoined, OrganisationID: org, RoomUserID: owner}
}

func NewRoomError(code, message string) RoomError {
	return RoomError{Type: TypeRoomError, Code: code, Message: message}
}
