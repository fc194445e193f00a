package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrack/realtime/internal/domain"
)

func TestParseRoomControl(t *testing.T) {
	msg, ok := Parse([]byte(`{"type":"join-room","roomUserId":7}`))
	require.True(t, ok)
	join, ok := msg.(JoinRoom)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(7), join.RoomUserID)

	msg, ok = Parse([]byte(`{"type":"leave-room"}`))
	require.True(t, ok)
	assert.IsType(t, LeaveRoom{}, msg)

	msg, ok = Parse([]byte(`{"type":"end-room"}`))
	require.True(t, ok)
	assert.IsType(t, EndRoom{}, msg)
}

func TestParseSessionSignalKeepsKind(t *testing.T) {
	for _, kind := range []string{TypeOffer, TypeAnswer, TypeICECandidate} {
		msg, ok := Parse([]byte(`{"type":"` + kind + `","roomUserId":1,"targetUserId":2,"sdp":"v=0"}`))
		require.True(t, ok, kind)
		sig, ok := msg.(SessionSignal)
		require.True(t, ok, kind)
		assert.Equal(t, kind, sig.Kind)
		assert.Equal(t, domain.UserID(1), sig.RoomUserID)
		assert.Equal(t, domain.UserID(2), sig.TargetUserID)
	}
}

func TestParseICECandidatePayload(t *testing.T) {
	raw := `{"type":"webrtc-ice-candidate","roomUserId":1,"targetUserId":2,` +
		`"candidate":{"candidate":"candidate:1 1 UDP 2122252543 192.0.2.1 54400 typ host","sdpMid":"0"}}`
	msg, ok := Parse([]byte(raw))
	require.True(t, ok)
	sig := msg.(SessionSignal)
	require.NotNil(t, sig.Candidate)
	assert.Contains(t, sig.Candidate.Candidate, "typ host")
	require.NotNil(t, sig.Candidate.SDPMid)
	assert.Equal(t, "0", *sig.Candidate.SDPMid)
}

func TestParsePeerState(t *testing.T) {
	msg, ok := Parse([]byte(`{"type":"webrtc-peer-state","roomUserId":1,"muted":true}`))
	require.True(t, ok)
	st := msg.(PeerState)
	assert.True(t, st.Muted)
	assert.Nil(t, st.Speaking)

	msg, ok = Parse([]byte(`{"type":"webrtc-peer-state","roomUserId":1,"muted":false,"speaking":true}`))
	require.True(t, ok)
	st = msg.(PeerState)
	require.NotNil(t, st.Speaking)
	assert.True(t, *st.Speaking)
}

func TestParseDropsGarbage(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"type":"issue-created","id":5}`,
		`{"type":"join-room","roomUserId":"seven"}`,
		`{"type":"webrtc-offer","roomUserId":{}}`,
		`{}`,
	}
	for _, c := range cases {
		msg, ok := Parse([]byte(c))
		assert.False(t, ok, c)
		assert.Nil(t, msg, c)
	}
}
