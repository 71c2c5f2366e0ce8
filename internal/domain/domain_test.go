package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" alice ", "")
	require.NoError(t, err)
	assert.Equal(t, UserID("alice"), u.ID)
	assert.Equal(t, "alice", u.DisplayName)

	_, err = NewUser("", "Alice")
	assert.ErrorIs(t, err, ErrUserIDEmpty)

	_, err = NewUser(strings.Repeat("x", MaxUserIDLen+1), "")
	assert.ErrorIs(t, err, ErrUserIDTooLong)

	_, err = NewUser("bob", strings.Repeat("b", MaxDisplayNameLen+1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}

func TestPairKeyIsSymmetric(t *testing.T) {
	a1, b1 := PairKey("bob", "alice")
	a2, b2 := PairKey("alice", "bob")
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, UserID("alice"), a1)
}

func TestCallRooms(t *testing.T) {
	assert.Equal(t, RoomID("video_g1"), CallRoom("g1"))
	assert.True(t, CallRoom("g1").IsCall())
	assert.False(t, GroupRoom("g1").IsCall())
	assert.Equal(t, RoomID("video_g1"), NormalizeCallRoom("g1"))
	assert.Equal(t, RoomID("video_g1"), NormalizeCallRoom("video_g1"))
}

func TestPreview(t *testing.T) {
	cases := []struct {
		mt   MediaType
		text string
		want string
	}{
		{MediaAudio, "", "🎤 Voice Message"},
		{MediaImage, "caption", "📷 Image"},
		{MediaVideo, "", "🎬 Video"},
		{MediaFile, "report.pdf", "📎 File"},
		{MediaText, "hi", "hi"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Preview(c.mt, c.text), string(c.mt))
	}
}

func TestDraftValidate(t *testing.T) {
	d := Draft{SenderID: "a", Text: "hi"}
	require.NoError(t, d.Validate())
	assert.Equal(t, MediaText, d.MediaType)

	d = Draft{SenderID: "a"}
	assert.ErrorIs(t, d.Validate(), ErrEmptyMessage)

	d = Draft{SenderID: "a", MediaType: "sticker", MediaRef: "/x"}
	assert.ErrorIs(t, d.Validate(), ErrUnknownMediaType)

	d = Draft{SenderID: "a", Text: strings.Repeat("x", MaxTextLen+1)}
	assert.ErrorIs(t, d.Validate(), ErrTextTooLong)

	d = Draft{SenderID: "a", MediaType: MediaAudio, MediaRef: "/uploads/v.wav"}
	assert.NoError(t, d.Validate())
}

func TestCallStateString(t *testing.T) {
	assert.Equal(t, "ringing", CallRinging.String())
	assert.Equal(t, "ended", CallEnded.String())
	assert.Equal(t, "unknown", CallState(42).String())
}
