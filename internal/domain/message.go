package domain

import (
	"errors"
	"time"
)

type MediaType string

const (
	MediaText  MediaType = "text"
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
	MediaFile  MediaType = "file"
)

const (
	MaxTextLen = 4096

	StatusSent = "sent"

	ConversationStartPreview = "Start of chat"
	GroupStartPreview        = "Group created"
)

var (
	ErrEmptyMessage     = errors.New("message has neither text nor media")
	ErrTextTooLong      = errors.New("message text too long")
	ErrUnknownMediaType = errors.New("unknown media type")
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaText, MediaImage, MediaAudio, MediaVideo, MediaFile:
		return true
	}
	return false
}

// Message is a persisted direct or group message. Exactly one of
// ConversationID and GroupID is set.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId,omitempty"`
	GroupID        GroupID   `json:"groupId,omitempty"`
	SenderID       UserID    `json:"senderId"`
	Text           string    `json:"text,omitempty"`
	MediaType      MediaType `json:"mediaType"`
	MediaRef       string    `json:"mediaRef,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Draft is a message accepted from a client but not yet persisted.
type Draft struct {
	SenderID  UserID
	Text      string
	MediaType MediaType
	MediaRef  string
}

func (d *Draft) Validate() error {
	if d.MediaType == "" {
		d.MediaType = MediaText
	}
	if !d.MediaType.Valid() {
		return ErrUnknownMediaType
	}
	if d.Text == "" && d.MediaRef == "" {
		return ErrEmptyMessage
	}
	if len(d.Text) > MaxTextLen {
		return ErrTextTooLong
	}
	return nil
}

// Preview renders the sidebar line shown for a conversation or group.
func Preview(mt MediaType, text string) string {
	switch mt {
	case MediaAudio:
		return "🎤 Voice Message"
	case MediaImage:
		return "📷 Image"
	case MediaVideo:
		return "🎬 Video"
	case MediaFile:
		return "📎 File"
	default:
		return text
	}
}
