package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentEventsSubject is the NATS subject comment lifecycle events are published on
const CommentEventsSubject = "comments.events"

// Comment event types
const (
	CommentCreated = "comment.created"
	CommentUpdated = "comment.updated"
	CommentDeleted = "comment.deleted"
)

// CommentEvent announces a change to a perfume's comments
type CommentEvent struct {
	Type      string    `json:"type"`
	PerfumeID uuid.UUID `json:"perfume_id"`
	Timestamp time.Time `json:"timestamp"`
	Comment   *Comment  `json:"comment,omitempty"`
}
