package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmbedState is the advisory embedding-lifecycle state recorded for a
// document. Artifact presence on disk, not this field, decides whether an
// index is usable.
type EmbedState string

const (
	StatePending   EmbedState = "pending"
	StateEmbedding EmbedState = "embedding"
	StateEmbedded  EmbedState = "embedded"
)

// Document is one distinct uploaded content, keyed by its digest. Exactly
// one Document exists per digest regardless of how many times the same bytes
// are uploaded.
type Document struct {
	Id         uuid.UUID
	Digest     string
	Suffix     string
	State      EmbedState
	UploadedAt time.Time
}
