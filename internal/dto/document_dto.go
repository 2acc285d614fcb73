package dto

import (
	"time"

	"standards-check-be/internal/entity"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	FileMd5 string `form:"file_md5" validate:"required,len=32,hexadecimal"`
}

type DocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Digest     string    `json:"md5_code"`
	Suffix     string    `json:"file_suffix"`
	State      string    `json:"embedded_status"`
	UploadedAt time.Time `json:"upload_time"`
}

func NewDocumentResponse(d *entity.Document) *DocumentResponse {
	if d == nil {
		return nil
	}
	return &DocumentResponse{
		Id:         d.Id,
		Digest:     d.Digest,
		Suffix:     d.Suffix,
		State:      string(d.State),
		UploadedAt: d.UploadedAt,
	}
}

// EmbedStatus is the closed set of stages an ingestion channel reports.
// Verification happens before the first event, so the earliest observable
// stage is "verified".
type EmbedStatus string

const (
	EmbedStatusVerified  EmbedStatus = "verified"
	EmbedStatusEmbedding EmbedStatus = "embedding"
	EmbedStatusSuccess   EmbedStatus = "success"
	EmbedStatusFailed    EmbedStatus = "failed"
)

// EmbedEvent is one JSON frame on the ingestion progress channel.
type EmbedEvent struct {
	Status  EmbedStatus       `json:"status"`
	Data    *DocumentResponse `json:"data,omitempty"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
}
