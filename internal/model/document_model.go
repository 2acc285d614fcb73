package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Digest     string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Suffix     string    `gorm:"type:varchar(16);not null"`
	State      string    `gorm:"type:varchar(16);not null;default:'pending'"`
	UploadedAt time.Time `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}
