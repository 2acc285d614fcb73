package mapper

import (
	"standards-check-be/internal/entity"
	"standards-check-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:         d.Id,
		Digest:     d.Digest,
		Suffix:     d.Suffix,
		State:      entity.EmbedState(d.State),
		UploadedAt: d.UploadedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:         d.Id,
		Digest:     d.Digest,
		Suffix:     d.Suffix,
		State:      string(d.State),
		UploadedAt: d.UploadedAt,
	}
}
