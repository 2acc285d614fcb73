package service

import (
	"context"
	"errors"
	"fmt"

	"standards-check-be/internal/dto"
	"standards-check-be/internal/entity"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/pkg/logger"
	"standards-check-be/pkg/loader"
	"standards-check-be/pkg/splitter"
	"standards-check-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type IngestionInput struct {
	DocumentId    uuid.UUID
	Digest        string
	APIKey        string
	EmbedderModel string
}

// IIngestionService drives one document through the embedding state machine:
// resolve, fast-path on an existing artifact, otherwise load, chunk, embed
// and persist, reporting one progress event per transition.
type IIngestionService interface {
	Run(ctx context.Context, in IngestionInput, sink ProgressSink) error
}

type ingestionService struct {
	store           IContentStoreService
	docLoader       *loader.Loader
	indexes         *vectorindex.Manager
	embedderFactory EmbedderFactory
	chunkCfg        splitter.Config
	log             logger.ILogger
}

func NewIngestionService(
	store IContentStoreService,
	docLoader *loader.Loader,
	indexes *vectorindex.Manager,
	embedderFactory EmbedderFactory,
	chunkCfg splitter.Config,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		store:           store,
		docLoader:       docLoader,
		indexes:         indexes,
		embedderFactory: embedderFactory,
		chunkCfg:        chunkCfg,
		log:             log,
	}
}

func (s *ingestionService) emit(sink ProgressSink, status dto.EmbedStatus, doc *entity.Document, message string) error {
	if err := sink.Send(dto.EmbedEvent{
		Status:  status,
		Data:    dto.NewDocumentResponse(doc),
		Message: message,
	}); err != nil {
		return ErrChannelClosed
	}
	return nil
}

func (s *ingestionService) Run(ctx context.Context, in IngestionInput, sink ProgressSink) error {
	if err := ValidateCredential(in.APIKey); err != nil {
		return err
	}

	doc, err := s.store.Resolve(ctx, in.DocumentId, in.Digest)
	if err != nil {
		return err
	}
	if err := s.emit(sink, dto.EmbedStatusVerified, doc, "Successfully verified"); err != nil {
		return err
	}

	// Artifact presence, not the recorded state, decides the fast path. A
	// record stuck in "embedding" after a crash rebuilds here; a record whose
	// artifact survived a missed state update skips the embedder entirely.
	if s.indexes.IsUsable(doc.Digest) {
		if doc.State != entity.StateEmbedded {
			if doc, err = s.store.MarkState(ctx, doc.Id, entity.StateEmbedded); err != nil {
				return err
			}
		}
		return s.emit(sink, dto.EmbedStatusSuccess, doc, "Successfully embedded")
	}

	if !s.docLoader.Supported(doc.Suffix) {
		return faults.UnsupportedFormat(fmt.Sprintf("file type %q not supported", doc.Suffix))
	}

	doc, err = s.store.MarkState(ctx, doc.Id, entity.StateEmbedding)
	if err != nil {
		return err
	}
	if err := s.emit(sink, dto.EmbedStatusEmbedding, doc, "Start embedding"); err != nil {
		return err
	}

	text, err := s.docLoader.Load(ctx, s.store.DocumentPath(doc.Digest, doc.Suffix), doc.Suffix)
	if err != nil {
		if errors.Is(err, loader.ErrUnsupportedFormat) {
			return faults.UnsupportedFormat(fmt.Sprintf("file type %q not supported", doc.Suffix))
		}
		return faults.Internal(err.Error())
	}

	chunks := splitter.Split(text, s.chunkCfg)
	if len(chunks) == 0 {
		return faults.Internal("document produced no text to embed")
	}

	embedder := s.embedderFactory(in.APIKey, in.EmbedderModel)
	if _, err := s.indexes.BuildAndPersist(ctx, doc.Digest, chunks, embedder); err != nil {
		// The record stays in "embedding"; the next run's artifact check
		// falls through to a rebuild.
		s.log.Error("ingestion", "index build failed", map[string]interface{}{
			"digest": doc.Digest,
			"error":  err.Error(),
		})
		return faults.Internal(err.Error())
	}

	doc, err = s.store.MarkState(ctx, doc.Id, entity.StateEmbedded)
	if err != nil {
		return err
	}
	s.log.Info("ingestion", "document embedded", map[string]interface{}{
		"digest": doc.Digest,
		"chunks": len(chunks),
	})
	return s.emit(sink, dto.EmbedStatusSuccess, doc, "Successfully embedded")
}
