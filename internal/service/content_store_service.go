package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"standards-check-be/internal/entity"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/pkg/logger"
	"standards-check-be/internal/repository/contract"

	"github.com/google/uuid"
)

// IContentStoreService is the content-addressed cache of uploaded documents:
// one record and one canonical file per distinct digest.
type IContentStoreService interface {
	// Upload verifies the declared digest against the raw bytes, then stores
	// them idempotently. Re-uploading identical bytes returns the existing
	// record unchanged; the suffix of the first upload wins.
	Upload(ctx context.Context, raw []byte, declaredDigest, filename string) (*entity.Document, error)

	// Resolve fetches a record by id and defends against stale client claims:
	// missing record or vanished backing bytes yield NotFound (the dangling
	// record is deleted), a digest mismatch yields DigestMismatch.
	Resolve(ctx context.Context, id uuid.UUID, expectedDigest string) (*entity.Document, error)

	// MarkState records an advisory lifecycle transition and returns the
	// re-read record.
	MarkState(ctx context.Context, id uuid.UUID, state entity.EmbedState) (*entity.Document, error)

	// DocumentPath is the canonical location of the stored bytes, derived
	// solely from digest and suffix.
	DocumentPath(digest, suffix string) string
}

type contentStoreService struct {
	repo      contract.DocumentRepository
	cachePath string
	log       logger.ILogger
}

func NewContentStoreService(repo contract.DocumentRepository, cachePath string, log logger.ILogger) IContentStoreService {
	return &contentStoreService{
		repo:      repo,
		cachePath: cachePath,
		log:       log,
	}
}

func (s *contentStoreService) DocumentPath(digest, suffix string) string {
	return filepath.Join(s.cachePath, digest, digest+suffix)
}

func (s *contentStoreService) Upload(ctx context.Context, raw []byte, declaredDigest, filename string) (*entity.Document, error) {
	sum := md5.Sum(raw)
	digest := hex.EncodeToString(sum[:])
	if digest != declaredDigest {
		return nil, faults.Integrity("file md5 verify error, please try re-upload")
	}

	doc, err := s.repo.FindByDigest(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("find document by digest: %w", err)
	}

	if doc == nil {
		doc = &entity.Document{
			Digest: digest,
			Suffix: filepath.Ext(filename),
			State:  entity.StatePending,
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			var dup *contract.DuplicateDigestError
			if !errors.As(err, &dup) {
				return nil, fmt.Errorf("create document record: %w", err)
			}
			// Lost the first-upload race; the surviving record wins.
			doc, err = s.repo.FindByDigest(ctx, digest)
			if err != nil || doc == nil {
				return nil, fmt.Errorf("refetch document after duplicate insert: %w", err)
			}
		} else {
			s.log.Info("content_store", "stored new document", map[string]interface{}{
				"digest": digest,
				"suffix": doc.Suffix,
			})
		}
	}

	// The canonical path depends only on digest and stored suffix, so writing
	// is a no-op for duplicate uploads.
	target := s.DocumentPath(doc.Digest, doc.Suffix)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		if err := os.WriteFile(target, raw, 0o644); err != nil {
			return nil, fmt.Errorf("write document bytes: %w", err)
		}
	}

	return doc, nil
}

func (s *contentStoreService) Resolve(ctx context.Context, id uuid.UUID, expectedDigest string) (*entity.Document, error) {
	doc, err := s.repo.FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if doc == nil {
		return nil, faults.NotFound("file not found")
	}

	if _, err := os.Stat(s.DocumentPath(doc.Digest, doc.Suffix)); err != nil {
		// Backing bytes vanished from storage: the record is dangling, remove
		// it and treat the document as never having existed.
		if delErr := s.repo.Delete(ctx, doc.Id); delErr != nil {
			s.log.Warn("content_store", "failed to delete dangling record", map[string]interface{}{
				"id":    doc.Id.String(),
				"error": delErr.Error(),
			})
		}
		return nil, faults.NotFound("file not found")
	}

	if doc.Digest != expectedDigest {
		return nil, faults.DigestMismatch("file md5 verify error, please try re-upload")
	}
	return doc, nil
}

func (s *contentStoreService) MarkState(ctx context.Context, id uuid.UUID, state entity.EmbedState) (*entity.Document, error) {
	if err := s.repo.UpdateState(ctx, id, state); err != nil {
		return nil, fmt.Errorf("update document state: %w", err)
	}
	doc, err := s.repo.FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("re-read document: %w", err)
	}
	if doc == nil {
		return nil, faults.NotFound("file not found")
	}
	return doc, nil
}
