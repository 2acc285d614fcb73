package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"standards-check-be/internal/dto"
	"standards-check-be/internal/entity"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/pkg/logger"
	"standards-check-be/pkg/loader"
	"standards-check-be/pkg/llm"
	"standards-check-be/pkg/prompts"
	"standards-check-be/pkg/splitter"
	"standards-check-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type QueryInput struct {
	Question       string
	StandardId     uuid.UUID
	StandardDigest string
	APIKey         string
	EmbedderModel  string
	ChatModel      string
}

type CompareInput struct {
	SchemaId       uuid.UUID
	SchemaDigest   string
	StandardId     uuid.UUID
	StandardDigest string
	APIKey         string
	EmbedderModel  string
	ChatModel      string
}

// IComparisonService runs the two RAG workflows against an embedded
// standard: free-text question answering, and the chunk-by-chunk compliance
// check of a schema document.
type IComparisonService interface {
	Query(ctx context.Context, in QueryInput, sink ProgressSink) error
	Compare(ctx context.Context, in CompareInput, sink ProgressSink) error
}

type comparisonService struct {
	store           IContentStoreService
	docLoader       *loader.Loader
	indexes         *vectorindex.Manager
	embedderFactory EmbedderFactory
	chatFactory     ChatFactory
	chunkCfg        splitter.Config
	topK            int
	handles         *cache.Cache
	log             logger.ILogger
}

func NewComparisonService(
	store IContentStoreService,
	docLoader *loader.Loader,
	indexes *vectorindex.Manager,
	embedderFactory EmbedderFactory,
	chatFactory ChatFactory,
	chunkCfg splitter.Config,
	topK int,
	log logger.ILogger,
) IComparisonService {
	if topK <= 0 {
		topK = vectorindex.DefaultTopK
	}
	return &comparisonService{
		store:           store,
		docLoader:       docLoader,
		indexes:         indexes,
		embedderFactory: embedderFactory,
		chatFactory:     chatFactory,
		chunkCfg:        chunkCfg,
		topK:            topK,
		handles:         cache.New(1*time.Hour, 10*time.Minute),
		log:             log,
	}
}

func (s *comparisonService) emit(sink ProgressSink, status dto.InvokeStatus, message string) error {
	if err := sink.Send(dto.InvokeEvent{Status: status, Message: message}); err != nil {
		return ErrChannelClosed
	}
	return nil
}

// loadIndex returns a queryable handle for an embedded standard, caching
// loaded handles by digest. Content addressing makes the cache safe: a
// digest's artifact never changes meaning.
func (s *comparisonService) loadIndex(digest string) (*vectorindex.Index, error) {
	if x, found := s.handles.Get(digest); found {
		return x.(*vectorindex.Index), nil
	}
	idx, err := s.indexes.Load(digest)
	if err != nil {
		if errors.Is(err, vectorindex.ErrArtifactMissing) {
			return nil, faults.ArtifactMissing("vector index missing for document")
		}
		return nil, faults.Internal(err.Error())
	}
	s.handles.Set(digest, idx, cache.DefaultExpiration)
	return idx, nil
}

func (s *comparisonService) resolveStandard(ctx context.Context, id uuid.UUID, digest string) (*entity.Document, error) {
	std, err := s.store.Resolve(ctx, id, digest)
	if err != nil {
		return nil, err
	}
	if !s.indexes.IsUsable(std.Digest) {
		return nil, faults.NotEmbedded("file not embedded")
	}
	return std, nil
}

func (s *comparisonService) Query(ctx context.Context, in QueryInput, sink ProgressSink) error {
	if err := s.emit(sink, dto.InvokeStatusVerifying, "start verify files"); err != nil {
		return err
	}
	if err := ValidateCredential(in.APIKey); err != nil {
		return err
	}

	std, err := s.resolveStandard(ctx, in.StandardId, in.StandardDigest)
	if err != nil {
		return err
	}

	if err := s.emit(sink, dto.InvokeStatusLoading, "start load vector index"); err != nil {
		return err
	}
	idx, err := s.loadIndex(std.Digest)
	if err != nil {
		return err
	}

	if err := s.emit(sink, dto.InvokeStatusQuerying, "start query"); err != nil {
		return err
	}
	embedder := s.embedderFactory(in.APIKey, in.EmbedderModel)
	chat := s.chatFactory(in.APIKey, in.ChatModel)

	matches, err := vectorindex.NewRetriever(idx, embedder).Query(ctx, in.Question, s.topK)
	if err != nil {
		return faults.Internal(err.Error())
	}
	answer, err := chat.Generate(ctx, prompts.Query(joinChunks(matches), in.Question))
	if err != nil {
		return faults.Internal(err.Error())
	}

	if err := sink.Send(dto.InvokeEvent{Status: dto.InvokeStatusSuccess, Message: "success", Result: answer}); err != nil {
		return ErrChannelClosed
	}
	return nil
}

func (s *comparisonService) Compare(ctx context.Context, in CompareInput, sink ProgressSink) error {
	if err := s.emit(sink, dto.InvokeStatusVerifying, "start verify files"); err != nil {
		return err
	}
	if err := ValidateCredential(in.APIKey); err != nil {
		return err
	}

	schema, err := s.store.Resolve(ctx, in.SchemaId, in.SchemaDigest)
	if err != nil {
		return err
	}
	std, err := s.resolveStandard(ctx, in.StandardId, in.StandardDigest)
	if err != nil {
		return err
	}

	if err := s.emit(sink, dto.InvokeStatusLoading, "start load vector index"); err != nil {
		return err
	}
	idx, err := s.loadIndex(std.Digest)
	if err != nil {
		return err
	}

	if err := s.emit(sink, dto.InvokeStatusLoading, "start load schema file"); err != nil {
		return err
	}
	if !s.docLoader.Supported(schema.Suffix) {
		return faults.UnsupportedFormat(fmt.Sprintf("file type %q not supported", schema.Suffix))
	}
	text, err := s.docLoader.Load(ctx, s.store.DocumentPath(schema.Digest, schema.Suffix), schema.Suffix)
	if err != nil {
		return faults.Internal(err.Error())
	}
	chunks := splitter.Split(text, s.chunkCfg)
	if len(chunks) == 0 {
		return faults.Internal("schema document produced no text")
	}

	embedder := s.embedderFactory(in.APIKey, in.EmbedderModel)
	chat := s.chatFactory(in.APIKey, in.ChatModel)
	retriever := vectorindex.NewRetriever(idx, embedder)

	// Findings accumulate across chunks in emission order; summarization may
	// replace the whole report afterward, never individual verdicts.
	var report strings.Builder
	total := len(chunks)
	for i, chunk := range chunks {
		progress := fmt.Sprintf("%d/%d", i+1, total)

		if err := s.emit(sink, dto.InvokeStatusExtracting, "extracting schema entries, "+progress); err != nil {
			return err
		}
		claims, err := s.decompose(ctx, chat, chunk.Text)
		if err != nil {
			return faults.Internal(err.Error())
		}

		if err := s.emit(sink, dto.InvokeStatusRetrieving, "start retrieve standards, "+progress); err != nil {
			return err
		}
		passages, err := s.retrieveUnion(ctx, retriever, claims)
		if err != nil {
			return faults.Internal(err.Error())
		}

		if err := s.emit(sink, dto.InvokeStatusChecking, "start compliance check, "+progress); err != nil {
			return err
		}
		verdict, err := chat.Generate(ctx, prompts.Check(chunk.Text, passages))
		if err != nil {
			return faults.Internal(err.Error())
		}
		report.WriteString(verdict)
	}

	result := report.String()
	if total > 1 {
		if err := s.emit(sink, dto.InvokeStatusSummarizing, "start summarize all problems"); err != nil {
			return err
		}
		result, err = chat.Generate(ctx, prompts.Summary(result))
		if err != nil {
			return faults.Internal(err.Error())
		}
	}

	if err := sink.Send(dto.InvokeEvent{Status: dto.InvokeStatusSuccess, Message: "success", Result: result}); err != nil {
		return ErrChannelClosed
	}
	return nil
}

// decompose asks the model for a JSON list of checkable claims. A response
// that does not parse falls back to a lossy comma split; this recovery is
// local and never fatal.
func (s *comparisonService) decompose(ctx context.Context, chat llm.Provider, schemeText string) ([]string, error) {
	raw, err := chat.Generate(ctx, prompts.Decomposition(schemeText))
	if err != nil {
		return nil, fmt.Errorf("decompose schema chunk: %w", err)
	}

	var claims []string
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		s.log.Warn("comparison", "decomposition did not parse as JSON list, falling back to comma split", map[string]interface{}{
			"length": len(raw),
		})
		claims = strings.Split(strings.ReplaceAll(raw, `"`, ""), ",")
	}
	return claims, nil
}

// retrieveUnion queries the standard for every claim and unions the
// retrieved passages, dropping duplicate texts. The union bounds the check
// prompt's size no matter how many claims a chunk decomposes into.
func (s *comparisonService) retrieveUnion(ctx context.Context, retriever *vectorindex.Retriever, claims []string) (string, error) {
	seen := make(map[string]struct{})
	var passages []string
	for _, claim := range claims {
		matches, err := retriever.Query(ctx, claim, s.topK)
		if err != nil {
			return "", fmt.Errorf("retrieve standard passages: %w", err)
		}
		for _, m := range matches {
			if _, dup := seen[m.Text]; dup {
				continue
			}
			seen[m.Text] = struct{}{}
			passages = append(passages, m.Text)
		}
	}
	return strings.Join(passages, "\n"), nil
}

func joinChunks(chunks []splitter.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n")
}
