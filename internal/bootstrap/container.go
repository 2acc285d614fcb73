package bootstrap

import (
	"standards-check-be/internal/config"
	"standards-check-be/internal/controller"
	"standards-check-be/internal/pkg/logger"
	"standards-check-be/internal/repository/implementation"
	"standards-check-be/internal/service"
	"standards-check-be/pkg/embedding"
	"standards-check-be/pkg/llm"
	"standards-check-be/pkg/loader"
	"standards-check-be/pkg/splitter"
	"standards-check-be/pkg/vectorindex"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	InvokeController   controller.IInvokeController
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	documentRepo := implementation.NewDocumentRepository(db)
	docLoader := loader.New()
	indexes := vectorindex.NewManager(cfg.Cache.Path)

	chunkCfg := splitter.DefaultConfig()
	if cfg.Rag.ChunkSize > 0 {
		chunkCfg.ChunkSize = cfg.Rag.ChunkSize
	}
	if cfg.Rag.ChunkOverlap > 0 {
		chunkCfg.Overlap = cfg.Rag.ChunkOverlap
	}

	// 2. Provider Factories
	// Clients hand their own API key over the progress channel, so providers
	// are built per run rather than once at startup.
	embedderFactory := service.EmbedderFactory(func(apiKey, model string) embedding.Provider {
		if model == "" {
			model = cfg.Rag.EmbedderModel
		}
		return embedding.NewNvidiaProvider(apiKey, model, cfg.Rag.BaseURL)
	})
	chatFactory := service.ChatFactory(func(apiKey, model string) llm.Provider {
		if model == "" {
			model = cfg.Rag.ChatModel
		}
		return llm.NewNvidiaProvider(apiKey, model, cfg.Rag.BaseURL)
	})

	// 3. Services
	contentStore := service.NewContentStoreService(documentRepo, cfg.Cache.Path, sysLogger)
	ingestionService := service.NewIngestionService(
		contentStore,
		docLoader,
		indexes,
		embedderFactory,
		chunkCfg,
		sysLogger,
	)
	comparisonService := service.NewComparisonService(
		contentStore,
		docLoader,
		indexes,
		embedderFactory,
		chatFactory,
		chunkCfg,
		cfg.Rag.TopK,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(contentStore, ingestionService),
		InvokeController:   controller.NewInvokeController(comparisonService),
	}
}
