package controller

import (
	"context"
	"errors"
	"io"

	"standards-check-be/internal/dto"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/pkg/serverutils"
	"standards-check-be/internal/service"
	"standards-check-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	EmbedChannel(conn *fiberws.Conn)
}

type documentController struct {
	contentStore service.IContentStoreService
	ingestion    service.IIngestionService
}

func NewDocumentController(contentStore service.IContentStoreService, ingestion service.IIngestionService) IDocumentController {
	return &documentController{
		contentStore: contentStore,
		ingestion:    ingestion,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/file")
	h.Post("/", c.Upload)

	h.Use("/:id", func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/:id", fiberws.New(c.EmbedChannel))
}

// Upload accepts multipart form data (file + file_md5) and stores the bytes
// content-addressed. The response is the deduplicated document record.
func (c *documentController) Upload(ctx *fiber.Ctx) error {
	req := dto.UploadDocumentRequest{FileMd5: ctx.FormValue("file_md5")}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file field")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	doc, err := c.contentStore.Upload(ctx.Context(), raw, req.FileMd5, fileHeader.Filename)
	if err != nil {
		return err
	}
	return ctx.JSON(dto.NewDocumentResponse(doc))
}

// EmbedChannel is the long-lived ingestion progress channel for one stored
// document, parameterized by query string: file_md5, nv_api_key and an
// optional embedder_model.
func (c *documentController) EmbedChannel(conn *fiberws.Conn) {
	defer conn.Close()
	writer := websocket.NewEventWriter(conn)

	id, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		failEmbed(writer, faults.NotFound("file not found"))
		return
	}

	runErr := c.ingestion.Run(context.Background(), service.IngestionInput{
		DocumentId:    id,
		Digest:        conn.Query("file_md5"),
		APIKey:        conn.Query("nv_api_key"),
		EmbedderModel: conn.Query("embedder_model"),
	}, writer)

	if runErr == nil {
		writer.CloseNormal()
		return
	}
	if errors.Is(runErr, service.ErrChannelClosed) {
		return
	}
	failEmbed(writer, faults.From(runErr))
}

func failEmbed(writer *websocket.EventWriter, f *faults.Fault) {
	writer.Send(dto.EmbedEvent{
		Status:  dto.EmbedStatusFailed,
		Message: f.Message,
		Code:    string(f.Kind),
	})
	writer.CloseWithCode(faults.CloseCode(f.Kind), f.Message)
}
