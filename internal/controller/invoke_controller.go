package controller

import (
	"context"
	"errors"

	"standards-check-be/internal/dto"
	"standards-check-be/internal/faults"
	"standards-check-be/internal/service"
	"standards-check-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IInvokeController interface {
	RegisterRoutes(r fiber.Router)
	QueryChannel(conn *fiberws.Conn)
	CompareChannel(conn *fiberws.Conn)
}

type invokeController struct {
	comparison service.IComparisonService
}

func NewInvokeController(comparison service.IComparisonService) IInvokeController {
	return &invokeController{comparison: comparison}
}

func (c *invokeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/invoke")
	h.Use(func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/query", fiberws.New(c.QueryChannel))
	h.Get("/compare", fiberws.New(c.CompareChannel))
}

// QueryChannel answers one free-text question against an embedded standard.
// Query string: question, standard_file_id, standard_file_md5, nv_api_key,
// optional embedder_model and chat_model.
func (c *invokeController) QueryChannel(conn *fiberws.Conn) {
	defer conn.Close()
	writer := websocket.NewEventWriter(conn)

	standardId, err := uuid.Parse(conn.Query("standard_file_id"))
	if err != nil {
		failInvoke(writer, faults.NotFound("file not found"))
		return
	}

	runErr := c.comparison.Query(context.Background(), service.QueryInput{
		Question:       conn.Query("question"),
		StandardId:     standardId,
		StandardDigest: conn.Query("standard_file_md5"),
		APIKey:         conn.Query("nv_api_key"),
		EmbedderModel:  conn.Query("embedder_model"),
		ChatModel:      conn.Query("chat_model"),
	}, writer)

	finishInvoke(writer, runErr)
}

// CompareChannel runs the chunk-by-chunk compliance check of a schema
// document against an embedded standard. Query string: schema_file_id,
// schema_file_md5, standard_file_id, standard_file_md5, nv_api_key, optional
// embedder_model and chat_model.
func (c *invokeController) CompareChannel(conn *fiberws.Conn) {
	defer conn.Close()
	writer := websocket.NewEventWriter(conn)

	schemaId, err := uuid.Parse(conn.Query("schema_file_id"))
	if err != nil {
		failInvoke(writer, faults.NotFound("file not found"))
		return
	}
	standardId, err := uuid.Parse(conn.Query("standard_file_id"))
	if err != nil {
		failInvoke(writer, faults.NotFound("file not found"))
		return
	}

	runErr := c.comparison.Compare(context.Background(), service.CompareInput{
		SchemaId:       schemaId,
		SchemaDigest:   conn.Query("schema_file_md5"),
		StandardId:     standardId,
		StandardDigest: conn.Query("standard_file_md5"),
		APIKey:         conn.Query("nv_api_key"),
		EmbedderModel:  conn.Query("embedder_model"),
		ChatModel:      conn.Query("chat_model"),
	}, writer)

	finishInvoke(writer, runErr)
}

func finishInvoke(writer *websocket.EventWriter, runErr error) {
	if runErr == nil {
		writer.CloseNormal()
		return
	}
	if errors.Is(runErr, service.ErrChannelClosed) {
		return
	}
	failInvoke(writer, faults.From(runErr))
}

func failInvoke(writer *websocket.EventWriter, f *faults.Fault) {
	writer.Send(dto.InvokeEvent{
		Status:  dto.InvokeStatusFailed,
		Message: f.Message,
		Code:    string(f.Kind),
	})
	writer.CloseWithCode(faults.CloseCode(f.Kind), f.Message)
}
