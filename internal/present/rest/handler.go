package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/pubky-garden/pubky-playground"
	"github.com/pubky-garden/pubky-playground/crock32"
	"github.com/pubky-garden/pubky-playground/internal/config"
	"github.com/pubky-garden/pubky-playground/internal/domain"
	"github.com/pubky-garden/pubky-playground/internal/present/rest/presenter"
	"github.com/pubky-garden/pubky-playground/internal/usecase"
	"github.com/pubky-garden/pubky-playground/specs"
)

// EventStreamer feeds the websocket fan-out with record events matching
// the subscribed URI prefixes. Implemented by service.SignalService.
type EventStreamer interface {
	Realtime(ctx context.Context, input <-chan []string, output chan<- pubky.Event)
}

type Handler struct {
	config config.NodeInfo
	record *usecase.RecordUsecase
	signal EventStreamer
}

func NewHandler(
	config config.NodeInfo,
	record *usecase.RecordUsecase,
	signal EventStreamer,
) *Handler {
	return &Handler{
		config: config,
		record: record,
		signal: signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/pubky", h.handleWellKnown)
	e.PUT("/:owner/pub/:namespace/:plural/:id", h.handlePut)
	e.GET("/:owner/pub/:namespace/:plural/:id", h.handleGet)
	e.DELETE("/:owner/pub/:namespace/:plural/:id", h.handleDelete)
	e.GET("/:owner/pub/:namespace/:plural", h.handleList)
	e.GET("/events", h.handleEvents)
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	wellknown := pubky.WellKnownPubky{
		Version:   "1.0",
		Domain:    h.config.FQDN,
		Namespace: h.config.Namespace,
		Endpoints: map[string]string{
			"app.pubky.record": "/{owner}/pub/" + h.config.Namespace + "/{kind}/{id}",
			"app.pubky.list":   "/{owner}/pub/" + h.config.Namespace + "/{kind}",
			"app.pubky.events": "/events",
		},
	}
	return presenter.OK(c, wellknown)
}

// resolveTarget validates the addressing triple every record route shares.
func (h *Handler) resolveTarget(c echo.Context) (owner string, kind specs.Kind, err error) {
	owner = c.Param("owner")
	if !pubky.IsPublicKey(owner) {
		return "", "", fmt.Errorf("invalid owner key")
	}
	if c.Param("namespace") != h.config.Namespace {
		return "", "", fmt.Errorf("unknown namespace")
	}
	kind, ok := specs.KindFromPlural(c.Param("plural"))
	if !ok {
		return "", "", fmt.Errorf("unknown record kind")
	}
	return owner, kind, nil
}

// requesterOwns enforces that writes only touch the requester's own
// tree. Requests arriving without an identified requester are refused.
func requesterOwns(c echo.Context, owner string) bool {
	requester, _ := c.Request().Context().Value(domain.RequesterKeyCtxKey).(string)
	return requester == owner
}

func (h *Handler) handlePut(c echo.Context) error {
	ctx := c.Request().Context()

	owner, kind, err := h.resolveTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !requesterOwns(c, owner) {
		return presenter.Forbidden(c, "records may only be written by their owner")
	}

	blob, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	record, err := h.record.Put(ctx, owner, kind, c.Param("id"), blob)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	path, err := specs.RecordPath(kind, record.ID)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"status": "ok",
		"uri":    record.URI,
		"path":   path,
	})
}

func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	owner, kind, err := h.resolveTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	record, err := h.record.Get(ctx, owner, kind, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "resource not found")
		}
		return presenter.InternalError(c, err)
	}

	return c.JSONBlob(http.StatusOK, record.Content)
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	owner, kind, err := h.resolveTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !requesterOwns(c, owner) {
		return presenter.Forbidden(c, "records may only be deleted by their owner")
	}

	if err := h.record.Delete(ctx, owner, kind, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "resource not found")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	owner, kind, err := h.resolveTarget(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	opts := usecase.ListOptions{Cursor: crock32.Canonicalize(c.QueryParam("cursor")), Limit: 10}

	limitStr := c.QueryParam("limit")
	if limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil || limitInt <= 0 {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		opts.Limit = limitInt
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	switch c.QueryParam("order") {
	case "", "asc":
	case "desc":
		opts.Reverse = true
	default:
		return presenter.BadRequestMessage(c, "invalid order parameter")
	}

	records, err := h.record.List(ctx, owner, kind, opts)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, records)
}

func recordErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, specs.ErrDeserialization):
		return presenter.BadRequestKind(c, "deserialization", err)
	case errors.Is(err, crock32.ErrInvalidEncoding):
		return presenter.BadRequestKind(c, "invalid_encoding", err)
	case errors.Is(err, specs.ErrMandatoryField):
		return presenter.BadRequestKind(c, "mandatory_field_invalid", err)
	case errors.Is(err, specs.ErrIdentifierMismatch):
		return presenter.BadRequestKind(c, "identifier_mismatch", err)
	case errors.Is(err, specs.ErrContentTooLong):
		return presenter.BadRequestKind(c, "content_too_long", err)
	case errors.Is(err, specs.ErrLabelTooLong):
		return presenter.BadRequestKind(c, "label_too_long", err)
	case errors.Is(err, specs.ErrUnknownKind):
		return presenter.BadRequestKind(c, "unknown_kind", err)
	default:
		return presenter.InternalError(c, err)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type     string   `json:"type"`
	Prefixes []string `json:"prefixes"`
}

func (h *Handler) handleEvents(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// The fan-out channels are never closed: Realtime may hold a committed
	// send on output, and closing under it would panic. Teardown happens
	// through context cancellation instead.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan pubky.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Prefixes:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Prefixes),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
