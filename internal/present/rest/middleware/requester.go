package middleware

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pubky-garden/pubky-playground"
	"github.com/pubky-garden/pubky-playground/internal/domain"
)

var tracer = otel.Tracer("auth")

// RequesterMiddleware picks up the requester key the authenticating
// front proxy forwards. Signature verification of the author happens
// there; the homeserver only checks the key shape and stashes it for
// ownership checks.
type RequesterMiddleware struct{}

func NewRequesterMiddleware() *RequesterMiddleware {
	return &RequesterMiddleware{}
}

func (m *RequesterMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyRequester")
		defer span.End()

		key := c.Request().Header.Get(domain.RequesterKeyHeader)
		if key != "" {
			if pubky.IsPublicKey(key) {
				ctx = context.WithValue(ctx, domain.RequesterKeyCtxKey, key)
				span.SetAttributes(attribute.String("RequesterKey", key))
			} else {
				span.RecordError(fmt.Errorf("malformed requester key"))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
