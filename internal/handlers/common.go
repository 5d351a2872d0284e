package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/logging"
	"github.com/isdamarket/fish_market/internal/mykafka"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: msg,
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// graphError translates store errors into the API's status codes. Anything
// unrecognized is a 500.
func graphError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, "not found")
	case errors.Is(err, graph.ErrUnavailable):
		return errorResponse(c, http.StatusServiceUnavailable, "service temporarily unavailable, try again later")
	default:
		logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", topic, "error", err)
	}
}
