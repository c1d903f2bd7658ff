package api

import (
	"context"
	"net/http"
	"time"

	domrepo "FinPanel/internal/domain/repository"
	xhttp "FinPanel/pkg/http"
	xlogger "FinPanel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthEchoHandler reports readiness of the panel store.
type HealthEchoHandler struct {
	logger *xlogger.Logger
	store  domrepo.PanelStore
}

func NewHealthEchoHandler(logger *xlogger.Logger, store domrepo.PanelStore) *HealthEchoHandler {
	return &HealthEchoHandler{logger: logger, store: store}
}

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/readyz", h.Ready)
}

func (h *HealthEchoHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Health(ctx); err != nil {
		h.logger.Warn("store not ready", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"store": err.Error()})
	}
	return xhttp.SuccessResponse(c, map[string]string{"store": "ok"})
}
