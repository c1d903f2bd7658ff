package api

import (
	"errors"
	"net/http"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
	"FinPanel/internal/services/panel"
	"FinPanel/internal/usecase"
	xhttp "FinPanel/pkg/http"
	xlogger "FinPanel/pkg/logger"
	"FinPanel/pkg/util"

	"github.com/labstack/echo/v4"
)

// PanelsEchoHandler serves panel definitions and stored builds and
// triggers rebuilds.
type PanelsEchoHandler struct {
	logger   *xlogger.Logger
	catalog  *usecase.PanelCatalog
	query    *usecase.PanelQuery
	pipeline *usecase.PanelPipeline
}

func NewPanelsEchoHandler(logger *xlogger.Logger, catalog *usecase.PanelCatalog, query *usecase.PanelQuery, pipeline *usecase.PanelPipeline) *PanelsEchoHandler {
	return &PanelsEchoHandler{logger: logger, catalog: catalog, query: query, pipeline: pipeline}
}

func (h *PanelsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/panels")
	g.GET("", h.List)
	g.GET("/:name", h.Latest)
	g.POST("/:name/build", h.Build)
}

func (h *PanelsEchoHandler) List(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.catalog.List())
}

func (h *PanelsEchoHandler) Latest(c echo.Context) error {
	req := &models.PanelQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// validated as YYYY-MM-DD above
	from, _ := util.ParseDatePtr(req.From)
	to, _ := util.ParseDatePtr(req.To)

	b, err := h.query.Latest(c.Request().Context(), usecase.PanelQueryParams{
		Name:    req.Name,
		From:    from,
		To:      to,
		Columns: util.SplitList(req.Columns),
	})
	if err != nil {
		return h.fail(c, "latest panel", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, b)
}

func (h *PanelsEchoHandler) Build(c echo.Context) error {
	req := &models.BuildPanelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	b, err := h.pipeline.Rebuild(c.Request().Context(), req.Name, req.End)
	if err != nil {
		return h.fail(c, "build panel", err)
	}
	return xhttp.CreatedResponse(c, models.BuildSummary{
		BuildID:  b.ID,
		Panel:    b.Name,
		Rows:     b.Panel.Len(),
		Columns:  b.Panel.ColumnIDs(),
		Warnings: b.Warnings,
	})
}

func (h *PanelsEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" usecase error", xlogger.String("panel", c.Param("name")), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var inErr *panel.InputError
	switch {
	case errors.As(err, &inErr):
		return xhttp.BadRequestErrorf("%s", inErr.Error()).
			WithField(inErr.Column).
			WithParam("rule", inErr.Rule).
			WithError(err)
	case errors.Is(err, usecase.ErrInvalidRequest):
		return xhttp.BadRequestErrorf("%s", err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrPanelNotFound):
		return xhttp.NotFoundErrorf("%s", err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrFetch):
		return xhttp.BadGatewayErrorf("%s", err.Error()).WithError(err)
	default:
		return xhttp.NewAppError("ERR_INTERNAL", "", "internal error", http.StatusInternalServerError).WithError(err)
	}
}
