package smartphrase

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/rounds/internal/domain/rounding"
	"github.com/ehr/rounds/internal/platform/auth"
)

// SheetSource hands out sheet snapshots for previews.
type SheetSource interface {
	GetSheet(ctx context.Context, id uuid.UUID) (*rounding.Sheet, error)
}

type Handler struct {
	engine  *Engine
	catalog *Catalog
	sheets  SheetSource
}

func NewHandler(engine *Engine, catalog *Catalog, sheets SheetSource) *Handler {
	return &Handler{engine: engine, catalog: catalog, sheets: sheets}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.Require(auth.PermViewSheets))
	read.GET("/templates", h.ListTemplates)
	read.GET("/templates/suggest", h.SuggestTemplate)
	read.GET("/sheets/:id/smartphrase", h.PreviewSheet)
	read.POST("/smartphrase/render", h.RenderAdHoc)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.List())
}

func (h *Handler) SuggestTemplate(c echo.Context) error {
	dt := rounding.DiagnosisType(c.QueryParam("diagnosis_type"))
	if dt != "" && !dt.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid diagnosis_type")
	}
	return c.JSON(http.StatusOK, h.catalog.ForDiagnosis(dt))
}

// PreviewSheet renders a catalog template against a stored sheet. Without a
// template parameter the suggestion for the sheet's diagnosis is used.
func (h *Handler) PreviewSheet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sheet, err := h.sheets.GetSheet(c.Request().Context(), id)
	if errors.Is(err, rounding.ErrSheetNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "sheet not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	t := h.catalog.ForDiagnosis(sheet.DiagnosisType)
	if templateID := c.QueryParam("template"); templateID != "" {
		t, err = h.catalog.Get(templateID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
	}
	return c.String(http.StatusOK, h.engine.Render(t, *sheet))
}

type renderRequest struct {
	Template struct {
		Label string `json:"label"`
		Body  string `json:"body"`
	} `json:"template"`
	Sheet *rounding.Sheet `json:"sheet"`
}

// RenderAdHoc renders a caller-supplied template body against a
// caller-supplied sheet without touching the workspace.
func (h *Handler) RenderAdHoc(c echo.Context) error {
	var req renderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Sheet == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "sheet is required")
	}
	if err := req.Sheet.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t := Template{Label: req.Template.Label, Body: req.Template.Body}
	return c.String(http.StatusOK, h.engine.Render(t, *req.Sheet))
}
