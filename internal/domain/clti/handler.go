package clti

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/limbsalvage/clti/internal/platform/auth"
	"github.com/limbsalvage/clti/internal/platform/reporting"
	"github.com/limbsalvage/clti/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – physician, nurse
	readGroup := api.Group("", auth.RequireRole(auth.RolePhysician, auth.RoleNurse))
	readGroup.GET("/fields", h.ListFields)
	readGroup.GET("/sessions/:id", h.GetSession)
	readGroup.GET("/sessions/:id/wizard", h.GetWizard)
	readGroup.GET("/cases", h.ListCases)
	readGroup.GET("/cases/:id", h.GetCase)
	readGroup.GET("/cases/:id/report.xlsx", h.CaseReport)

	// Write endpoints – physician
	writeGroup := api.Group("", auth.RequireRole(auth.RolePhysician))
	writeGroup.POST("/sessions", h.OpenSession)
	writeGroup.PATCH("/sessions/:id", h.ApplyUpdates)
	writeGroup.DELETE("/sessions/:id", h.DiscardSession)
	writeGroup.POST("/sessions/:id/reset", h.ResetSession)
	writeGroup.POST("/sessions/:id/save", h.SaveSession)
	writeGroup.POST("/sessions/:id/load", h.LoadSession)
	writeGroup.POST("/sessions/:id/wizard/:step/complete", h.CompleteStep)
	writeGroup.DELETE("/cases/:id", h.DeleteCase)
}

// writableSession parses the session id and checks that the caller owns the
// session. Admins may change any session.
func (h *Handler) writableSession(c echo.Context) (uuid.UUID, error) {
	id, err := parseID(c)
	if err != nil {
		return uuid.Nil, err
	}
	ctx := c.Request().Context()
	if auth.HasAnyRole(auth.RolesFromContext(ctx), auth.RoleAdmin) {
		return id, nil
	}
	if err := h.svc.Authorize(id, auth.UserIDFromContext(ctx)); err != nil {
		return uuid.Nil, httpError(err)
	}
	return id, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// httpError maps service errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrCaseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidField), errors.Is(err, ErrInvalidSnapshot):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSessionForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrStepBlocked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// -- Session Handlers --

type openRequest struct {
	CaseID *uuid.UUID `json:"case_id"`
}

func (h *Handler) OpenSession(c echo.Context) error {
	var req openRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	view := h.svc.Open(auth.UserIDFromContext(c.Request().Context()))
	if req.CaseID != nil {
		loaded, err := h.svc.Load(c.Request().Context(), view.SessionID, *req.CaseID)
		if err != nil {
			_ = h.svc.Discard(view.SessionID)
			return httpError(err)
		}
		view = loaded
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.Get(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type updatesRequest struct {
	Updates []FieldUpdate `json:"updates"`
}

func (h *Handler) ApplyUpdates(c echo.Context) error {
	id, err := h.writableSession(c)
	if err != nil {
		return err
	}
	var req updatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Updates) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "updates are required")
	}
	view, err := h.svc.Apply(id, req.Updates)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) DiscardSession(c echo.Context) error {
	id, err := h.writableSession(c)
	if err != nil {
		return err
	}
	if err := h.svc.Discard(id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ResetSession(c echo.Context) error {
	id, err := h.writableSession(c)
	if err != nil {
		return err
	}
	view, err := h.svc.Reset(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type saveRequest struct {
	Label *string `json:"label"`
}

func (h *Handler) SaveSession(c echo.Context) error {
	id, err := h.writableSession(c)
	if err != nil {
		return err
	}
	var req saveRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	rec, err := h.svc.Save(c.Request().Context(), id, req.Label)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

type loadRequest struct {
	CaseID uuid.UUID `json:"case_id"`
}

func (h *Handler) LoadSession(c echo.Context) error {
	id, err := h.writableSession(c)
	if err != nil {
		return err
	}
	var req loadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CaseID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "case_id is required")
	}
	view, err := h.svc.Load(c.Request().Context(), id, req.CaseID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) GetWizard(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.Get(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"current_step": view.CurrentStep,
		"steps":        view.Wizard,
	})
}

func (h *Handler) CompleteStep(c echo.Context) error {
	id, err := h.writableSession(c)
	if err != nil {
		return err
	}
	step, ok := ParseStep(c.Param("step"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown step: %s", c.Param("step")))
	}
	view, err := h.svc.Complete(id, step)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) ListFields(c echo.Context) error {
	return c.JSON(http.StatusOK, FieldNames())
}

// -- Stored Case Handlers --

func (h *Handler) ListCases(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) GetCase(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.GetCase(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteCase(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCase(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CaseReport(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.GetCase(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	var buf bytes.Buffer
	if err := reporting.WriteWorkbook(&buf, CaseSheets(rec.Snapshot)...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="clti-case-%s.xlsx"`, rec.ID))
	return c.Blob(http.StatusOK, reporting.XLSXContentType, buf.Bytes())
}
