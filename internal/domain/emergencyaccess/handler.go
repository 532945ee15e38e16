package emergencyaccess

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recordgate/recordgate/internal/access"
	"github.com/recordgate/recordgate/internal/domain/medicalrecord"
	"github.com/recordgate/recordgate/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medical-records/:id/emergency-access")
	g.POST("", h.Grant, auth.RequireRole(
		access.RoleEmergencyAccess, access.RoleEmergency, access.RolePhysician))
	g.GET("", h.History, auth.RequireRole(
		access.RoleMedicalAdmin, access.RoleComplianceOfficer, access.RoleAuditor))
}

func requester(c echo.Context) medicalrecord.Requester {
	identity, roles := auth.RequesterFromContext(c)
	rid, _ := c.Get("request_id").(string)
	return medicalrecord.Requester{Identity: identity, Roles: roles, RequestID: rid}
}

func httpError(err error) error {
	var invalid *medicalrecord.ValidationError
	switch {
	case errors.Is(err, medicalrecord.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) Grant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var gr GrantRequest
	if err := c.Bind(&gr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Grant(c.Request().Context(), requester(c), id, gr)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	grants, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if grants == nil {
		grants = []*Grant{}
	}
	return c.JSON(http.StatusOK, grants)
}
