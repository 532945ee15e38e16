package medicalrecord

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recordgate/recordgate/internal/access"
	"github.com/recordgate/recordgate/internal/platform/auth"
	"github.com/recordgate/recordgate/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// clinicalRoles may browse record collections. Per-record disclosure is
// still decided by the policy engine and the tier projection.
var clinicalRoles = []access.Role{
	access.RoleAdmin, access.RolePhysician, access.RoleNurse, access.RoleMedicalAdmin,
}

// authorRoles may write clinical documentation.
var authorRoles = []access.Role{
	access.RolePhysician, access.RoleNurse,
	access.RoleNursePractitioner, access.RolePhysicianAssistant,
}

var departmentRoles = []access.Role{
	access.RoleRadiology, access.RoleLaboratory, access.RolePharmacy,
	access.RoleEmergency, access.RoleICU,
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medical-records")

	g.GET("/my-records", h.MyRecords, auth.RequireRole(access.RolePatient))
	g.GET("", h.ListRecords, auth.RequireRole(clinicalRoles...))
	g.GET("/search", h.SearchRecords, auth.RequireRole(clinicalRoles...))
	g.GET("/patient/:patientId", h.PatientRecords, auth.RequireRole(clinicalRoles...))
	g.GET("/department/:department", h.DepartmentRecords,
		auth.RequireRole(append(append([]access.Role{}, clinicalRoles...), departmentRoles...)...))

	// Any authenticated caller may try a single record; the policy
	// engine decides and audits the outcome.
	g.GET("/:id", h.GetRecord)

	g.POST("", h.CreateRecord, auth.RequireRole(authorRoles...))
	g.PUT("/:id", h.UpdateRecord, auth.RequireRole(
		append(append([]access.Role{}, authorRoles...), access.RoleSpecialist)...))
	g.POST("/:id/care-team/:userId", h.AddCareTeamMember,
		auth.RequireRole(access.RolePhysician, access.RoleMedicalAdmin))
	g.DELETE("/:id/care-team/:userId", h.RemoveCareTeamMember,
		auth.RequireRole(access.RolePhysician, access.RoleMedicalAdmin))
	g.PUT("/:id/archive", h.ArchiveRecord, auth.RequireRole(access.RoleMedicalAdmin))
}

func requester(c echo.Context) Requester {
	identity, roles := auth.RequesterFromContext(c)
	rid, _ := c.Get("request_id").(string)
	return Requester{Identity: identity, Roles: roles, RequestID: rid}
}

// httpError maps service errors onto HTTP status codes.
func httpError(err error) error {
	var denied *access.DeniedError
	var invalid *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
	case errors.As(err, &denied):
		return echo.NewHTTPError(http.StatusForbidden, denied.Error())
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.GetRecord(c.Request().Context(), requester(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		RecordType: RecordType(c.QueryParam("type")),
		Status:     RecordStatus(c.QueryParam("status")),
	}
	items, total, err := h.svc.ListRecords(c.Request().Context(), requester(c), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) MyRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.MyRecords(c.Request().Context(), requester(c), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PatientRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PatientRecords(c.Request().Context(), requester(c),
		c.Param("patientId"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DepartmentRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.DepartmentRecords(c.Request().Context(), requester(c),
		c.Param("department"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchRecords(c.Request().Context(), requester(c),
		c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.CreateRecord(c.Request().Context(), requester(c), &m)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd MedicalRecord
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.UpdateRecord(c.Request().Context(), requester(c), id, &upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) AddCareTeamMember(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.AddCareTeamMember(c.Request().Context(), requester(c), id, c.Param("userId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveCareTeamMember(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveCareTeamMember(c.Request().Context(), requester(c), id, c.Param("userId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ArchiveRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.ArchiveRecord(c.Request().Context(), requester(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
