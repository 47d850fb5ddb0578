package prediction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medassist/medassist/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "registrar"))
	g.POST("/predictions", h.Predict)
	g.GET("/predictions/high-risk", h.HighRisk)
	g.GET("/predictions/clinic-rate", h.ClinicRate)
	g.GET("/appointments/:id/prediction", h.GetByAppointment)
	g.GET("/patients/:id/risk-profile", h.RiskProfile)
}

func (h *Handler) Predict(c echo.Context) error {
	var req struct {
		PatientID     uuid.UUID `json:"patient_id"`
		AppointmentID uuid.UUID `json:"appointment_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pred, err := h.svc.Predict(c.Request().Context(), req.PatientID, req.AppointmentID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient or appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"prediction":      pred,
		"risk_level":      RiskLevel(pred.RiskScore),
		"recommendations": h.svc.MitigationRecommendations(pred),
	})
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pred, err := h.svc.GetByAppointment(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "prediction not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"prediction": pred,
		"risk_level": RiskLevel(pred.RiskScore),
	})
}

func (h *Handler) HighRisk(c echo.Context) error {
	now := time.Now()
	start, end := now, now.AddDate(0, 0, 30)
	if v := c.QueryParam("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		}
		start = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		}
		end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	threshold := 0.0
	if v := c.QueryParam("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid threshold")
		}
		threshold = f
	}

	items, err := h.svc.HighRiskAppointments(c.Request().Context(), start, end, threshold)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*HighRiskAppointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ClinicRate(c echo.Context) error {
	start, err := time.Parse("2006-01-02", c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
	}

	stats, err := h.svc.ClinicNoShowRate(c.Request().Context(), start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) RiskProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	profile, err := h.svc.PatientRiskProfile(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}
