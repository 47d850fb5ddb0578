package insurance

import (
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
	g := api.Group("", auth.RequireRole("admin", "registrar", "frontdesk"))
	g.POST("/insurance/verify", h.Verify)
	g.GET("/insurance/responsibility", h.Responsibility)
	g.GET("/insurance/statistics", h.Statistics)
	g.GET("/patients/:id/payment-options", h.PaymentOptions)
}

type verifyRequest struct {
	PatientID     uuid.UUID `json:"patient_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
}

func (h *Handler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Verify(c.Request().Context(), req.PatientID, req.AppointmentID)
	if err == ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "patient or appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Responsibility(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	appointmentID, err := uuid.Parse(c.QueryParam("appointment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}
	serviceCost := 0.0
	if raw := c.QueryParam("service_cost"); raw != "" {
		serviceCost, err = strconv.ParseFloat(raw, 64)
		if err != nil || serviceCost < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid service_cost")
		}
	}

	result, err := h.svc.PatientResponsibility(c.Request().Context(), patientID, appointmentID, serviceCost)
	if err == ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "patient or appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) PaymentOptions(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil || amount < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	options, err := h.svc.PaymentOptions(c.Request().Context(), patientID, amount)
	if err == ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, options)
}

func (h *Handler) Statistics(c echo.Context) error {
	now := time.Now()
	start, end := now.AddDate(0, -1, 0), now
	var err error
	if raw := c.QueryParam("start"); raw != "" {
		start, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		}
	}
	if raw := c.QueryParam("end"); raw != "" {
		end, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		}
	}

	stats, err := h.svc.Statistics(c.Request().Context(), start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
