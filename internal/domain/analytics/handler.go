package analytics

import (
	"net/http"
	"strconv"
	"time"

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
	g := api.Group("/analytics", auth.RequireRole("admin", "physician"))
	g.GET("/appointments", h.rangeQuery(func(c echo.Context, start, end time.Time) (interface{}, error) {
		return h.svc.AppointmentStatistics(c.Request().Context(), start, end)
	}))
	g.GET("/revenue", h.rangeQuery(func(c echo.Context, start, end time.Time) (interface{}, error) {
		return h.svc.RevenueAnalytics(c.Request().Context(), start, end)
	}))
	g.GET("/no-shows", h.rangeQuery(func(c echo.Context, start, end time.Time) (interface{}, error) {
		return h.svc.NoShowAnalytics(c.Request().Context(), start, end)
	}))
	g.GET("/doctors", h.rangeQuery(func(c echo.Context, start, end time.Time) (interface{}, error) {
		return h.svc.DoctorPerformance(c.Request().Context(), start, end)
	}))
	g.GET("/operations", h.rangeQuery(func(c echo.Context, start, end time.Time) (interface{}, error) {
		return h.svc.OperationalInsights(c.Request().Context(), start, end)
	}))
	g.GET("/dashboard", h.rangeQuery(func(c echo.Context, start, end time.Time) (interface{}, error) {
		return h.svc.Dashboard(c.Request().Context(), start, end)
	}))
	g.GET("/patients", h.Patients)
	g.GET("/reports/monthly", h.MonthlyReport)
}

// rangeQuery parses the shared start/end query params, defaulting to the
// trailing 30 days.
func (h *Handler) rangeQuery(query func(c echo.Context, start, end time.Time) (interface{}, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		end := time.Now()
		start := end.AddDate(0, 0, -30)
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

		result, err := query(c, start, end)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, result)
	}
}

func (h *Handler) Patients(c echo.Context) error {
	result, err := h.svc.PatientAnalytics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) MonthlyReport(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
	}

	report, err := h.svc.MonthlyReport(c.Request().Context(), year, time.Month(month))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
