package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spendtrack/internal/period"
	"spendtrack/internal/services"
)

// StatsHandler handles spending statistics requests
type StatsHandler struct {
	statsService services.StatsServicer
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService services.StatsServicer) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetPieStats handles the per-category spending breakdown
// @Summary     Pie chart statistics
// @Description Aggregate the user's spendings per category over the requested period
// @Tags        statistics
// @Produce     json
// @Security    BearerAuth
// @Param       timePeriod query string false "Aggregation period: day, week, month or year (default month)"
// @Param       endDate query string false "Period end reference (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {object} stats.PieStats "Per-category totals"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Failure     401 {object} map[string]interface{} "Unauthorized"
// @Router      /spending/stats/pie [get]
func (h *StatsHandler) GetPieStats(c *gin.Context) {
	userID, p, endRef, err := statsParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.statsService.PieStats(c.Request.Context(), userID, p, endRef)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBarStats handles the per-bucket spending breakdown
// @Summary     Bar chart statistics
// @Description Aggregate the user's spendings per time bucket and category over the requested period
// @Tags        statistics
// @Produce     json
// @Security    BearerAuth
// @Param       timePeriod query string false "Aggregation period: day, week, month or year (default month)"
// @Param       endDate query string false "Period end reference (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {array} stats.BarChartRow "Per-bucket totals"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Failure     401 {object} map[string]interface{} "Unauthorized"
// @Router      /spending/stats/bars [get]
func (h *StatsHandler) GetBarStats(c *gin.Context) {
	userID, p, endRef, err := statsParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.statsService.BarStats(c.Request.Context(), userID, p, endRef)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func statsParams(c *gin.Context) (string, period.TimePeriod, time.Time, error) {
	userID, err := getUserID(c)
	if err != nil {
		return "", "", time.Time{}, err
	}

	p, err := period.Parse(c.Query("timePeriod"))
	if err != nil {
		return "", "", time.Time{}, err
	}

	endRef := time.Now()
	if parsed, err := parseDateQuery(c, "endDate"); err != nil {
		return "", "", time.Time{}, err
	} else if parsed != nil {
		endRef = *parsed
	}

	return userID, p, endRef, nil
}
