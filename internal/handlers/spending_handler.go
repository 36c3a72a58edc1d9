package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/services"
)

// SpendingHandler handles spending-related requests
type SpendingHandler struct {
	spendingService services.SpendingServicer
}

// NewSpendingHandler creates a new SpendingHandler
func NewSpendingHandler(spendingService services.SpendingServicer) *SpendingHandler {
	return &SpendingHandler{spendingService: spendingService}
}

// CreateSpendingRequest represents the request payload for recording a spending
type CreateSpendingRequest struct {
	CategoryID  string          `json:"categoryId" binding:"required"`
	Label       string          `json:"label" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        string          `json:"date"`
}

// UpdateSpendingRequest represents the request payload for updating a spending.
// Absent fields are left untouched.
type UpdateSpendingRequest struct {
	CategoryID  *string          `json:"categoryId"`
	Label       *string          `json:"label"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
}

// CreateSpending handles recording a new spending
// @Summary     Record a spending
// @Description Record a new spending for the authenticated user
// @Tags        spendings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSpendingRequest true "Spending details"
// @Success     201 {object} services.SpendingWithCategory "Spending created"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Failure     401 {object} map[string]interface{} "Unauthorized"
// @Router      /spending [post]
func (h *SpendingHandler) CreateSpending(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.SpendingInput{
		CategoryID:  req.CategoryID,
		Label:       req.Label,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.Date = date
	}

	spending, err := h.spendingService.CreateSpending(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"spending": spending})
}

// ListSpendings handles listing the user's spendings
// @Summary     List spendings
// @Description List the authenticated user's spendings, newest first
// @Tags        spendings
// @Produce     json
// @Security    BearerAuth
// @Param       categoryId query string false "Filter by category"
// @Param       startDate query string false "Earliest spending date (RFC3339 or YYYY-MM-DD)"
// @Param       endDate query string false "Latest spending date (RFC3339 or YYYY-MM-DD)"
// @Param       limit query int false "Page size (default 50)"
// @Param       offset query int false "Page offset"
// @Success     200 {object} map[string]interface{} "Spendings"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Failure     401 {object} map[string]interface{} "Unauthorized"
// @Router      /spending [get]
func (h *SpendingHandler) ListSpendings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.ListFilter{CategoryID: c.Query("categoryId")}

	if filter.StartDate, err = parseDateQuery(c, "startDate"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.EndDate, err = parseDateQuery(c, "endDate"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.Limit, err = parseIntQuery(c, "limit"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.Offset, err = parseIntQuery(c, "offset"); err != nil {
		respondWithError(c, err)
		return
	}

	spendings, err := h.spendingService.ListSpendings(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spendings": spendings})
}

// UpdateSpending handles updating an existing spending
// @Summary     Update a spending
// @Description Update fields of a spending owned by the authenticated user
// @Tags        spendings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Spending ID"
// @Param       request body UpdateSpendingRequest true "Fields to update"
// @Success     200 {object} services.SpendingWithCategory "Updated spending"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Failure     404 {object} map[string]interface{} "Spending not found"
// @Router      /spending/{id} [put]
func (h *SpendingHandler) UpdateSpending(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.SpendingUpdate{
		CategoryID:  req.CategoryID,
		Label:       req.Label,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.Date = &date
	}

	spending, err := h.spendingService.UpdateSpending(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spending": spending})
}

// DeleteSpending handles deleting a spending
// @Summary     Delete a spending
// @Description Delete a spending owned by the authenticated user
// @Tags        spendings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Spending ID"
// @Success     200 {object} map[string]interface{} "Deleted"
// @Failure     404 {object} map[string]interface{} "Spending not found"
// @Router      /spending/{id} [delete]
func (h *SpendingHandler) DeleteSpending(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.spendingService.DeleteSpending(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func parseIntQuery(c *gin.Context, param string) (int, error) {
	raw := c.Query(param)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+param)
	}
	return n, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format")
}
