package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	availapp "stayinn/internal/app/handlers/availability"
	"stayinn/internal/app/queries"
	"stayinn/internal/domain/identity"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type periodRequest struct {
	AccommodationID string  `json:"accommodation_id"`
	PeriodID        string  `json:"period_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Price           float64 `json:"price"`
	PricingMode     string  `json:"pricing_mode"`
}

func (h AvailabilityHandler) ListPeriods(c *gin.Context) {
	query := availapp.ListPeriodsQuery{AccommodationID: c.Param("id")}
	result, err := queries.Ask[availapp.ListPeriodsQuery, []dto.Period](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) CreatePeriod(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := availapp.CreatePeriodCommand{
		Caller:          claims,
		AccommodationID: req.AccommodationID,
		StartDate:       start,
		EndDate:         end,
		Price:           req.Price,
		PricingMode:     req.PricingMode,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[availapp.CreatePeriodCommand, *dto.Period](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AvailabilityHandler) UpdatePeriod(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := availapp.UpdatePeriodCommand{
		Caller:          claims,
		AccommodationID: req.AccommodationID,
		PeriodID:        req.PeriodID,
		StartDate:       start,
		EndDate:         end,
		Price:           req.Price,
		PricingMode:     req.PricingMode,
	}
	result, err := commands.Dispatch[availapp.UpdatePeriodCommand, *dto.Period](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) DeletePeriod(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	cmd := availapp.DeletePeriodCommand{
		Caller:          claims,
		AccommodationID: strings.TrimSpace(c.Query("accommodation_id")),
		PeriodID:        c.Param("id"),
	}
	result, err := commands.Dispatch[availapp.DeletePeriodCommand, *availapp.DeletePeriodResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parsePeriodDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, ok := parseFlexibleTime(startRaw)
	if !ok {
		return time.Time{}, time.Time{}, errors.New("start_date must be a valid date")
	}
	end, ok := parseFlexibleTime(endRaw)
	if !ok {
		return time.Time{}, time.Time{}, errors.New("end_date must be a valid date")
	}
	return start, end, nil
}

func parseFlexibleTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

var _ AvailabilityHTTP = AvailabilityHandler{}
