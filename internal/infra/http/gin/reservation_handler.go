package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	resapp "stayinn/internal/app/handlers/reservations"
	"stayinn/internal/app/queries"
	"stayinn/internal/domain/identity"
)

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createReservationRequest struct {
	AccommodationID string `json:"accommodation_id"`
	PeriodID        string `json:"period_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	GuestNumber     int    `json:"guest_number"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleGuest)
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := resapp.CreateCommand{
		Caller:          claims,
		AccommodationID: req.AccommodationID,
		PeriodID:        req.PeriodID,
		StartDate:       start,
		EndDate:         end,
		GuestNumber:     req.GuestNumber,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) ListByPeriod(c *gin.Context) {
	claims, ok := requireAuth(c)
	if !ok {
		return
	}
	query := resapp.ListByPeriodQuery{Caller: claims, PeriodID: c.Param("id")}
	result, err := queries.Ask[resapp.ListByPeriodQuery, []dto.Reservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) ListMine(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleGuest)
	if !ok {
		return
	}
	query := resapp.ListByGuestQuery{Caller: claims}
	result, err := queries.Ask[resapp.ListByGuestQuery, []dto.Reservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) ListExpired(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleGuest)
	if !ok {
		return
	}
	query := resapp.ListExpiredQuery{Caller: claims}
	result, err := queries.Ask[resapp.ListExpiredQuery, []dto.Reservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Delete(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleGuest)
	if !ok {
		return
	}
	cmd := resapp.DeleteCommand{
		Caller:        claims,
		ReservationID: c.Param("reservationId"),
	}
	result, err := commands.Dispatch[resapp.DeleteCommand, *resapp.DeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReservationHTTP = ReservationHandler{}
