package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	accapp "stayinn/internal/app/handlers/accommodations"
	"stayinn/internal/app/queries"
	"stayinn/internal/domain/identity"
	"stayinn/internal/domain/shared/daterange"
)

type AccommodationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type accommodationRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Amenities []int  `json:"amenities"`
	MinGuests int    `json:"min_guests"`
	MaxGuests int    `json:"max_guests"`
}

func (r accommodationRequest) payload() accapp.Payload {
	return accapp.Payload{
		Name:      r.Name,
		Location:  r.Location,
		Amenities: r.Amenities,
		MinGuests: r.MinGuests,
		MaxGuests: r.MaxGuests,
	}
}

func (h AccommodationHandler) List(c *gin.Context) {
	query := accapp.ListQuery{HostID: strings.TrimSpace(c.Query("host_id"))}
	result, err := queries.Ask[accapp.ListQuery, []dto.Accommodation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) Get(c *gin.Context) {
	query := accapp.GetQuery{AccommodationID: c.Param("id")}
	result, err := queries.Ask[accapp.GetQuery, *dto.Accommodation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) Search(c *gin.Context) {
	query := accapp.SearchQuery{
		Location: strings.TrimSpace(c.Query("location")),
		Guests:   parseInt(c.Query("guests")),
	}
	startRaw := c.Query("start")
	endRaw := c.Query("end")
	if startRaw != "" || endRaw != "" {
		start, ok := parseFlexibleTime(startRaw)
		if !ok {
			respondBadRequest(c, fmt.Errorf("start must be a valid date"))
			return
		}
		end, ok := parseFlexibleTime(endRaw)
		if !ok {
			respondBadRequest(c, fmt.Errorf("end must be a valid date"))
			return
		}
		r, err := daterange.New(start, end)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		query.Range = &r
	}
	result, err := queries.Ask[accapp.SearchQuery, []dto.Accommodation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) Create(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	var req accommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := accapp.CreateCommand{
		Caller:          claims,
		Payload:         req.payload(),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[accapp.CreateCommand, *dto.Accommodation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/accommodations/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h AccommodationHandler) Update(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	var req accommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := accapp.UpdateCommand{
		Caller:          claims,
		AccommodationID: c.Param("id"),
		Payload:         req.payload(),
	}
	result, err := commands.Dispatch[accapp.UpdateCommand, *dto.Accommodation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) Delete(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	cmd := accapp.DeleteCommand{
		Caller:          claims,
		AccommodationID: c.Param("id"),
	}
	result, err := commands.Dispatch[accapp.DeleteCommand, *accapp.DeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AccommodationHTTP = AccommodationHandler{}
