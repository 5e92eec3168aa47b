package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	ratapp "stayinn/internal/app/handlers/ratings"
	"stayinn/internal/app/queries"
	"stayinn/internal/domain/identity"
)

const (
	kindAccommodation = "ACCOMMODATION"
	kindHost          = "HOST"
)

type RatingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type rateAccommodationRequest struct {
	AccommodationID string `json:"accommodation_id"`
	Rate            int    `json:"rate"`
}

type rateHostRequest struct {
	HostID string `json:"host_id"`
	Rate   int    `json:"rate"`
}

func (h RatingHandler) RateAccommodation(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleGuest)
	if !ok {
		return
	}
	var req rateAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := ratapp.RateAccommodationCommand{
		Caller:          claims,
		AccommodationID: req.AccommodationID,
		Rate:            req.Rate,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[ratapp.RateAccommodationCommand, *dto.Rating](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RatingHandler) RateHost(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleGuest)
	if !ok {
		return
	}
	var req rateHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := ratapp.RateHostCommand{
		Caller:          claims,
		HostID:          req.HostID,
		Rate:            req.Rate,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[ratapp.RateHostCommand, *dto.Rating](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RatingHandler) DeleteAccommodationRating(c *gin.Context) {
	h.deleteRating(c)
}

func (h RatingHandler) DeleteHostRating(c *gin.Context) {
	h.deleteRating(c)
}

// deleteRating serves both kinds; the rating id alone identifies the record
// and ownership is checked against the caller.
func (h RatingHandler) deleteRating(c *gin.Context) {
	claims, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := ratapp.DeleteCommand{
		Caller:   claims,
		RatingID: c.Param("id"),
	}
	result, err := commands.Dispatch[ratapp.DeleteCommand, *ratapp.DeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatingHandler) ListForAccommodation(c *gin.Context) {
	h.listBySubject(c, kindAccommodation)
}

func (h RatingHandler) ListForHost(c *gin.Context) {
	h.listBySubject(c, kindHost)
}

func (h RatingHandler) listBySubject(c *gin.Context, kind string) {
	query := ratapp.ListBySubjectQuery{Kind: kind, SubjectID: c.Param("id")}
	result, err := queries.Ask[ratapp.ListBySubjectQuery, []dto.Rating](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatingHandler) Average(c *gin.Context) {
	kind := strings.ToUpper(strings.TrimSpace(c.Query("kind")))
	if kind == "" {
		kind = kindAccommodation
	}
	query := ratapp.AverageForQuery{Kind: kind, SubjectID: c.Param("subjectId")}
	result, err := queries.Ask[ratapp.AverageForQuery, *dto.RatingSummary](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatingHandler) MyAccommodationRatings(c *gin.Context) {
	h.listByRater(c, kindAccommodation)
}

func (h RatingHandler) MyHostRatings(c *gin.Context) {
	h.listByRater(c, kindHost)
}

func (h RatingHandler) listByRater(c *gin.Context, kind string) {
	claims, ok := requireAuth(c)
	if !ok {
		return
	}
	query := ratapp.ListByRaterQuery{Caller: claims, Kind: kind}
	result, err := queries.Ask[ratapp.ListByRaterQuery, []dto.Rating](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatingHandler) Notifications(c *gin.Context) {
	claims, ok := requireRole(c, identity.RoleHost)
	if !ok {
		return
	}
	query := ratapp.ListNotificationsQuery{Caller: claims}
	result, err := queries.Ask[ratapp.ListNotificationsQuery, []dto.Notification](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ RatingHTTP = RatingHandler{}
