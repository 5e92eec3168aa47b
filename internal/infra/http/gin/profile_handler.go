package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	profapp "stayinn/internal/app/handlers/profiles"
	"stayinn/internal/app/queries"
)

type ProfileHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type upsertProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (h ProfileHandler) Get(c *gin.Context) {
	claims, ok := requireAuth(c)
	if !ok {
		return
	}
	query := profapp.GetQuery{Caller: claims}
	result, err := queries.Ask[profapp.GetQuery, *dto.Profile](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ProfileHandler) Upsert(c *gin.Context) {
	claims, ok := requireAuth(c)
	if !ok {
		return
	}
	var req upsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := profapp.UpsertCommand{
		Caller:    claims,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	result, err := commands.Dispatch[profapp.UpsertCommand, *dto.Profile](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ProfileHandler) Delete(c *gin.Context) {
	claims, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := profapp.DeleteCommand{Caller: claims}
	result, err := commands.Dispatch[profapp.DeleteCommand, *profapp.DeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ProfileHTTP = ProfileHandler{}
