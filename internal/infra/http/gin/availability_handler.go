package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentora/internal/app/commands"
	"rentora/internal/app/dto"
	availabilityapp "rentora/internal/app/handlers/availability"
	"rentora/internal/app/queries"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

const calendarDateLayout = "2006-01-02"

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	from, err := parseDateQuery(c, "from", time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDateQuery(c, "to", from.AddDate(0, 3, 0))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := availabilityapp.GetCalendarQuery{PropertyID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, *dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blockDatesRequest struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := availabilityapp.BlockDatesCommand{
		PropertyID: c.Param("id"),
		HostID:     user,
		From:       req.From,
		To:         req.To,
		Reference:  "host-block-" + uuid.NewString(),
	}
	result, err := commands.Dispatch[availabilityapp.BlockDatesCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AvailabilityHandler) Unblock(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	cmd := availabilityapp.UnblockDatesCommand{
		PropertyID: c.Param("id"),
		HostID:     user,
		Reference:  c.Param("ref"),
	}
	if _, err := h.Commands.Dispatch(c.Request.Context(), cmd); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDateQuery(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return time.Parse(calendarDateLayout, raw)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
