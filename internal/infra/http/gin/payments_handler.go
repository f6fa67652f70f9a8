package ginserver

import (
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentora/internal/app/commands"
	"rentora/internal/app/dto"
	bookingapp "rentora/internal/app/handlers/booking"
	"rentora/internal/infra/payments"
)

type PaymentsHandler struct {
	Commands commands.Bus
}

// Callback receives gateway webhooks. The payload is normalized before it
// reaches the command bus so the application never sees gateway wire shapes.
func (h PaymentsHandler) Callback(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := payments.ParseCallback(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.ApplyPaymentResultCommand{
		TransactionRef: result.TransactionRef,
		Status:         string(result.Status),
		Reason:         result.Reason,
	}
	if _, err := commands.Dispatch[bookingapp.ApplyPaymentResultCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

var _ PaymentsHTTP = PaymentsHandler{}
