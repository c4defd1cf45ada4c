package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/notify"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// SendContactMessage forwards a contact-form submission to the shop inbox.
// The send is fire-and-forget; the client gets an immediate accept.
func SendContactMessage(mailer notify.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req contactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		go mailer.SendContactMessage(
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.Email),
			strings.TrimSpace(req.Message),
		)

		c.JSON(http.StatusOK, gin.H{"message": "message received"})
	}
}
