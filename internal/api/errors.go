package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/model"
)

const genericError = "An unexpected error occurred."

var errBodyTooLarge = errors.New("request body too large")

// respondError translates a store failure into a status code and a user-facing message.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		notFound   *model.NotFoundError
		validation *model.ValidationError
		stock      *model.InsufficientStockError
		reports    *model.HasDependentReportsError
		actions    *model.HasDependentActionsError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(notFound.Entity) + " not found."})
	case errors.As(err, &stock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     fmt.Sprintf("The quantity exceeds available stock (%d).", stock.Available),
			"available": stock.Available,
		})
	case errors.As(err, &reports):
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("User cannot be deleted because they have created %d machine report(s).", reports.Count),
			"count": reports.Count,
		})
	case errors.As(err, &actions):
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("User cannot be deleted because they have created %d action(s).", actions.Count),
			"count": actions.Count,
		})
	case errors.Is(err, model.ErrSelfDeletionForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete yourself."})
	case errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
	case errors.Is(err, model.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
	default:
		// Unexpected errors were already logged by the store with their operation and id.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
