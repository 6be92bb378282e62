package api

import (
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintenance-backend/internal/auth"
	"maintenance-backend/internal/mw"
	"maintenance-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   *store.Store
	tokens  auth.TokenService
	webpush *webpush.Options
	log     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s *store.Store, tokens auth.TokenService, webpushOptions *webpush.Options, log *zap.Logger) *Handler {
	return &Handler{
		store:   s,
		tokens:  tokens,
		webpush: webpushOptions,
		log:     log,
	}
}

// pathID parses the :id path parameter, answering 400 when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// actor returns the authenticated user id. Routes using it are always behind mw.Authenticate.
func actor(c *gin.Context) (int64, bool) {
	id, ok := mw.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return id, ok
}
