package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint   string  `json:"endpoint" binding:"required"`
	P256DH     string  `json:"p256dh" binding:"required"`
	Auth       string  `json:"auth" binding:"required"`
	SpareParts []int64 `json:"spare_part_ids"`
}

// PutSubscription creates or replaces the caller's push subscription and the spare parts it watches.
func (h *Handler) PutSubscription(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.Subscriptions.Put(c.Request.Context(), actorID, subscription, req.SpareParts); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.store.Subscriptions.Delete(c.Request.Context(), actorID, req.Endpoint); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads a query parameter without URL decoding; push endpoints are stored verbatim.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the spare parts watched by one of the caller's subscriptions.
func (h *Handler) GetSubscription(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	ids, err := h.store.Subscriptions.SpareParts(c.Request.Context(), actorID, raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spare_part_ids": ids})
}

// GetVAPIDPublicKey returns the public key browsers need to subscribe to low-stock alerts.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
