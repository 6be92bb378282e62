package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/store"
)

type sparePartRequest struct {
	Code     string `json:"code" binding:"required,max=64"`
	Name     string `json:"name" binding:"required,max=256"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// ListSpareParts returns the inventory with current stock.
func (h *Handler) ListSpareParts(c *gin.Context) {
	parts, err := h.store.SpareParts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

// GetSparePart returns one spare part.
func (h *Handler) GetSparePart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	part, err := h.store.SpareParts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

// CreateSparePart adds a spare part with its initial stock.
func (h *Handler) CreateSparePart(c *gin.Context) {
	var req sparePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	part, err := h.store.SpareParts.Create(c.Request.Context(), store.SparePartInput{
		Code:     req.Code,
		Name:     req.Name,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, part)
}

type machineReportRequest struct {
	MachineName string `json:"machine_name" binding:"required,max=256"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"max=32"`
}

// ListMachineReports returns every machine report, newest first.
func (h *Handler) ListMachineReports(c *gin.Context) {
	reports, err := h.store.MachineReports.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetMachineReport returns one machine report.
func (h *Handler) GetMachineReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.store.MachineReports.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CreateMachineReport files a report owned by the caller.
func (h *Handler) CreateMachineReport(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	var req machineReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, err := h.store.MachineReports.Create(c.Request.Context(), actorID, store.MachineReportInput{
		MachineName: req.MachineName,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
