package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintenance-backend/internal/model"
	"maintenance-backend/internal/store"
)

const imagesField = "images"

var allowedImageExt = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// actionRequest is accepted as JSON or as a multipart form carrying image files.
type actionRequest struct {
	Status           string  `json:"status" form:"status" binding:"required"`
	Description      string  `json:"description" form:"description"`
	Date             string  `json:"date" form:"date" binding:"required"`
	SparePartID      *int64  `json:"spare_part_id" form:"spare_part_id"`
	Quantity         int     `json:"quantity" form:"quantity" binding:"min=0"`
	MachineReportIDs []int64 `json:"machine_report_ids" form:"machine_report_ids"`
}

func (r actionRequest) input() (store.ActionInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return store.ActionInput{}, &model.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD or RFC 3339"}
	}
	partID := r.SparePartID
	if partID != nil && *partID == 0 {
		partID = nil
	}
	return store.ActionInput{
		Status:           model.ActionStatus(r.Status),
		Description:      r.Description,
		Date:             date,
		SparePartID:      partID,
		Quantity:         r.Quantity,
		MachineReportIDs: r.MachineReportIDs,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// bindAction reads the action fields and, for multipart requests, opens the uploaded images.
// The returned closer must be called once the store is done with the attachments.
func bindAction(c *gin.Context) (store.ActionInput, []store.Attachment, func(), error) {
	noop := func() {}

	var req actionRequest
	if err := c.ShouldBind(&req); err != nil {
		if tooLarge(err) {
			return store.ActionInput{}, nil, noop, errBodyTooLarge
		}
		return store.ActionInput{}, nil, noop, &model.ValidationError{Reason: "invalid request"}
	}
	in, err := req.input()
	if err != nil {
		return store.ActionInput{}, nil, noop, err
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		if tooLarge(err) {
			return store.ActionInput{}, nil, noop, errBodyTooLarge
		}
		return store.ActionInput{}, nil, noop, &model.ValidationError{Field: imagesField, Reason: "invalid multipart form"}
	}

	headers := form.File[imagesField]
	for _, fh := range headers {
		if _, ok := allowedImageExt[strings.ToLower(filepath.Ext(fh.Filename))]; !ok {
			return store.ActionInput{}, nil, noop, &model.ValidationError{Field: imagesField, Reason: "only jpeg, png and gif images are accepted"}
		}
	}

	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	files := make([]store.Attachment, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return store.ActionInput{}, nil, noop, err
		}
		opened = append(opened, f)
		files = append(files, store.Attachment{Filename: fh.Filename, Content: f})
	}
	return in, files, closeAll, nil
}

// ListActions returns actions newest first. At most one of the status, technician_id and
// machine_report_id query parameters narrows the listing.
func (h *Handler) ListActions(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		actions []model.Action
		err     error
	)
	switch {
	case c.Query("machine_report_id") != "":
		id, perr := strconv.ParseInt(c.Query("machine_report_id"), 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid machine_report_id"})
			return
		}
		actions, err = h.store.Actions.ListByMachineReport(ctx, id)
	case c.Query("technician_id") != "":
		id, perr := strconv.ParseInt(c.Query("technician_id"), 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
			return
		}
		actions, err = h.store.Actions.ListByTechnician(ctx, id)
	case c.Query("status") != "":
		actions, err = h.store.Actions.ListByStatus(ctx, model.ActionStatus(c.Query("status")))
	default:
		actions, err = h.store.Actions.List(ctx)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actions)
}

// GetAction returns one action with its images.
func (h *Handler) GetAction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	action, err := h.store.Actions.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

// CreateAction records an action performed by the caller.
func (h *Handler) CreateAction(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	in, files, done, err := bindAction(c)
	defer done()
	if err != nil {
		h.respondError(c, err)
		return
	}

	action, err := h.store.Actions.Create(c.Request.Context(), actorID, in, files)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, action)
}

// UpdateAction edits an action and reconciles its spare part stock.
func (h *Handler) UpdateAction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	in, files, done, err := bindAction(c)
	defer done()
	if err != nil {
		h.respondError(c, err)
		return
	}

	action, err := h.store.Actions.Update(c.Request.Context(), actorID, id, in, files)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

// DeleteAction removes an action and returns its spare parts to stock.
func (h *Handler) DeleteAction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}

	if err := h.store.Actions.Delete(c.Request.Context(), actorID, id); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Debug("action removed via api", zap.Int64("action_id", id))
	c.JSON(http.StatusOK, gin.H{"success": "Action deleted successfully."})
}
