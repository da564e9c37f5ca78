package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/internal/dispatch"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
)

type engineAPI interface {
	Create(ctx context.Context, tenantID int64, req broadcast.CreateBroadcastReq) (*broadcast.Broadcast, error)
	Get(ctx context.Context, tenantID, id int64) (*broadcast.Broadcast, error)
	List(ctx context.Context, tenantID int64, f broadcast.ListFilter) ([]broadcast.Broadcast, error)
	Update(ctx context.Context, tenantID, id int64, req broadcast.UpdateBroadcastReq) (*broadcast.Broadcast, error)
	Schedule(ctx context.Context, tenantID, id int64, at time.Time) (*broadcast.Broadcast, error)
	Cancel(ctx context.Context, tenantID, id int64) (*broadcast.Broadcast, error)
	Delete(ctx context.Context, tenantID, id int64) error
	Dispatch(ctx context.Context, tenantID, broadcastID int64) (broadcast.DispatchResult, error)
	Statistics(ctx context.Context, tenantID int64) (broadcast.Statistics, error)
	CheckMessaging(ctx context.Context, tenantID int64) (bool, error)
}

type Handlers struct {
	Engine engineAPI
}

func NewHandlers(e *dispatch.Engine) *Handlers {
	return &Handlers{Engine: e}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// writeError maps domain error kinds onto status codes.
func writeError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, broadcast.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, broadcast.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, broadcast.ErrInvalidArgument), errors.Is(err, broadcast.ErrMessagingNotConfigured):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logx.L().Errorw(op+"_error", "rid", c.GetString(ctxRequestID), "tenant_id", tenantID(c), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) CreateBroadcast(c *gin.Context) {
	var req broadcast.CreateBroadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	b, err := h.Engine.Create(ctx, tenantID(c), req)
	if err != nil {
		writeError(c, "create_broadcast", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handlers) ListBroadcasts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be >= 0"})
		return
	}

	f := broadcast.ListFilter{Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		st, err := broadcast.ParseStatus(raw)
		if err != nil {
			writeError(c, "list_broadcasts", err)
			return
		}
		f.Status = st
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.Engine.List(ctx, tenantID(c), f)
	if err != nil {
		writeError(c, "list_broadcasts", err)
		return
	}
	c.JSON(http.StatusOK, broadcast.ListBroadcastsResp{Items: items, Limit: limit, Offset: offset})
}

func (h *Handlers) GetBroadcast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Get(ctx, tenantID(c), id)
	if err != nil {
		writeError(c, "get_broadcast", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) UpdateBroadcast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req broadcast.UpdateBroadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Update(ctx, tenantID(c), id, req)
	if err != nil {
		writeError(c, "update_broadcast", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) DeleteBroadcast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Engine.Delete(ctx, tenantID(c), id); err != nil {
		writeError(c, "delete_broadcast", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendBroadcast dispatches synchronously. The dispatch is detached from the
// request so a dropped client does not cut the fan-out short.
func (h *Handlers) SendBroadcast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.Engine.Dispatch(context.WithoutCancel(c.Request.Context()), tenantID(c), id)
	if err != nil {
		writeError(c, "send_broadcast", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) ScheduleBroadcast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req broadcast.ScheduleBroadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Schedule(ctx, tenantID(c), id, req.ScheduledAt)
	if err != nil {
		writeError(c, "schedule_broadcast", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) CancelBroadcast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Cancel(ctx, tenantID(c), id)
	if err != nil {
		writeError(c, "cancel_broadcast", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) Statistics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	st, err := h.Engine.Statistics(ctx, tenantID(c))
	if err != nil {
		writeError(c, "statistics", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handlers) ValidateWhatsApp(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	valid, err := h.Engine.CheckMessaging(ctx, tenantID(c))
	if err != nil {
		writeError(c, "validate_whatsapp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
