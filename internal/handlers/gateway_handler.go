package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"cache-viewer/internal/cacheclient"
	"cache-viewer/internal/models"
	"cache-viewer/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Intents are the operator actions the gateway forwards.
type Intents interface {
	AddEntry(ctx context.Context, key, value, expiry string) error
	DeleteEntry(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
	ManualRefresh(ctx context.Context) error
	RefreshOne(ctx context.Context, key string) error
}

// SnapshotSource gives read access to the entry store.
type SnapshotSource interface {
	Current() models.Snapshot
	Subscribe(client realtime.Client) (unsubscribe func())
}

// ActivityLister lists journaled intents.
type ActivityLister interface {
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

// AddEntryRequest represents the request payload for adding an entry.
// Expiry is accepted as a JSON number or string and validated like form input.
type AddEntryRequest struct {
	Key    string          `json:"key"`
	Value  string          `json:"value"`
	Expiry json.RawMessage `json:"expiry"`
}

// GatewayHandler exposes the viewer's intents and snapshot over HTTP.
type GatewayHandler struct {
	intents   Intents
	snapshots SnapshotSource
	activity  ActivityLister
	log       zerolog.Logger
}

// NewGatewayHandler creates a GatewayHandler. activity may be nil when the journal is disabled.
func NewGatewayHandler(intents Intents, snapshots SnapshotSource, activity ActivityLister, log zerolog.Logger) *GatewayHandler {
	return &GatewayHandler{
		intents:   intents,
		snapshots: snapshots,
		activity:  activity,
		log:       log,
	}
}

// Snapshot handles GET /api/snapshot
func (h *GatewayHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshots.Current().View())
}

// AddEntry handles POST /api/entries
func (h *GatewayHandler) AddEntry(c *gin.Context) {
	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	expiry, ok := rawExpiry(req.Expiry)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expiry must be a non-negative integer"})
		return
	}
	h.respond(c, h.intents.AddEntry(c.Request.Context(), req.Key, req.Value, expiry))
}

// DeleteEntry handles DELETE /api/entries/:key
func (h *GatewayHandler) DeleteEntry(c *gin.Context) {
	h.respond(c, h.intents.DeleteEntry(c.Request.Context(), c.Param("key")))
}

// ClearAll handles DELETE /api/entries
func (h *GatewayHandler) ClearAll(c *gin.Context) {
	h.respond(c, h.intents.ClearAll(c.Request.Context()))
}

// Refresh handles POST /api/refresh
func (h *GatewayHandler) Refresh(c *gin.Context) {
	h.respond(c, h.intents.ManualRefresh(c.Request.Context()))
}

// RefreshOne handles POST /api/entries/:key/refresh
func (h *GatewayHandler) RefreshOne(c *gin.Context) {
	h.respond(c, h.intents.RefreshOne(c.Request.Context(), c.Param("key")))
}

// Activity handles GET /api/activity
// Optional query param: limit (default 50).
func (h *GatewayHandler) Activity(c *gin.Context) {
	if h.activity == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Activity journal is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	activities, err := h.activity.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity"})
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"data": activities})
}

// respond writes the store's current view on success, or the classified error.
func (h *GatewayHandler) respond(c *gin.Context, err error) {
	if err != nil {
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.snapshots.Current().View())
}

// StatusFor maps an intent error to an HTTP status.
func StatusFor(err error) int {
	kind, ok := cacheclient.KindOf(err)
	if !ok {
		return http.StatusBadGateway
	}
	switch kind {
	case cacheclient.KindValidation:
		return http.StatusBadRequest
	case cacheclient.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// rawExpiry turns a JSON number or string into form text. A missing or null
// expiry becomes empty so it is reported as such.
func rawExpiry(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", true
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}
