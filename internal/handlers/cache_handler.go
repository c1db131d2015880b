package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cache-viewer/internal/cache"

	"github.com/gin-gonic/gin"
)

// MinTTL is the smallest expiry, in seconds, the cache service accepts.
const MinTTL = 1

// SetCacheRequest represents the request payload for creating a cache entry
type SetCacheRequest struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Expiry int64  `json:"expiry"`
}

// CacheHandler serves the remote cache API over a TTL cache.
type CacheHandler struct {
	cache  cache.Cache
	maxTTL int64
}

// NewCacheHandler creates a CacheHandler. maxTTL is the largest accepted expiry in seconds.
func NewCacheHandler(c cache.Cache, maxTTL int64) *CacheHandler {
	return &CacheHandler{cache: c, maxTTL: maxTTL}
}

/*
*
GetAll handles GET /api/cache
Returns every live entry with its remaining TTL, sorted by key.
An empty cache reports "data": null.
*/
func (h *CacheHandler) GetAll(c *gin.Context) {
	entries := h.cache.Entries()
	if len(entries) == 0 {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Get handles GET /api/cache/:key
func (h *CacheHandler) Get(c *gin.Context) {
	key := c.Param("key")
	entry, ok := h.cache.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Unable to retrieve data for the provided key.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// Set handles POST /api/cache
func (h *CacheHandler) Set(c *gin.Context) {
	var req SetCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	if msg := h.validate(req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	h.cache.Set(req.Key, req.Value, time.Duration(req.Expiry)*time.Second)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Delete handles DELETE /api/cache/:key
func (h *CacheHandler) Delete(c *gin.Context) {
	key := c.Param("key")
	if !h.cache.Delete(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("key not found: %s", key)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Clear handles DELETE /api/cache
func (h *CacheHandler) Clear(c *gin.Context) {
	h.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *CacheHandler) validate(req SetCacheRequest) string {
	if req.Key == "" {
		return "Key cannot be empty"
	}
	if req.Value == "" {
		return "Value cannot be empty"
	}
	if req.Expiry < MinTTL || req.Expiry > h.maxTTL {
		return fmt.Sprintf("Expiry must be in range %d - %d", MinTTL, h.maxTTL)
	}
	return ""
}
