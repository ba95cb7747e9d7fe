package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const maxItems = 10_000

func newRouter(maxDelay time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/delay/:ms", handleDelay(maxDelay))
	r.GET("/status/:code", handleStatus)
	r.GET("/items", handleItems)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "path": c.Request.URL.Path})
	})
	return r
}

// handleDelay holds the response for the requested number of milliseconds,
// capped at maxDelay, so concurrency effects are visible in trial times.
func handleDelay(maxDelay time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ms, err := strconv.Atoi(c.Param("ms"))
		if err != nil || ms < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delay must be a non-negative integer"})
			return
		}
		delay := min(time.Duration(ms)*time.Millisecond, maxDelay)

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "delay_ms": delay.Milliseconds()})
	}
}

func handleStatus(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 200 || code > 599 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be between 200 and 599"})
		return
	}
	c.JSON(code, gin.H{"status": code})
}

func handleItems(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "10"))
	if err != nil || n < 0 || n > maxItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be between 0 and 10000"})
		return
	}
	items := make([]gin.H, n)
	for i := range items {
		items[i] = gin.H{"id": i + 1}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": n})
}
