package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	processingKey   = "processing_time_ms"
)

// WithResponseMeta prepares a per-request metadata map that handlers may add
// to and that is echoed in the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Set(processingKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta(c)[cacheHitKey] = hit
}

// ResponseMeta returns the metadata for the current response, stamped with the
// time spent so far. It returns nil when nothing was recorded.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	m := meta(c)
	if started, ok := c.Get(processingKey); ok {
		if t, ok := started.(time.Time); ok {
			m[processingKey] = time.Since(t).Milliseconds()
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func meta(c *gin.Context) map[string]interface{} {
	if value, exists := c.Get(responseMetaKey); exists {
		if typed, ok := value.(map[string]interface{}); ok {
			return typed
		}
	}
	m := make(map[string]interface{})
	c.Set(responseMetaKey, m)
	return m
}
