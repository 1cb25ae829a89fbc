package api

import (
	"net/http"
	"time"

	"netscan/api/models"
	"netscan/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RequestLogger writes one access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Get().Error()
		case status >= http.StatusBadRequest:
			event = logger.Get().Warn()
		default:
			event = logger.Get().Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}

// RateLimit rejects requests beyond the limiter's budget with 429.
// A nil limiter lets everything through.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			logger.Warnf("Rate limit exceeded for %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.Error("Too many scan requests, try again later."))
			return
		}
		c.Next()
	}
}
