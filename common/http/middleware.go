package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"judgement/common/log"
)

const RequestIDKey = "request_id"

// CorsMiddleware lets browser clients served from another origin call the API.
func CorsMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		if c.GetHeader("Origin") != "" {
			c.SetHeader("Access-Control-Allow-Origin", "*")
			c.SetHeader("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.SetHeader("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		}
		if c.Method() == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
		}
		return nil
	}
}

func RequestIDMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.SetHeader("X-Request-ID", id)
		return nil
	}
}

func LoggerMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		start := time.Now()
		c.Next()
		log.Debug("HTTP %s %s %d from %s in %v [%s]",
			c.Method(), c.Path(), c.Status(), c.ClientIP(), time.Since(start), c.GetString(RequestIDKey))
		return nil
	}
}
