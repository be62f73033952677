package main

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"github.com/akarpov/telescout/internal/adapters/http/ginserver/middlewares"
)

// correlation stamps every response with a correlation id, reusing the one
// the caller sent when present so traces line up across services.
func correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(middlewares.CorrelationHeader)
		if id == "" {
			id = newCorrelationID()
		}
		c.Writer.Header().Set(middlewares.CorrelationHeader, id)
		c.Next()
	}
}

func newCorrelationID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
