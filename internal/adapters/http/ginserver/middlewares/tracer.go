// Package middlewares contains gin middleware the host service mounts.
package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// CorrelationHeader is the response header an upstream component populates
// with the request's correlation identifier.
const CorrelationHeader = "x-correlation-id"

// writeTimeout bounds the background persistence of one record.
const writeTimeout = 10 * time.Second

// Tracer traces every inbound request of the host service. The handler
// chain always runs immediately; the CommunicationRecord is built only once
// the response is finalized and is persisted in the background, so backend
// health never affects the request path. Failure statuses (>= 400) are
// handed to the notifier before the write is scheduled.
func Tracer(microservice string, sink ports.Storage, alerts ports.Notifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		// Armed: capture identity before the handlers run. The correlation
		// id lives in the response header, populated externally, and stays
		// stable for the record's lifetime.
		correlationID := c.Writer.Header().Get(CorrelationHeader)
		method := c.Request.Method
		endpoint := c.Request.URL.Path

		c.Next()

		// Completed: the response is finalized exactly once.
		status := c.Writer.Status()
		statusText := http.StatusText(status)

		if status >= http.StatusBadRequest && alerts != nil {
			// The request context may already be done once the response is
			// finalized; alerts get their own.
			alerts.Notify(context.Background(), status, statusText)
		}

		rec := domain.CommunicationRecord{
			Microservice:  microservice,
			Endpoint:      endpoint,
			Method:        method,
			CorrelationID: correlationID,
			Status:        status,
			StatusText:    statusText,
			Time:          time.Now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := sink.InsertCommunication(ctx, rec); err != nil {
				log.Warn("communication record dropped",
					zap.String("endpoint", rec.Endpoint),
					zap.Int("status", rec.Status),
					zap.Error(err),
				)
			}
		}()
	}
}
