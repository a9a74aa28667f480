package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// Metrics holds the service's domain counters. A nil *Metrics records nothing.
type Metrics struct {
	webhookDeliveries metric.Int64Counter
	authRejections    metric.Int64Counter
}

// NewMetrics registers the domain counters on provider
func NewMetrics(provider metric.MeterProvider, scope string) (*Metrics, error) {
	meter := provider.Meter(scope)

	deliveries, err := meter.Int64Counter("webhook_deliveries_total",
		metric.WithDescription("Webhook deliveries by event type and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook deliveries counter: %w", err)
	}

	rejections, err := meter.Int64Counter("auth_rejections_total",
		metric.WithDescription("Requests rejected by the bearer token gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth rejections counter: %w", err)
	}

	return &Metrics{
		webhookDeliveries: deliveries,
		authRejections:    rejections,
	}, nil
}

// RecordWebhookDelivery counts one webhook delivery
func (m *Metrics) RecordWebhookDelivery(ctx context.Context, eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome),
	))
}

// RecordAuthRejection counts one rejected request
func (m *Metrics) RecordAuthRejection(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.authRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
