package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/utils"
	"github.com/prperemyshlev/identity-sync-service/internal/webhook"
	"github.com/prperemyshlev/identity-sync-service/pkg/observability"
	"go.uber.org/zap"
)

const (
	webhookSuccessMessage      = "Webhook processed successfully."
	webhookSignatureMessage    = "Webhook signature verification failed."
	webhookFailureMessage      = "Webhook processing failed."
	webhookTooLargeMessage     = "Webhook payload too large."
	webhookUnreadableMessage   = "Webhook payload could not be read."
	outcomeRejected            = "rejected"
	outcomeInvalid             = "invalid"
	outcomeError               = "error"
	outcomeDuplicateDelivery   = "duplicate_delivery"
	unknownEventTypeMetricName = "unknown"
)

// DeliveryLedger records processed webhook deliveries
type DeliveryLedger interface {
	IsProcessed(ctx context.Context, deliveryID string) (bool, error)
	MarkProcessed(ctx context.Context, deliveryID string) error
}

// WebhookHandler ingests identity provider webhook deliveries
type WebhookHandler struct {
	authenticator *webhook.Authenticator
	dispatcher    *webhook.Dispatcher
	ledger        DeliveryLedger
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	authenticator *webhook.Authenticator,
	dispatcher *webhook.Dispatcher,
	ledger DeliveryLedger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		authenticator: authenticator,
		dispatcher:    dispatcher,
		ledger:        ledger,
		metrics:       metrics,
		logger:        logger,
	}
}

// HandleClerk authenticates, deduplicates and applies one delivery.
// Nothing is written unless the signature and the payload are valid.
// @Summary Identity provider webhook
// @Tags webhooks
// @Accept json
// @Produce plain
// @Success 200 {string} string
// @Failure 400 {string} string
// @Failure 500 {string} string
// @Router /webhooks/clerk [post]
func (h *WebhookHandler) HandleClerk(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize))
	if err != nil {
		h.metrics.RecordWebhookDelivery(ctx, unknownEventTypeMetricName, outcomeRejected)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, webhookTooLargeMessage)
			return
		}
		h.logger.Warn("Failed to read webhook payload", zap.Error(err))
		c.String(http.StatusBadRequest, webhookUnreadableMessage)
		return
	}

	headers := webhook.HeadersFrom(c.Request.Header)
	logger := h.logger.With(zap.String("svix_id", headers.ID))

	event, err := h.authenticator.Authenticate(payload, headers)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidEvent) {
			logger.Warn("Invalid webhook event", zap.Error(err))
			h.metrics.RecordWebhookDelivery(ctx, unknownEventTypeMetricName, outcomeInvalid)

			var verr *utils.ValidationError
			if errors.As(err, &verr) {
				respondValidation(c, verr)
				return
			}
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}

		logger.Warn("Webhook authentication failed", zap.Error(err))
		h.metrics.RecordWebhookDelivery(ctx, unknownEventTypeMetricName, outcomeRejected)
		c.String(http.StatusBadRequest, webhookSignatureMessage)
		return
	}

	eventType := event.Type()
	logger = logger.With(zap.String("event_type", eventType))

	if h.alreadyProcessed(ctx, logger, headers.ID) {
		logger.Info("Webhook delivery already processed")
		h.metrics.RecordWebhookDelivery(ctx, metricEventType(eventType), outcomeDuplicateDelivery)
		c.String(http.StatusOK, webhookSuccessMessage)
		return
	}

	outcome, err := h.dispatcher.Dispatch(ctx, event)
	if err != nil {
		logger.Error("Webhook processing failed", zap.Error(err))
		h.metrics.RecordWebhookDelivery(ctx, metricEventType(eventType), outcomeError)
		c.String(http.StatusInternalServerError, webhookFailureMessage)
		return
	}

	h.markProcessed(ctx, logger, headers.ID)

	logger.Info("Webhook processed", zap.String("outcome", string(outcome)))
	h.metrics.RecordWebhookDelivery(ctx, metricEventType(eventType), string(outcome))
	c.String(http.StatusOK, webhookSuccessMessage)
}

func (h *WebhookHandler) alreadyProcessed(ctx context.Context, logger *zap.Logger, deliveryID string) bool {
	if h.ledger == nil {
		return false
	}
	seen, err := h.ledger.IsProcessed(ctx, deliveryID)
	if err != nil {
		logger.Warn("Delivery ledger unavailable", zap.Error(err))
		return false
	}
	return seen
}

func (h *WebhookHandler) markProcessed(ctx context.Context, logger *zap.Logger, deliveryID string) {
	if h.ledger == nil {
		return
	}
	if err := h.ledger.MarkProcessed(ctx, deliveryID); err != nil {
		logger.Warn("Failed to record webhook delivery", zap.Error(err))
	}
}

// metricEventType keeps provider-defined type strings out of metric labels
func metricEventType(eventType string) string {
	switch eventType {
	case webhook.TypeUserCreated, webhook.TypeUserUpdated, webhook.TypeUserDeleted:
		return eventType
	default:
		return string(domain.SyncIgnored)
	}
}
