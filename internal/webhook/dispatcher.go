package webhook

import (
	"context"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"go.uber.org/zap"
)

// Synchronizer applies provider user lifecycle changes to local state
type Synchronizer interface {
	CreateFromProvider(ctx context.Context, oauthID, email string, username *string) (domain.SyncOutcome, error)
	UpdateFromProvider(ctx context.Context, oauthID string, username *string) (domain.SyncOutcome, error)
	DeleteFromProvider(ctx context.Context, oauthID string) (domain.SyncOutcome, error)
}

// Dispatcher routes parsed events to the synchronizer
type Dispatcher struct {
	sync   Synchronizer
	logger *zap.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(sync Synchronizer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sync: sync, logger: logger}
}

// Dispatch applies event. Event types without a handler are acknowledged as ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) (domain.SyncOutcome, error) {
	switch e := event.(type) {
	case UserCreated:
		return d.sync.CreateFromProvider(ctx, e.OAuthID, e.Email, e.Username)
	case UserUpdated:
		return d.sync.UpdateFromProvider(ctx, e.OAuthID, e.Username)
	case UserDeleted:
		return d.sync.DeleteFromProvider(ctx, e.OAuthID)
	case Unknown:
		d.logger.Info("Ignoring unhandled webhook event", zap.String("event_type", e.EventType))
		return domain.SyncIgnored, nil
	default:
		return domain.SyncIgnored, nil
	}
}
