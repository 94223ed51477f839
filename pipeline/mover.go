// ABOUTME: Deal stage transitions through the record store
// ABOUTME: Rejects unknown stages, skips no-op moves, and notifies on outcome
package pipeline

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/notify"
	"go.uber.org/zap"
)

// DealStore is the part of the record store that stage moves need.
type DealStore interface {
	GetDeal(ctx context.Context, id int64) (*models.Deal, error)
	UpdateDeal(ctx context.Context, id int64, patch models.Patch) (*models.Deal, error)
}

// Mover moves deals between stages. Any stage may be reached from any other.
type Mover struct {
	store     DealStore
	notifier  notify.Notifier
	publisher events.Publisher
	logger    *zap.Logger
}

func NewMover(store DealStore, notifier notify.Notifier, publisher events.Publisher, logger *zap.Logger) *Mover {
	if notifier == nil {
		notifier = notify.Nop
	}
	if publisher == nil {
		publisher = events.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mover{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger.Named("pipeline"),
	}
}

// TransitionDeal stores deal with only its stage changed to target and returns the
// stored record. The passed deal is never modified. Moving a deal to the stage it
// is already in returns it as is without touching the store.
func (m *Mover) TransitionDeal(ctx context.Context, deal *models.Deal, target models.Stage) (*models.Deal, error) {
	if deal == nil {
		return nil, crmerr.Validation("TransitionDeal", crmerr.FieldError{Field: "deal", Message: "is required"})
	}
	if !target.Valid() {
		return nil, crmerr.InvalidStage(string(target))
	}
	if deal.Stage == target {
		return deal, nil
	}

	updated, err := m.store.UpdateDeal(ctx, deal.ID, models.NewPatch().Set(models.FieldStage, target))
	if err != nil {
		m.logger.Warn("failed to move deal",
			zap.Int64("deal_id", deal.ID),
			zap.String("from", string(deal.Stage)),
			zap.String("to", string(target)),
			zap.Error(err))
		m.notifier.Failure(ctx, "Failed to update deal stage", err)
		return nil, err
	}

	m.logger.Debug("deal moved",
		zap.Int64("deal_id", deal.ID),
		zap.String("from", string(deal.Stage)),
		zap.String("to", string(target)))
	m.notifier.Success(ctx, fmt.Sprintf("Deal moved to %s", target))
	m.publisher.Publish(ctx, events.New(events.DealsChanged, "deal stage changed", deal.ID))
	return updated, nil
}

// MoveDealByID loads the deal and transitions it.
func (m *Mover) MoveDealByID(ctx context.Context, id int64, target models.Stage) (*models.Deal, error) {
	if !target.Valid() {
		return nil, crmerr.InvalidStage(string(target))
	}
	deal, err := m.store.GetDeal(ctx, id)
	if err != nil {
		m.notifier.Failure(ctx, "Failed to update deal stage", err)
		return nil, err
	}
	return m.TransitionDeal(ctx, deal, target)
}
