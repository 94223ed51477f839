// ABOUTME: Scoring engine that persists lead scores through the record store
// ABOUTME: Single and batch recalculation with bounded concurrency and notifications
package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/notify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultConcurrency = 5
	MaxConcurrency     = 10
)

// ContactStore is the part of the record store the engine needs.
type ContactStore interface {
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	ListContacts(ctx context.Context, filter db.ContactFilter) ([]models.Contact, error)
	CreateContact(ctx context.Context, contact *models.Contact) error
	UpdateContact(ctx context.Context, id int64, patch models.Patch) (*models.Contact, error)
}

// Engine applies lead scores to stored contacts. It holds no scoring config;
// every call takes one.
type Engine struct {
	store       ContactStore
	notifier    notify.Notifier
	publisher   events.Publisher
	logger      *zap.Logger
	concurrency int
	limiter     *rate.Limiter
}

type Option func(*Engine)

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency sets how many score updates run at once during a batch.
// Values are clamped to 1..MaxConcurrency.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = clampConcurrency(n)
	}
}

// WithRateLimit caps batch updates per second. Zero or less means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(e *Engine) {
		if perSecond <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func NewEngine(store ContactStore, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		notifier:    notify.Nop,
		publisher:   events.Nop,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("scoring")
	return e
}

func clampConcurrency(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxConcurrency:
		return MaxConcurrency
	}
	return n
}

func scorePatch(score int) models.Patch {
	return models.NewPatch().Set(models.FieldLeadScore, score)
}

// RecalculateScore fetches one contact, scores it, and stores only the score.
func (e *Engine) RecalculateScore(ctx context.Context, id int64, cfg *models.ScoringConfig) (*models.Contact, error) {
	contact, err := e.store.GetContact(ctx, id)
	if err != nil {
		e.notifier.Failure(ctx, "Failed to recalculate lead score", err)
		return nil, err
	}

	score := CalculateLeadScore(*contact, cfg)
	updated, err := e.store.UpdateContact(ctx, id, scorePatch(score))
	if err != nil {
		e.notifier.Failure(ctx, "Failed to recalculate lead score", err)
		return nil, err
	}

	e.logger.Debug("lead score recalculated", zap.Int64("contact_id", id), zap.Int("score", score))
	e.notifier.Success(ctx, fmt.Sprintf("Lead score for %s is now %d", updated.Name, score))
	e.publisher.Publish(ctx, events.New(events.ContactsChanged, "lead score recalculated", id))
	return updated, nil
}

// BatchResult is the per-contact outcome of a full recalculation.
type BatchResult struct {
	RunID    uuid.UUID
	Results  map[int64]error
	Updated  int
	Failed   int
	Duration time.Duration
}

// Success reports whether every contact was updated.
func (r *BatchResult) Success() bool {
	return r.Failed == 0
}

// FailedIDs returns the ids whose update failed.
func (r *BatchResult) FailedIDs() []int64 {
	var ids []int64
	for id, err := range r.Results {
		if err != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// RecalculateAllScores rescores every contact. It returns true once the pass has
// completed, even if some updates failed; failures are logged and reported through
// the notifier. An error is returned only when contacts cannot be listed or ctx ends.
func (e *Engine) RecalculateAllScores(ctx context.Context, cfg *models.ScoringConfig) (bool, error) {
	if _, err := e.RecalculateAllScoresDetailed(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// RecalculateAllScoresDetailed is RecalculateAllScores with the per-contact result.
// Exactly one update is issued per listed contact.
func (e *Engine) RecalculateAllScoresDetailed(ctx context.Context, cfg *models.ScoringConfig) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{
		RunID:   uuid.New(),
		Results: make(map[int64]error),
	}
	logger := e.logger.With(zap.String("run_id", result.RunID.String()))

	contacts, err := e.store.ListContacts(ctx, db.ContactFilter{})
	if err != nil {
		e.notifier.Failure(ctx, "Failed to recalculate scores", err)
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	var (
		mu      sync.Mutex
		updated []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, c := range contacts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if e.limiter != nil {
				if err := e.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			score := CalculateLeadScore(c, cfg)
			_, err := e.store.UpdateContact(gctx, c.ID, scorePatch(score))

			mu.Lock()
			defer mu.Unlock()
			result.Results[c.ID] = err
			if err != nil {
				result.Failed++
				logger.Warn("failed to update lead score", zap.Int64("contact_id", c.ID), zap.Error(err))
				return nil
			}
			result.Updated++
			updated = append(updated, c.ID)
			return nil
		})
	}

	waitErr := g.Wait()
	result.Duration = time.Since(start)
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		e.notifier.Failure(ctx, "Failed to recalculate scores", waitErr)
		return result, fmt.Errorf("lead score recalculation interrupted: %w", waitErr)
	}

	logger.Info("lead scores recalculated",
		zap.Int("contacts", len(contacts)),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration))

	msg := fmt.Sprintf("Lead scores recalculated: %d updated, %d failed", result.Updated, result.Failed)
	if result.Failed > 0 {
		e.notifier.Failure(ctx, msg, fmt.Errorf("%d of %d updates failed", result.Failed, len(contacts)))
	} else {
		e.notifier.Success(ctx, msg)
	}
	if len(updated) > 0 {
		e.publisher.Publish(ctx, events.New(events.ContactsChanged, "lead scores recalculated", updated...))
	}
	return result, nil
}

// CreateContact stores a new contact with its lead score already computed.
func (e *Engine) CreateContact(ctx context.Context, contact *models.Contact, cfg *models.ScoringConfig) error {
	if contact.Type == "" {
		contact.Type = models.ContactTypeLead
	}
	score := CalculateLeadScore(*contact, cfg)
	contact.LeadScore = &score

	if err := e.store.CreateContact(ctx, contact); err != nil {
		e.notifier.Failure(ctx, "Failed to create contact", err)
		return err
	}

	e.notifier.Success(ctx, fmt.Sprintf("Contact %s created", contact.Name))
	e.publisher.Publish(ctx, events.New(events.ContactsChanged, "contact created", contact.ID))
	return nil
}

// UpdateContact applies a patch and, when a scoring field changed, stores the
// recomputed score as well. The lead score itself cannot be patched here.
func (e *Engine) UpdateContact(ctx context.Context, id int64, patch models.Patch, cfg *models.ScoringConfig) (*models.Contact, error) {
	if patch.Touches(models.FieldLeadScore) {
		err := crmerr.Validation("UpdateContact", crmerr.FieldError{
			Field:   models.FieldLeadScore,
			Message: "is computed from the scoring fields; use recalculate instead",
		})
		e.notifier.Failure(ctx, "Failed to update contact", err)
		return nil, err
	}

	updated, err := e.store.UpdateContact(ctx, id, patch)
	if err != nil {
		e.notifier.Failure(ctx, "Failed to update contact", err)
		return nil, err
	}

	if patch.Touches(models.ScoringFields...) {
		score := CalculateLeadScore(*updated, cfg)
		if updated.LeadScore == nil || *updated.LeadScore != score {
			updated, err = e.store.UpdateContact(ctx, id, scorePatch(score))
			if err != nil {
				e.notifier.Failure(ctx, "Failed to update lead score", err)
				return nil, err
			}
		}
	}

	e.notifier.Success(ctx, fmt.Sprintf("Contact %s updated", updated.Name))
	e.publisher.Publish(ctx, events.New(events.ContactsChanged, "contact updated", id))
	return updated, nil
}
