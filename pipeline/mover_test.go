// ABOUTME: Tests for deal stage transitions
// ABOUTME: Covers no-op moves, notifications, and refresh events
package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeals struct {
	deals   map[int64]models.Deal
	patches []models.Patch
	err     error
}

func (f *fakeDeals) GetDeal(_ context.Context, id int64) (*models.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return nil, crmerr.NotFound("GetDeal", "deal", id)
	}
	return &d, nil
}

func (f *fakeDeals) UpdateDeal(_ context.Context, id int64, patch models.Patch) (*models.Deal, error) {
	f.patches = append(f.patches, patch)
	if f.err != nil {
		return nil, f.err
	}
	d := f.deals[id]
	if diff, ok := patch[models.FieldStage]; ok {
		d.Stage = diff.Value.(models.Stage)
	}
	f.deals[id] = d
	return &d, nil
}

type captured struct {
	events []events.Event
}

func (c *captured) Publish(_ context.Context, e events.Event) {
	c.events = append(c.events, e)
}

func setupMover(deals ...models.Deal) (*Mover, *fakeDeals, *notify.Recorder, *captured) {
	store := &fakeDeals{deals: map[int64]models.Deal{}}
	for _, d := range deals {
		store.deals[d.ID] = d
	}
	rec := &notify.Recorder{}
	pub := &captured{}
	return NewMover(store, rec, pub, nil), store, rec, pub
}

func TestTransitionDealAnyDirection(t *testing.T) {
	deal := models.Deal{ID: 1, Title: "Renewal", Stage: models.StageClosedWon, Value: value(900)}
	mover, store, rec, pub := setupMover(deal)

	updated, err := mover.TransitionDeal(context.Background(), &deal, models.StageLead)
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, updated.Stage)
	assert.Equal(t, models.StageClosedWon, deal.Stage, "caller's deal must not change")

	require.Len(t, store.patches, 1)
	assert.Equal(t, []string{models.FieldStage}, store.patches[0].Changed())

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].OK)
	assert.Equal(t, "Deal moved to Lead", msgs[0].Text)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.DealsChanged, pub.events[0].Name)
}

func TestTransitionDealSameStageIsNoop(t *testing.T) {
	deal := models.Deal{ID: 1, Stage: models.StageProposal}
	mover, store, rec, pub := setupMover(deal)

	got, err := mover.TransitionDeal(context.Background(), &deal, models.StageProposal)
	require.NoError(t, err)
	assert.Same(t, &deal, got)
	assert.Empty(t, store.patches)
	assert.Empty(t, rec.Messages())
	assert.Empty(t, pub.events)
}

func TestTransitionDealInvalidStage(t *testing.T) {
	deal := models.Deal{ID: 1, Stage: models.StageLead}
	mover, store, rec, _ := setupMover(deal)

	_, err := mover.TransitionDeal(context.Background(), &deal, "NotAStage")
	require.Error(t, err)
	assert.True(t, crmerr.IsInvalidStage(err))
	assert.Empty(t, store.patches)
	assert.Empty(t, rec.Messages())

	_, err = mover.MoveDealByID(context.Background(), 1, "closed won")
	assert.True(t, crmerr.IsInvalidStage(err))
}

func TestTransitionDealNilDeal(t *testing.T) {
	mover, store, rec, pub := setupMover()

	_, err := mover.TransitionDeal(context.Background(), nil, models.StageQualified)
	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))
	assert.Empty(t, store.patches)
	assert.Empty(t, rec.Messages())
	assert.Empty(t, pub.events)
}

func TestTransitionDealStoreFailure(t *testing.T) {
	deal := models.Deal{ID: 1, Stage: models.StageLead}
	mover, store, rec, pub := setupMover(deal)
	store.err = crmerr.Transient("UpdateDeal", errors.New("database is locked"))

	_, err := mover.TransitionDeal(context.Background(), &deal, models.StageQualified)
	require.Error(t, err)
	assert.True(t, crmerr.IsTransient(err))
	assert.Equal(t, models.StageLead, deal.Stage)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].OK)
	assert.Equal(t, "Failed to update deal stage", msgs[0].Text)
	assert.Empty(t, pub.events)
}

func TestMoveDealByID(t *testing.T) {
	mover, store, _, _ := setupMover(models.Deal{ID: 9, Stage: models.StageQualified})

	updated, err := mover.MoveDealByID(context.Background(), 9, models.StageNegotiation)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, updated.Stage)
	assert.Equal(t, models.StageNegotiation, store.deals[9].Stage)

	_, err = mover.MoveDealByID(context.Background(), 10, models.StageNegotiation)
	assert.True(t, crmerr.IsNotFound(err))
}
