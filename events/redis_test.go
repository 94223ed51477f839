// ABOUTME: Tests for the Redis event publisher
// ABOUTME: Runs publish and listen against miniredis
package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	pub, err := NewRedisPublisher("redis://"+mr.Addr(), "", nil)
	require.NoError(t, err)
	defer pub.Close()

	listener := NewRedisPublisherWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultChannel, nil)
	defer listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- listener.Listen(ctx, rec) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultChannel)[DefaultChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	sent := New(ContactsChanged, "rescored", 1, 2, 3)
	pub.Publish(ctx, sent)

	require.Eventually(t, func() bool { return len(rec.Events()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := rec.Events()[0]
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, sent.Name, got.Name)
	assert.Equal(t, sent.EntityIDs, got.EntityIDs)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestNewRedisPublisherBadURL(t *testing.T) {
	_, err := NewRedisPublisher("not a url", "", nil)
	assert.Error(t, err)
}

func TestRedisPublisherSurvivesServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := NewRedisPublisher("redis://"+mr.Addr(), "", nil)
	require.NoError(t, err)
	defer pub.Close()

	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NotPanics(t, func() { pub.Publish(ctx, New(DealsChanged, "offline")) })
}
