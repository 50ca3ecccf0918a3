package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolbox/internal/livetimer"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "toolbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func finishedTimer(t *testing.T, start time.Time, label string) *livetimer.Timer {
	t.Helper()
	clock := &stepClock{now: start}
	timer := livetimer.New(livetimer.WithClock(clock), livetimer.WithLabel(label))
	require.NoError(t, timer.Start())
	clock.Advance(10 * time.Second)
	require.NoError(t, timer.Pause())
	clock.Advance(5 * time.Second)
	require.NoError(t, timer.Unpause())
	clock.Advance(time.Second)
	require.NoError(t, timer.Stop())
	return timer
}

func TestOpen(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, "toolbox.db", filepath.Base(s.Path()))
}

func TestReopenKeepsSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolbox.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	timer := finishedTimer(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), "reopen")
	require.NoError(t, s.SaveTimer(ctx, SessionFromTimer(timer)))
	require.NoError(t, s.Close())

	// Migrations are already applied; opening again must not fail or wipe data.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadTimer(ctx, timer.ID().String())
	require.NoError(t, err)
	assert.Equal(t, "reopen", got.Label)
}

func TestSaveAndLoadTimer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	timer := finishedTimer(t, time.Date(2024, 5, 1, 8, 0, 0, 123, time.UTC), "deep work")
	sess := SessionFromTimer(timer)
	assert.Equal(t, 11*time.Second, sess.Elapsed)
	assert.Equal(t, 5*time.Second, sess.TotalPause)
	assert.Equal(t, "stopped", sess.State)

	require.NoError(t, s.SaveTimer(ctx, sess))

	got, err := s.LoadTimer(ctx, sess.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(sess, got); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, len(sess.Entries), got.History().Len())
}

func TestSaveTimerReplacesEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	clock := &stepClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	timer := livetimer.New(livetimer.WithClock(clock))
	require.NoError(t, timer.Start())
	require.NoError(t, s.SaveTimer(ctx, SessionFromTimer(timer)))

	clock.Advance(time.Minute)
	require.NoError(t, timer.Stop())
	require.NoError(t, s.SaveTimer(ctx, SessionFromTimer(timer)))

	got, err := s.LoadTimer(ctx, timer.ID().String())
	require.NoError(t, err)
	assert.Len(t, got.Entries, 3)
	assert.Equal(t, "stopped", got.State)
	assert.Equal(t, time.Minute, got.Elapsed)
}

func TestListTimersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, label := range []string{"first", "second", "third"} {
		timer := finishedTimer(t, base.Add(time.Duration(i)*time.Hour), label)
		require.NoError(t, s.SaveTimer(ctx, SessionFromTimer(timer)))
	}

	all, err := s.ListTimers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Label)
	assert.Equal(t, "first", all[2].Label)
	assert.Equal(t, 5, all[0].EntryCount)
	assert.Equal(t, 11*time.Second, all[0].Elapsed)

	two, err := s.ListTimers(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestLoadTimerNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadTimer(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteTimer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := SessionFromTimer(finishedTimer(t, time.Now(), "gone"))
	require.NoError(t, s.SaveTimer(ctx, sess))
	require.NoError(t, s.DeleteTimer(ctx, sess.ID))

	_, err := s.LoadTimer(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTimer(ctx, sess.ID), ErrNotFound)

	list, err := s.ListTimers(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolveID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := Session{ID: "abc-111", CreatedAt: time.Now(), State: "stopped"}
	b := Session{ID: "abd-222", CreatedAt: time.Now(), State: "stopped"}
	require.NoError(t, s.SaveTimer(ctx, a))
	require.NoError(t, s.SaveTimer(ctx, b))

	id, err := s.ResolveID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-111", id)

	_, err = s.ResolveID(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = s.ResolveID(ctx, "zz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveIDRejectsEmptyPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveTimer(ctx, Session{ID: "only-one", CreatedAt: time.Now(), State: "stopped"}))

	for _, prefix := range []string{"", "   "} {
		_, err := s.ResolveID(ctx, prefix)
		assert.ErrorIs(t, err, ErrEmptyID, "prefix %q", prefix)
	}
}
