package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pdfprep/assistant"
	processor "pdfprep/process"
	"pdfprep/relevance"
	"pdfprep/testutil"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedStore(maxAge time.Duration, maxSessions int) (*SessionStore, *fakeClock) {
	store := NewSessionStore(func() *assistant.Session {
		extractor := processor.NewClient(processor.NewLedongthucExtractor(), nil)
		return assistant.NewSession(extractor, relevance.NewKeywordSelector(nil), &stubCompleter{answer: "x"}, nil)
	}, maxAge, maxSessions, nil)

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store.now = clock.now
	return store, clock
}

func TestSessionStore_ExpiredSessionDropsDocument(t *testing.T) {
	store, clock := newClockedStore(30*time.Minute, 10)

	id, sess := store.Get("")
	_, err := sess.LoadDocument("doc.pdf", testutil.BuildPDF("A cat sat."))
	require.NoError(t, err)

	clock.advance(31 * time.Minute)

	newID, newSess := store.Get(id)
	require.NotEqual(t, id, newID)
	require.NotSame(t, sess, newSess)
	require.Nil(t, newSess.Document())
	require.Equal(t, 1, store.Len())

	_, err = newSess.Ask(context.Background(), "cat")
	require.ErrorIs(t, err, assistant.ErrMissingInput)
}

func TestSessionStore_AccessKeepsSessionAlive(t *testing.T) {
	store, clock := newClockedStore(30*time.Minute, 10)

	id, sess := store.Get("")
	for i := 0; i < 4; i++ {
		clock.advance(20 * time.Minute)
		gotID, got := store.Get(id)
		require.Equal(t, id, gotID)
		require.Same(t, sess, got)
	}
}

func TestSessionStore_Sweep(t *testing.T) {
	store, clock := newClockedStore(30*time.Minute, 10)

	idle, _ := store.Get("")
	clock.advance(20 * time.Minute)
	active, _ := store.Get("")
	clock.advance(20 * time.Minute)

	require.Equal(t, 1, store.Sweep())
	require.Equal(t, 1, store.Len())

	gotID, _ := store.Get(active)
	require.Equal(t, active, gotID)
	gotID, _ = store.Get(idle)
	require.NotEqual(t, idle, gotID)
}

func TestSessionStore_CapEvictsLeastRecentlyUsed(t *testing.T) {
	store, clock := newClockedStore(time.Hour, 2)

	first, _ := store.Get("")
	clock.advance(time.Minute)
	second, _ := store.Get("")
	clock.advance(time.Minute)
	store.Get(first)
	clock.advance(time.Minute)

	store.Get("")
	require.Equal(t, 2, store.Len())

	gotID, _ := store.Get(first)
	require.Equal(t, first, gotID)
	gotID, _ = store.Get(second)
	require.NotEqual(t, second, gotID)
}

func TestSessionStore_CookielessFloodIsBounded(t *testing.T) {
	store, _ := newClockedStore(time.Hour, 100)

	for i := 0; i < 10000; i++ {
		store.sessionFor(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	require.Equal(t, 100, store.Len())
}

func TestSessionStore_RunStopsWithContext(t *testing.T) {
	store, clock := newClockedStore(time.Minute, 10)
	store.Get("")
	clock.advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
