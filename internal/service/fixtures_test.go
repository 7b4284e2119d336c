package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/ai"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/repository/memstore"
)

type parserFunc func(ctx context.Context, query string) entity.SearchIntent

func (f parserFunc) Analyze(ctx context.Context, query string) entity.SearchIntent {
	return f(ctx, query)
}

func fixedIntent(intent entity.SearchIntent) parserFunc {
	return func(context.Context, string) entity.SearchIntent { return intent }
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEmitter) last() notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return notify.Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *recordingEmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// clock is a settable time source shared by the store and services.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	store  *memstore.Store
	clock  *clock
	events *recordingEmitter
	intros *IntroService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// Wednesday.
	clk := &clock{now: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}
	store := memstore.New(memstore.WithClock(clk.Now))
	events := &recordingEmitter{}

	intros := NewIntroService(IntroDeps{
		Intros:   store.Intros,
		Contacts: store.Contacts,
		Users:    store.Users,
		Stats:    store.Stats,
		Quota:    store.RateLimits,
		Messages: ai.NewMessageWriter(nil, nil),
		Emitter:  events,
	}, IntroPolicy{}, zap.NewNop(), WithIntroClock(clk.Now))

	return &fixture{store: store, clock: clk, events: events, intros: intros}
}

func (f *fixture) search(parser ai.IntentParser) *SearchService {
	return NewSearchService(f.store.Contacts, f.store.Users, f.store.Stats, parser, 0, zap.NewNop())
}

func (f *fixture) user(t *testing.T, name string) *entity.User {
	t.Helper()
	u, err := f.store.Users.Create(context.Background(), entity.NewUser{
		Email: uuid.NewString() + "@example.com",
		Name:  name,
	})
	require.NoError(t, err)
	return u
}

// rawContacts adds n unenriched contacts to the owner's network.
func (f *fixture) rawContacts(t *testing.T, owner uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.store.Contacts.Create(context.Background(), owner, entity.NewContact{RawText: "someone"})
		require.NoError(t, err)
	}
}

// enriched adds a contact and applies the enrichment data to it.
func (f *fixture) enriched(t *testing.T, owner uuid.UUID, data entity.EnrichedData) *entity.Contact {
	t.Helper()
	c, err := f.store.Contacts.Create(context.Background(), owner, entity.NewContact{RawText: "raw profile"})
	require.NoError(t, err)
	updated, err := f.store.Contacts.Update(context.Background(), c.ID, data.Patch())
	require.NoError(t, err)
	return updated
}

func profile(company, title string, confidence int) entity.EnrichedData {
	return entity.EnrichedData{
		Name:       strPtr("Person at " + company),
		Company:    strPtr(company),
		Title:      strPtr(title),
		Confidence: confidence,
	}
}
