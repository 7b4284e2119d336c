package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestUsers_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.Users.Create(ctx, entity.NewUser{Email: "ada@example.com", PasswordHash: "h", Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)

	_, err = s.Users.Create(ctx, entity.NewUser{Email: "ADA@example.com", PasswordHash: "h", Name: "Dup"})
	assert.ErrorIs(t, err, repository.ErrEmailDuplicate)

	found, err := s.Users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.Users.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	n, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestContacts_EnrichmentAndLookups(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice, bob := uuid.New(), uuid.New()

	c1, err := s.Contacts.Create(ctx, alice, entity.NewContact{RawText: "Jane Doe, PM at Google Inc."})
	require.NoError(t, err)
	assert.False(t, c1.Enriched)
	assert.Nil(t, c1.Company)
	assert.Nil(t, c1.Confidence)

	_, err = s.Contacts.Create(ctx, bob, entity.NewContact{RawText: "Raw only"})
	require.NoError(t, err)

	_, err = s.Contacts.Create(ctx, alice, entity.NewContact{RawText: "   "})
	assert.Error(t, err)

	updated, err := s.Contacts.Update(ctx, c1.ID, entity.EnrichedData{
		Company:    strPtr("Google Inc."),
		Title:      strPtr("Product Manager"),
		Confidence: 90,
	}.Patch())
	require.NoError(t, err)
	assert.True(t, updated.Enriched)
	require.NotNil(t, updated.CompanyNormalized)
	assert.Equal(t, "google", *updated.CompanyNormalized)

	pool, err := s.Contacts.ListEnrichedExcludingOwner(ctx, bob)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, c1.ID, pool[0].ID)

	own, err := s.Contacts.ListEnrichedExcludingOwner(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, own)

	byCompany, err := s.Contacts.ListByCompany(ctx, "google", bob)
	require.NoError(t, err)
	assert.Len(t, byCompany, 1)

	empty, err := s.Contacts.ListByCompany(ctx, "", bob)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.Contacts.Update(ctx, uuid.New(), entity.ContactPatch{})
	assert.ErrorIs(t, err, repository.ErrContactNotFound)

	totals, err := s.Contacts.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.ContactTotals{Total: 2, Enriched: 1}, totals)
}

func TestContacts_CreateManySkipsBlankRows(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := uuid.New()

	n, err := s.Contacts.CreateMany(ctx, owner, []entity.NewContact{{RawText: "a"}, {RawText: ""}, {RawText: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.Contacts.CountByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := s.Contacts.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].RawText)
}

func TestIntros_TransitionIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := New()
	req, err := s.Intros.Create(ctx, entity.NewIntroRequest{RequesterID: uuid.New(), ConnectorUserID: uuid.New(), TargetCompany: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, entity.IntroPending, req.Status)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Intros.Transition(ctx, req.ID, entity.IntroPending, entity.IntroAccepted); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)

	_, err = s.Intros.Transition(ctx, req.ID, entity.IntroPending, entity.IntroDeclined)
	assert.ErrorIs(t, err, repository.ErrStatusMismatch)

	_, err = s.Intros.Transition(ctx, uuid.New(), entity.IntroPending, entity.IntroAccepted)
	assert.ErrorIs(t, err, repository.ErrIntroRequestNotFound)

	msg := &entity.IntroMessage{Subject: "s", Body: "b"}
	require.NoError(t, s.Intros.SetMessages(ctx, req.ID, entity.IntroMessages{ToTarget: msg}))
	got, err := s.Intros.FindByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Messages.ToTarget)
	assert.Equal(t, "s", got.Messages.ToTarget.Subject)
}

func TestStats_RecomputedOnEveryWrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := uuid.New()

	st, err := s.Stats.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, st.ResponseRate)

	for i := 0; i < 3; i++ {
		_, err = s.Stats.IncrementTotal(ctx, id)
		require.NoError(t, err)
	}
	st, err = s.Stats.IncrementSuccess(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalRequests)
	assert.Equal(t, 1, st.SuccessCount)
	assert.Equal(t, 33, st.ResponseRate)
}

func TestRateLimits_IncrementIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()
	week := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RateLimits.Increment(ctx, user, week)
		}()
	}
	wg.Wait()

	n, err := s.RateLimits.Count(ctx, user, week)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	next, err := s.RateLimits.Count(ctx, user, week.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestNotifications_ReadFlags(t *testing.T) {
	ctx := context.Background()
	s := New()
	user, other := uuid.New(), uuid.New()

	first, err := s.Notifications.Create(ctx, entity.Notification{UserID: user, Type: entity.NotificationIntroRequest, Title: "t", Message: "m"})
	require.NoError(t, err)
	_, err = s.Notifications.Create(ctx, entity.Notification{UserID: user, Type: entity.NotificationIntroAccepted, Title: "t2", Message: "m2"})
	require.NoError(t, err)

	unread, err := s.Notifications.CountUnread(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	assert.ErrorIs(t, s.Notifications.MarkRead(ctx, first.ID, other), repository.ErrNotificationNotFound)
	require.NoError(t, s.Notifications.MarkRead(ctx, first.ID, user))

	changed, err := s.Notifications.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	list, err := s.Notifications.ListByUser(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].Title)
}
