package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_Build(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	report := NewReportService(f.store.Users, f.store.Contacts, f.store.Intros, f.store.Stats)

	empty, err := report.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{}, *empty)

	alice := f.user(t, "Alice Martin")
	bob := f.user(t, "Bob Smith")
	carol := f.user(t, "Carol Jones")
	f.user(t, "Dave Brown")
	f.rawContacts(t, alice.ID, 5)
	f.enriched(t, bob.ID, profile("Acme", "CTO", 80))

	// bob: 2 asked, 1 completed (50). carol: 1 asked, 0 completed (0).
	first, err := f.intros.Create(ctx, alice.ID, introReq(bob.ID, "Acme"))
	require.NoError(t, err)
	_, err = f.intros.Create(ctx, alice.ID, introReq(bob.ID, "Globex"))
	require.NoError(t, err)
	declined, err := f.intros.Create(ctx, alice.ID, introReq(carol.ID, "Initech"))
	require.NoError(t, err)

	_, err = f.intros.Respond(ctx, first.Request.ID, bob.ID, "accept")
	require.NoError(t, err)
	_, err = f.intros.Complete(ctx, first.Request.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.intros.Respond(ctx, declined.Request.ID, carol.ID, "decline")
	require.NoError(t, err)

	got, err := report.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{
		TotalUsers:         4,
		TotalContacts:      6,
		EnrichedContacts:   1,
		TotalIntros:        3,
		ActiveIntros:       1,
		CompletedIntros:    1,
		DeclinedIntros:     1,
		SuccessRate:        33,
		ActiveConnectors:   2,
		MeanResponseRate:   25,
		MedianResponseRate: 25,
	}, *got)
}
