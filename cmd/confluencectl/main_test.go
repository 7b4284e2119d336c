package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/app"
	"github.com/Helmus101/confluence/internal/auth"
	"github.com/Helmus101/confluence/internal/config"
	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/repository/memstore"
	"github.com/Helmus101/confluence/internal/service"
)

func testRuntime(t *testing.T, store *memstore.Store) *runtime {
	t.Helper()
	cfg := &config.Config{Store: "memory", JWTSecret: "cli-secret", TokenTTL: time.Hour, MigrationsPath: "migrations"}
	rt := &runtime{cfg: cfg, logger: zap.NewNop()}
	rt.open = func(context.Context) (*app.App, error) {
		a := &app.App{Config: cfg, Logger: rt.logger, JWT: auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)}
		a.Wire(app.MemoryRepositories(store), nil, notify.NewStoreEmitter(store.Notifications))
		return a, nil
	}
	return rt
}

func execute(t *testing.T, rt *runtime, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(rt)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedUser(t *testing.T, store *memstore.Store) uuid.UUID {
	t.Helper()
	user, err := store.Users.Create(context.Background(), entity.NewUser{Email: "ops@example.com", PasswordHash: "x", Name: "Ops User", Role: entity.RoleUser})
	require.NoError(t, err)
	return user.ID
}

func TestReportCmd(t *testing.T) {
	store := memstore.New()
	owner := seedUser(t, store)
	_, err := store.Contacts.Create(context.Background(), owner, entity.NewContact{RawText: "Jane, Acme"})
	require.NoError(t, err)

	out, err := execute(t, testRuntime(t, store), "report")
	require.NoError(t, err)

	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.TotalUsers)
	assert.Equal(t, 1, report.TotalContacts)
}

func TestEnrichCmd(t *testing.T) {
	store := memstore.New()
	owner := seedUser(t, store)
	_, err := store.Contacts.Create(context.Background(), owner, entity.NewContact{RawText: "Jane Doe, Engineer at Acme"})
	require.NoError(t, err)
	rt := testRuntime(t, store)

	_, err = execute(t, rt, "enrich")
	require.Error(t, err, "--user is required")

	_, err = execute(t, rt, "enrich", "--user", "nope")
	require.ErrorContains(t, err, "invalid --user")

	_, err = execute(t, rt, "enrich", "--user", uuid.NewString())
	require.ErrorIs(t, err, service.ErrNotFound)

	out, err := execute(t, rt, "enrich", "--user", owner.String())
	require.NoError(t, err)
	var res dto.EnrichResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Enriched+res.Failed)

	contacts, err := store.Contacts.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.True(t, contacts[0].Enriched)
}

func TestImportCmd(t *testing.T) {
	store := memstore.New()
	owner := seedUser(t, store)
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,company\nJane,Acme\nJohn,Globex\n"), 0o600))

	out, err := execute(t, testRuntime(t, store), "import", "--user", owner.String(), path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"imported":2}`, out)

	_, err = execute(t, testRuntime(t, store), "import", "--user", owner.String(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestMigrateCmd_RequiresPostgres(t *testing.T) {
	_, err := execute(t, testRuntime(t, memstore.New()), "migrate")
	require.ErrorContains(t, err, "STORE=postgres")
}
