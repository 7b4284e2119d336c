package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/app"
	"github.com/Helmus101/confluence/internal/auth"
	"github.com/Helmus101/confluence/internal/config"
	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/handler"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/repository/memstore"
)

type server struct {
	e     *echo.Echo
	store *memstore.Store
	app   *app.App
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   "router-secret",
		TokenTTL:    time.Hour,
		RateLimitAI: config.RateLimitConfig{Requests: 100, Interval: time.Minute},
	}
	store := memstore.New()
	a := &app.App{Config: cfg, Logger: zap.NewNop()}
	a.JWT = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	a.Wire(app.MemoryRepositories(store), nil, notify.NewStoreEmitter(store.Notifications))

	e := echo.New()
	Register(e, cfg, a.JWT, Handlers{
		Auth:          handler.NewAuthHandler(a.Auth, a.Users),
		Contacts:      handler.NewContactHandler(a.Contacts),
		Search:        handler.NewSearchHandler(a.Search),
		Intros:        handler.NewIntroHandler(a.Intros),
		Notifications: handler.NewNotificationHandler(a.Notifications),
		Admin:         handler.NewAdminHandler(a.Users, a.Reports),
	})
	return &server{e: e, store: store, app: a}
}

func (s *server) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) signup(t *testing.T, email, name string) dto.LoginResponse {
	t.Helper()
	rec := s.request(t, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{Email: email, Password: "password123", Name: name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var payload struct {
		Data dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Data
}

func TestRegister_Health(t *testing.T) {
	s := newServer(t)
	rec := s.request(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_SecuredRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/me", "/api/contacts", "/api/search?q=acme", "/api/intros/sent", "/api/notifications", "/api/admin/stats"} {
		rec := s.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegister_AdminRequiresRole(t *testing.T) {
	s := newServer(t)
	user := s.signup(t, "user@example.com", "Regular User")

	rec := s.request(t, http.MethodGet, "/api/admin/stats", user.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := s.app.JWT.GenerateToken(uuid.MustParse(user.User.ID), user.User.Email, entity.RoleAdmin)
	require.NoError(t, err)
	rec = s.request(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Full round trip: search finds a connector, the request is accepted and completed.
func TestRegister_IntroductionFlow(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	alice := s.signup(t, "alice@example.com", "Alice Martin")
	bob := s.signup(t, "bob@example.com", "Bob Smith")

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		rec := s.request(t, http.MethodPost, "/api/contacts", alice.AccessToken, dto.CreateContactRequest{Name: name, Company: "Initech"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.request(t, http.MethodPost, "/api/contacts", bob.AccessToken, dto.CreateContactRequest{RawText: "Dana, VP Sales at Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data entity.Contact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	acme, title := "Acme", "VP Sales"
	_, err := s.store.Contacts.Update(ctx, created.Data.ID, entity.EnrichedData{Company: &acme, Title: &title, Confidence: 90}.Patch())
	require.NoError(t, err)

	rec = s.request(t, http.MethodGet, "/api/search?q=acme", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Data entity.SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Len(t, search.Data.Indirect, 1)
	match := search.Data.Indirect[0]
	assert.Equal(t, "Bob", match.Connector.FirstName)
	assert.NotContains(t, rec.Body.String(), "Dana", "connector contact details stay private")

	contactID := match.ContactID.String()
	rec = s.request(t, http.MethodPost, "/api/intros", alice.AccessToken, dto.CreateIntroRequest{
		ConnectorUserID: match.Connector.UserID.String(),
		ContactID:       &contactID,
		TargetCompany:   match.Company,
		Reason:          "Interested in sales at Acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var intro struct {
		Data struct {
			Request entity.IntroRequest `json:"request"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &intro))
	id := intro.Data.Request.ID.String()

	rec = s.request(t, http.MethodPost, "/api/intros/"+id+"/respond", bob.AccessToken, dto.RespondIntroRequest{Action: "accept"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Introduction: Alice Martin")

	rec = s.request(t, http.MethodPost, "/api/intros/"+id+"/complete", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(t, http.MethodGet, "/api/notifications/unread-count", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","message":"unread count retrieved","data":{"count":2}}`, rec.Body.String())

	stats, err := s.store.Stats.Get(ctx, match.Connector.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 100, stats.ResponseRate)
}
