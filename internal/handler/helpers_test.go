package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/ai"
	"github.com/Helmus101/confluence/internal/auth"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/middleware"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/repository/memstore"
	"github.com/Helmus101/confluence/internal/service"
)

// testAPI wires every handler over one in-memory store.
type testAPI struct {
	e     *echo.Echo
	store *memstore.Store
	jwt   *auth.JWTManager

	auth          *AuthHandler
	contacts      *ContactHandler
	search        *SearchHandler
	intros        *IntroHandler
	notifications *NotificationHandler
	admin         *AdminHandler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	// Wednesday, so the weekly quota window is stable.
	now := func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) }
	store := memstore.New(memstore.WithClock(now))
	jwt := auth.NewJWTManager("handler-secret", time.Hour)
	logger := zap.NewNop()
	emitter := notify.NewStoreEmitter(store.Notifications)

	users := service.NewUserService(store.Users)
	contacts := service.NewContactService(service.ContactDeps{
		Contacts: store.Contacts,
		Enricher: ai.NewContactEnricher(nil, logger),
		Emitter:  emitter,
	}, 2, logger)
	search := service.NewSearchService(store.Contacts, store.Users, store.Stats, ai.KeywordIntentParser{}, 0, logger)
	intros := service.NewIntroService(service.IntroDeps{
		Intros:   store.Intros,
		Contacts: store.Contacts,
		Users:    store.Users,
		Stats:    store.Stats,
		Quota:    store.RateLimits,
		Emitter:  emitter,
	}, service.IntroPolicy{}, logger, service.WithIntroClock(now))

	return &testAPI{
		e:             echo.New(),
		store:         store,
		jwt:           jwt,
		auth:          NewAuthHandler(service.NewAuthService(store.Users, jwt), users),
		contacts:      NewContactHandler(contacts),
		search:        NewSearchHandler(search),
		intros:        NewIntroHandler(intros),
		notifications: NewNotificationHandler(service.NewNotificationService(store.Notifications)),
		admin:         NewAdminHandler(users, service.NewReportService(store.Users, store.Contacts, store.Intros, store.Stats)),
	}
}

func (a *testAPI) user(t *testing.T, name string) *entity.User {
	t.Helper()
	u, err := a.store.Users.Create(context.Background(), entity.NewUser{
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Name:  name,
		Role:  entity.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (a *testAPI) addContacts(t *testing.T, owner uuid.UUID, raws ...string) {
	t.Helper()
	for _, raw := range raws {
		if _, err := a.store.Contacts.Create(context.Background(), owner, entity.NewContact{RawText: raw}); err != nil {
			t.Fatalf("create contact: %v", err)
		}
	}
}

type call struct {
	method string
	target string
	body   string
	ctype  string
	user   *uuid.UUID
	params map[string]string
}

// do runs h against a recorder as if routed, with the JWT context already set.
func (a *testAPI) do(t *testing.T, h echo.HandlerFunc, in call) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var body io.Reader
	if in.body != "" {
		body = strings.NewReader(in.body)
	}
	req := httptest.NewRequest(in.method, in.target, body)
	ctype := in.ctype
	if ctype == "" && in.body != "" {
		ctype = echo.MIMEApplicationJSON
	}
	if ctype != "" {
		req.Header.Set(echo.HeaderContentType, ctype)
	}
	rec := httptest.NewRecorder()
	c := a.e.NewContext(req, rec)
	if in.user != nil {
		c.Set(middleware.ContextKeyUserID, in.user.String())
	}
	if len(in.params) > 0 {
		names := make([]string, 0, len(in.params))
		values := make([]string, 0, len(in.params))
		for name, value := range in.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var payload APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

// decodeData re-decodes the envelope's data field into out.
func decodeData(t *testing.T, payload APIResponse, out any) {
	t.Helper()
	raw, err := json.Marshal(payload.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }
