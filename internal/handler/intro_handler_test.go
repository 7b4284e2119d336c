package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/service"
)

func TestIntroHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	alice := api.user(t, "Alice Martin")
	bob := api.user(t, "Bob Smith")
	api.addContacts(t, alice.ID, "one", "two", "three", "four")

	createBody := fmt.Sprintf(`{"connector_user_id":%q,"target_company":"Acme Inc.","reason":"Exploring sales roles"}`, bob.ID)

	rec, _ := api.do(t, api.intros.Create, call{method: http.MethodPost, target: "/api/intros", body: createBody, user: &alice.ID})
	expectStatus(t, rec, http.StatusForbidden)

	api.addContacts(t, alice.ID, "five")

	rec, _ = api.do(t, api.intros.Create, call{method: http.MethodPost, target: "/api/intros", body: `{"connector_user_id":"nope","target_company":"Acme","reason":"x"}`, user: &alice.ID})
	expectStatus(t, rec, http.StatusBadRequest)

	rec, payload := api.do(t, api.intros.Create, call{method: http.MethodPost, target: "/api/intros", body: createBody, user: &alice.ID})
	expectStatus(t, rec, http.StatusCreated)
	var created service.IntroCreated
	decodeData(t, payload, &created)
	if created.Request == nil || created.Request.Status != entity.IntroPending {
		t.Fatalf("unexpected request: %+v", created.Request)
	}
	if created.SuggestedMessage.Subject != "Introduction to Acme Inc." {
		t.Fatalf("unexpected suggested message: %+v", created.SuggestedMessage)
	}
	id := created.Request.ID.String()

	rec, _ = api.do(t, api.intros.Get, call{method: http.MethodGet, target: "/api/intros/bad", params: map[string]string{"id": "bad"}, user: &alice.ID})
	expectStatus(t, rec, http.StatusBadRequest)

	outsider := api.user(t, "Eve Adams")
	rec, _ = api.do(t, api.intros.Get, call{method: http.MethodGet, target: "/api/intros/" + id, params: map[string]string{"id": id}, user: &outsider.ID})
	expectStatus(t, rec, http.StatusNotFound)

	rec, _ = api.do(t, api.intros.Respond, call{method: http.MethodPost, target: "/api/intros/" + id + "/respond", body: `{"action":"accept"}`, params: map[string]string{"id": id}, user: &alice.ID})
	expectStatus(t, rec, http.StatusNotFound)

	rec, _ = api.do(t, api.intros.Complete, call{method: http.MethodPost, target: "/api/intros/" + id + "/complete", params: map[string]string{"id": id}, user: &bob.ID})
	expectStatus(t, rec, http.StatusConflict)

	rec, _ = api.do(t, api.intros.Respond, call{method: http.MethodPost, target: "/api/intros/" + id + "/respond", body: `{"action":"later"}`, params: map[string]string{"id": id}, user: &bob.ID})
	expectStatus(t, rec, http.StatusBadRequest)

	rec, payload = api.do(t, api.intros.Respond, call{method: http.MethodPost, target: "/api/intros/" + id + "/respond", body: `{"action":"accept"}`, params: map[string]string{"id": id}, user: &bob.ID})
	expectStatus(t, rec, http.StatusOK)
	var responded service.IntroResponded
	decodeData(t, payload, &responded)
	if responded.Request.Status != entity.IntroAccepted || responded.Message == nil {
		t.Fatalf("unexpected respond result: %+v", responded)
	}
	if payload.Message != "intro request accepted" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}

	rec, _ = api.do(t, api.intros.Respond, call{method: http.MethodPost, target: "/api/intros/" + id + "/respond", body: `{"action":"decline"}`, params: map[string]string{"id": id}, user: &bob.ID})
	expectStatus(t, rec, http.StatusConflict)

	rec, payload = api.do(t, api.intros.Complete, call{method: http.MethodPost, target: "/api/intros/" + id + "/complete", params: map[string]string{"id": id}, user: &bob.ID})
	expectStatus(t, rec, http.StatusOK)
	var completed entity.IntroRequest
	decodeData(t, payload, &completed)
	if completed.Status != entity.IntroCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	stats, err := api.store.Stats.Get(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.TotalRequests != 1 || stats.SuccessCount != 1 || stats.ResponseRate != 100 {
		t.Fatalf("unexpected connector stats: %+v", stats)
	}

	rec, payload = api.do(t, api.intros.ListSent, call{method: http.MethodGet, target: "/api/intros/sent", user: &alice.ID})
	expectStatus(t, rec, http.StatusOK)
	var sent []entity.IntroRequest
	decodeData(t, payload, &sent)
	if len(sent) != 1 || sent[0].Status != entity.IntroCompleted {
		t.Fatalf("unexpected sent list: %+v", sent)
	}

	rec, payload = api.do(t, api.intros.ListReceived, call{method: http.MethodGet, target: "/api/intros/received", user: &bob.ID})
	expectStatus(t, rec, http.StatusOK)
	var received []entity.IntroRequest
	decodeData(t, payload, &received)
	if len(received) != 1 {
		t.Fatalf("expected one received request, got %d", len(received))
	}
}

func TestIntroHandler_WeeklyLimit(t *testing.T) {
	api := newTestAPI(t)
	alice := api.user(t, "Alice Martin")
	bob := api.user(t, "Bob Smith")
	api.addContacts(t, alice.ID, "one", "two", "three", "four", "five")

	body := fmt.Sprintf(`{"connector_user_id":%q,"target_company":"Acme","reason":"hello"}`, bob.ID)
	for i := 0; i < service.DefaultWeeklyLimit; i++ {
		rec, _ := api.do(t, api.intros.Create, call{method: http.MethodPost, target: "/api/intros", body: body, user: &alice.ID})
		expectStatus(t, rec, http.StatusCreated)
	}
	rec, payload := api.do(t, api.intros.Create, call{method: http.MethodPost, target: "/api/intros", body: body, user: &alice.ID})
	expectStatus(t, rec, http.StatusTooManyRequests)
	if payload.Message != service.ErrRateLimited.Error() {
		t.Fatalf("unexpected message: %q", payload.Message)
	}

	rec, _ = api.do(t, api.intros.Create, call{method: http.MethodPost, target: "/api/intros", body: body, user: idPtr(uuid.New())})
	expectStatus(t, rec, http.StatusNotFound)
}
