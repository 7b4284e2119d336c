package memstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
)

var errEmptyRawText = errors.New("contact raw text is empty")

// Intros implements repository.IntroRequestsRepository.
type Intros struct{ s *Store }

func copyIntro(r *entity.IntroRequest) entity.IntroRequest {
	cp := *r
	if r.Messages.ToConnector != nil {
		m := *r.Messages.ToConnector
		cp.Messages.ToConnector = &m
	}
	if r.Messages.ToTarget != nil {
		m := *r.Messages.ToTarget
		cp.Messages.ToTarget = &m
	}
	return cp
}

func (r *Intros) findLocked(id uuid.UUID) *entity.IntroRequest {
	for _, req := range r.s.intros {
		if req.ID == id {
			return req
		}
	}
	return nil
}

// Create stores a pending request.
func (r *Intros) Create(_ context.Context, in entity.NewIntroRequest) (*entity.IntroRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	req := &entity.IntroRequest{
		ID:                      uuid.New(),
		RequesterID:             in.RequesterID,
		ConnectorUserID:         in.ConnectorUserID,
		ContactID:               in.ContactID,
		TargetCompany:           in.TargetCompany,
		TargetCompanyNormalized: in.TargetCompanyNormalized,
		Reason:                  in.Reason,
		Essay:                   in.Essay,
		Status:                  entity.IntroPending,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	r.s.intros = append(r.s.intros, req)
	cp := copyIntro(req)
	return &cp, nil
}

// FindByID returns one request.
func (r *Intros) FindByID(_ context.Context, id uuid.UUID) (*entity.IntroRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if req := r.findLocked(id); req != nil {
		cp := copyIntro(req)
		return &cp, nil
	}
	return nil, repository.ErrIntroRequestNotFound
}

func (r *Intros) list(keep func(*entity.IntroRequest) bool) []entity.IntroRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.IntroRequest, 0)
	for i := len(r.s.intros) - 1; i >= 0; i-- {
		if keep(r.s.intros[i]) {
			out = append(out, copyIntro(r.s.intros[i]))
		}
	}
	return out
}

// ListByRequester returns the requests the user sent, newest first.
func (r *Intros) ListByRequester(_ context.Context, requesterID uuid.UUID) ([]entity.IntroRequest, error) {
	return r.list(func(req *entity.IntroRequest) bool { return req.RequesterID == requesterID }), nil
}

// ListByConnector returns the requests addressed to the user, newest first.
func (r *Intros) ListByConnector(_ context.Context, connectorID uuid.UUID) ([]entity.IntroRequest, error) {
	return r.list(func(req *entity.IntroRequest) bool { return req.ConnectorUserID == connectorID }), nil
}

// Transition is a compare-and-set on status under the store lock.
func (r *Intros) Transition(_ context.Context, id uuid.UUID, from, to entity.IntroStatus) (*entity.IntroRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req := r.findLocked(id)
	if req == nil {
		return nil, repository.ErrIntroRequestNotFound
	}
	if req.Status != from {
		return nil, repository.ErrStatusMismatch
	}
	req.Status = to
	req.UpdatedAt = r.s.now()
	cp := copyIntro(req)
	return &cp, nil
}

// SetMessages replaces the generated messages of a request.
func (r *Intros) SetMessages(_ context.Context, id uuid.UUID, messages entity.IntroMessages) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req := r.findLocked(id)
	if req == nil {
		return repository.ErrIntroRequestNotFound
	}
	req.Messages = messages
	req.UpdatedAt = r.s.now()
	return nil
}

// CountByStatus groups requests by status.
func (r *Intros) CountByStatus(_ context.Context) (map[entity.IntroStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[entity.IntroStatus]int)
	for _, req := range r.s.intros {
		counts[req.Status]++
	}
	return counts, nil
}

// Stats implements repository.ConnectorStatsRepository.
type Stats struct{ s *Store }

// Get returns the connector's stats, zero valued when absent.
func (r *Stats) Get(_ context.Context, userID uuid.UUID) (entity.ConnectorStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if st, ok := r.s.stats[userID]; ok {
		return *st, nil
	}
	return entity.ConnectorStats{UserID: userID}, nil
}

func (r *Stats) bump(userID uuid.UUID, total, success int) entity.ConnectorStats {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stats[userID]
	if !ok {
		st = &entity.ConnectorStats{UserID: userID}
		r.s.stats[userID] = st
	}
	st.TotalRequests += total
	st.SuccessCount += success
	st.Recompute()
	return *st
}

// IncrementTotal bumps the request counter.
func (r *Stats) IncrementTotal(_ context.Context, userID uuid.UUID) (entity.ConnectorStats, error) {
	return r.bump(userID, 1, 0), nil
}

// IncrementSuccess bumps the success counter.
func (r *Stats) IncrementSuccess(_ context.Context, userID uuid.UUID) (entity.ConnectorStats, error) {
	return r.bump(userID, 0, 1), nil
}

// List returns every recorded connector's stats.
func (r *Stats) List(_ context.Context) ([]entity.ConnectorStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.ConnectorStats, 0, len(r.s.stats))
	for _, st := range r.s.stats {
		out = append(out, *st)
	}
	return out, nil
}

// RateLimits implements repository.WeeklyQuota.
type RateLimits struct{ s *Store }

// Count returns the user's request count for the week.
func (r *RateLimits) Count(_ context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.weekly[weekKey{user: userID, start: weekStart.Unix()}], nil
}

// Increment bumps the user's count for the week and returns the new value.
func (r *RateLimits) Increment(_ context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := weekKey{user: userID, start: weekStart.Unix()}
	r.s.weekly[key]++
	return r.s.weekly[key], nil
}

// Notifications implements repository.NotificationsRepository.
type Notifications struct{ s *Store }

// Create stores a notification.
func (r *Notifications) Create(_ context.Context, in entity.Notification) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := in
	n.ID = uuid.New()
	n.Read = false
	n.CreatedAt = r.s.now()
	r.s.notifications = append(r.s.notifications, &n)
	cp := n
	return &cp, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *Notifications) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]entity.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Notification, 0)
	for i := len(r.s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := r.s.notifications[i]; n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

// CountUnread counts the user's unread notifications.
func (r *Notifications) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flags one notification owned by the user.
func (r *Notifications) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

// MarkAllRead flags every unread notification of the user.
func (r *Notifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	changed := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}
