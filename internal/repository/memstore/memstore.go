// Package memstore is an in-process implementation of every repository
// interface, guarded by a single lock. It backs tests and STORE=memory runs.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Helmus101/confluence/internal/company"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
)

// Store holds all in-memory tables.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         []*entity.User
	contacts      []*entity.Contact
	intros        []*entity.IntroRequest
	stats         map[uuid.UUID]*entity.ConnectorStats
	weekly        map[weekKey]int
	notifications []*entity.Notification

	Users         *Users
	Contacts      *Contacts
	Intros        *Intros
	Stats         *Stats
	RateLimits    *RateLimits
	Notifications *Notifications
}

type weekKey struct {
	user  uuid.UUID
	start int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		stats:  make(map[uuid.UUID]*entity.ConnectorStats),
		weekly: make(map[weekKey]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Users = &Users{s: s}
	s.Contacts = &Contacts{s: s}
	s.Intros = &Intros{s: s}
	s.Stats = &Stats{s: s}
	s.RateLimits = &RateLimits{s: s}
	s.Notifications = &Notifications{s: s}
	return s
}

var (
	_ repository.UsersRepository          = (*Users)(nil)
	_ repository.ContactsRepository       = (*Contacts)(nil)
	_ repository.IntroRequestsRepository  = (*Intros)(nil)
	_ repository.ConnectorStatsRepository = (*Stats)(nil)
	_ repository.WeeklyQuota              = (*RateLimits)(nil)
	_ repository.NotificationsRepository  = (*Notifications)(nil)
)

// Users implements repository.UsersRepository.
type Users struct{ s *Store }

// FindByEmail looks a user up by exact email.
func (r *Users) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// FindByID looks a user up by id.
func (r *Users) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u := r.s.userLocked(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

// Create registers a user; emails are unique case-insensitively.
func (r *Users) Create(_ context.Context, in entity.NewUser) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, in.Email) {
			return nil, repository.ErrEmailDuplicate
		}
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	now := r.s.now()
	u := &entity.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		University:   in.University,
		LinkedInURL:  in.LinkedInURL,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users = append(r.s.users, u)
	cp := *u
	return &cp, nil
}

// List returns users newest first.
func (r *Users) List(_ context.Context) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.User, 0, len(r.s.users))
	for i := len(r.s.users) - 1; i >= 0; i-- {
		out = append(out, *r.s.users[i])
	}
	return out, nil
}

// Count returns the number of users.
func (r *Users) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func (s *Store) userLocked(id uuid.UUID) *entity.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Contacts implements repository.ContactsRepository.
type Contacts struct{ s *Store }

func copyContact(c *entity.Contact) entity.Contact {
	cp := *c
	if c.Skills != nil {
		cp.Skills = append([]string(nil), c.Skills...)
	}
	return cp
}

func (r *Contacts) filter(keep func(*entity.Contact) bool, newestFirst bool) []entity.Contact {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Contact, 0)
	n := len(r.s.contacts)
	for i := 0; i < n; i++ {
		idx := i
		if newestFirst {
			idx = n - 1 - i
		}
		c := r.s.contacts[idx]
		if keep(c) {
			out = append(out, copyContact(c))
		}
	}
	return out
}

// ListByOwner returns the owner's contacts, newest first.
func (r *Contacts) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]entity.Contact, error) {
	return r.filter(func(c *entity.Contact) bool { return c.UserID == ownerID }, true), nil
}

// ListEnrichedExcludingOwner returns enriched contacts of all other users.
func (r *Contacts) ListEnrichedExcludingOwner(_ context.Context, ownerID uuid.UUID) ([]entity.Contact, error) {
	return r.filter(func(c *entity.Contact) bool { return c.Enriched && c.UserID != ownerID }, false), nil
}

// ListByCompany returns enriched contacts of other users at the normalized company.
func (r *Contacts) ListByCompany(_ context.Context, companyNormalized string, excludeOwnerID uuid.UUID) ([]entity.Contact, error) {
	if strings.TrimSpace(companyNormalized) == "" {
		return []entity.Contact{}, nil
	}
	return r.filter(func(c *entity.Contact) bool {
		return c.Enriched && c.UserID != excludeOwnerID &&
			c.CompanyNormalized != nil && *c.CompanyNormalized == companyNormalized
	}, false), nil
}

// CountByOwner counts the owner's contacts.
func (r *Contacts) CountByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, c := range r.s.contacts {
		if c.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

// FindByID returns one contact.
func (r *Contacts) FindByID(_ context.Context, id uuid.UUID) (*entity.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.contacts {
		if c.ID == id {
			cp := copyContact(c)
			return &cp, nil
		}
	}
	return nil, repository.ErrContactNotFound
}

func (r *Contacts) insertLocked(ownerID uuid.UUID, in entity.NewContact) *entity.Contact {
	c := &entity.Contact{
		ID:          uuid.New(),
		UserID:      ownerID,
		RawText:     in.RawText,
		LinkedInURL: in.LinkedInURL,
		CreatedAt:   r.s.now(),
	}
	r.s.contacts = append(r.s.contacts, c)
	return c
}

// Create stores an unenriched contact.
func (r *Contacts) Create(_ context.Context, ownerID uuid.UUID, in entity.NewContact) (*entity.Contact, error) {
	if strings.TrimSpace(in.RawText) == "" {
		return nil, errEmptyRawText
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := copyContact(r.insertLocked(ownerID, in))
	return &cp, nil
}

// CreateMany stores a batch of unenriched contacts, skipping blank rows.
func (r *Contacts) CreateMany(_ context.Context, ownerID uuid.UUID, contacts []entity.NewContact) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, in := range contacts {
		if strings.TrimSpace(in.RawText) == "" {
			continue
		}
		r.insertLocked(ownerID, in)
		n++
	}
	return n, nil
}

// Update applies a partial patch.
func (r *Contacts) Update(_ context.Context, id uuid.UUID, patch entity.ContactPatch) (*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contacts {
		if c.ID != id {
			continue
		}
		patch.Apply(c)
		if patch.Company != nil {
			if normalized := company.Normalize(*patch.Company); normalized != "" {
				c.CompanyNormalized = &normalized
			} else {
				c.CompanyNormalized = nil
			}
		}
		cp := copyContact(c)
		return &cp, nil
	}
	return nil, repository.ErrContactNotFound
}

// Totals counts all and enriched contacts.
func (r *Contacts) Totals(_ context.Context) (repository.ContactTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := repository.ContactTotals{Total: len(r.s.contacts)}
	for _, c := range r.s.contacts {
		if c.Enriched {
			totals.Enriched++
		}
	}
	return totals, nil
}
