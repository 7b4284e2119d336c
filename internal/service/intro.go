package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/ai"
	"github.com/Helmus101/confluence/internal/company"
	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/repository"
)

// Default introduction policy.
const (
	DefaultMinContacts = 5
	DefaultWeeklyLimit = 3
)

// IntroPolicy bounds who may request introductions and how often.
type IntroPolicy struct {
	MinContacts int
	WeeklyLimit int
}

// IntroDeps groups the collaborators of IntroService.
type IntroDeps struct {
	Intros   repository.IntroRequestsRepository
	Contacts repository.ContactsRepository
	Users    repository.UsersRepository
	Stats    repository.ConnectorStatsRepository
	Quota    repository.WeeklyQuota
	Messages ai.MessageGenerator
	Emitter  notify.Emitter
}

// IntroService drives the introduction request lifecycle.
type IntroService struct {
	deps   IntroDeps
	policy IntroPolicy
	now    func() time.Time
	logger *zap.Logger
}

// IntroOption configures an IntroService.
type IntroOption func(*IntroService)

// WithIntroClock overrides the clock used for weekly quotas.
func WithIntroClock(now func() time.Time) IntroOption {
	return func(s *IntroService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIntroService wires the lifecycle manager. Zero policy values use the defaults.
func NewIntroService(deps IntroDeps, policy IntroPolicy, logger *zap.Logger, opts ...IntroOption) *IntroService {
	if policy.MinContacts <= 0 {
		policy.MinContacts = DefaultMinContacts
	}
	if policy.WeeklyLimit <= 0 {
		policy.WeeklyLimit = DefaultWeeklyLimit
	}
	if deps.Emitter == nil {
		deps.Emitter = notify.Nop
	}
	if deps.Messages == nil {
		deps.Messages = ai.NewMessageWriter(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &IntroService{deps: deps, policy: policy, now: time.Now, logger: logger.Named("intro")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IntroCreated is the result of Create.
type IntroCreated struct {
	Request          *entity.IntroRequest `json:"request"`
	SuggestedMessage entity.IntroMessage  `json:"suggested_message"`
}

// IntroResponded is the result of Respond. Message is set on accept.
type IntroResponded struct {
	Request *entity.IntroRequest `json:"request"`
	Message *entity.IntroMessage `json:"message,omitempty"`
}

// Create validates and persists a pending request, consuming one unit of the
// requester's weekly quota and counting the request against the connector.
func (s *IntroService) Create(ctx context.Context, requesterID uuid.UUID, req dto.CreateIntroRequest) (*IntroCreated, error) {
	connectorID, err := parseID("connector_user_id", strings.TrimSpace(req.ConnectorUserID))
	if err != nil {
		return nil, err
	}
	target := strings.TrimSpace(req.TargetCompany)
	if target == "" {
		return nil, invalid("target_company", "is required")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, invalid("reason", "is required")
	}
	if connectorID == requesterID {
		return nil, invalid("connector_user_id", "cannot request an introduction through yourself")
	}
	var contactID *uuid.UUID
	if req.ContactID != nil && strings.TrimSpace(*req.ContactID) != "" {
		id, err := parseID("contact_id", strings.TrimSpace(*req.ContactID))
		if err != nil {
			return nil, err
		}
		contactID = &id
	}
	var essay *string
	if req.Essay != nil {
		if trimmed := strings.TrimSpace(*req.Essay); trimmed != "" {
			essay = &trimmed
		}
	}

	requester, err := s.findUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	connector, err := s.findUser(ctx, connectorID)
	if err != nil {
		return nil, err
	}
	if contactID != nil {
		contact, err := s.deps.Contacts.FindByID(ctx, *contactID)
		if err != nil {
			if errors.Is(err, repository.ErrContactNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("load contact: %w", err)
		}
		if contact.UserID != connectorID {
			return nil, ErrNotFound
		}
	}

	owned, err := s.deps.Contacts.CountByOwner(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	if owned < s.policy.MinContacts {
		return nil, ErrInsufficientContacts
	}

	week := WeekStart(s.now())
	used, err := s.deps.Quota.Count(ctx, requesterID, week)
	if err != nil {
		return nil, fmt.Errorf("read weekly quota: %w", err)
	}
	if used >= s.policy.WeeklyLimit {
		return nil, ErrRateLimited
	}

	created, err := s.deps.Intros.Create(ctx, entity.NewIntroRequest{
		RequesterID:             requesterID,
		ConnectorUserID:         connectorID,
		ContactID:               contactID,
		TargetCompany:           target,
		TargetCompanyNormalized: company.Normalize(target),
		Reason:                  reason,
		Essay:                   essay,
	})
	if err != nil {
		return nil, fmt.Errorf("create intro request: %w", err)
	}
	if _, err := s.deps.Quota.Increment(ctx, requesterID, week); err != nil {
		return nil, fmt.Errorf("increment weekly quota: %w", err)
	}
	if _, err := s.deps.Stats.IncrementTotal(ctx, connectorID); err != nil {
		return nil, fmt.Errorf("update connector stats: %w", err)
	}

	background := "early-career professional"
	if requester.University != nil && strings.TrimSpace(*requester.University) != "" {
		background = "student at " + strings.TrimSpace(*requester.University)
	}
	msg := s.deps.Messages.ConnectorMessage(ctx, ai.ConnectorMessageInput{
		RequesterName:       requester.Name,
		RequesterBackground: background,
		ConnectorName:       connector.FirstName(),
		TargetCompany:       target,
		Reason:              reason,
	})
	created.Messages.ToConnector = &msg
	if err := s.deps.Intros.SetMessages(ctx, created.ID, created.Messages); err != nil {
		s.logger.Warn("store suggested message", zap.Stringer("intro_id", created.ID), zap.Error(err))
	}

	s.emit(ctx, notify.Event{
		Type:           entity.NotificationIntroRequest,
		UserID:         connectorID,
		Title:          "New introduction request",
		Message:        fmt.Sprintf("%s asked for an introduction to someone at %s", displayName(requester), target),
		IntroRequestID: &created.ID,
	})

	s.logger.Info("intro requested",
		zap.Stringer("intro_id", created.ID),
		zap.Stringer("requester_id", requesterID),
		zap.Stringer("connector_id", connectorID))

	return &IntroCreated{Request: created, SuggestedMessage: msg}, nil
}

// Respond lets the connector accept or decline a pending request.
func (s *IntroService) Respond(ctx context.Context, requestID, actorID uuid.UUID, action string) (*IntroResponded, error) {
	current, err := s.connectorRequest(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}
	if current.Status != entity.IntroPending {
		return nil, ErrConflict
	}

	var to entity.IntroStatus
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "accept":
		to = entity.IntroAccepted
	case "decline":
		to = entity.IntroDeclined
	default:
		return nil, invalid("action", `must be "accept" or "decline"`)
	}

	updated, err := s.transition(ctx, requestID, entity.IntroPending, to)
	if err != nil {
		return nil, err
	}

	result := &IntroResponded{Request: updated}
	if to == entity.IntroAccepted {
		msg := s.forwardMessage(ctx, updated)
		updated.Messages.ToTarget = &msg
		if err := s.deps.Intros.SetMessages(ctx, updated.ID, updated.Messages); err != nil {
			s.logger.Warn("store forward message", zap.Stringer("intro_id", updated.ID), zap.Error(err))
		}
		result.Message = &msg
	}

	connectorName := s.firstName(ctx, actorID)
	event := notify.Event{
		UserID:         updated.RequesterID,
		IntroRequestID: &updated.ID,
	}
	if to == entity.IntroAccepted {
		event.Type = entity.NotificationIntroAccepted
		event.Title = "Introduction accepted"
		event.Message = fmt.Sprintf("%s agreed to introduce you to someone at %s", connectorName, updated.TargetCompany)
	} else {
		event.Type = entity.NotificationIntroDeclined
		event.Title = "Introduction declined"
		event.Message = fmt.Sprintf("%s could not make an introduction at %s", connectorName, updated.TargetCompany)
	}
	s.emit(ctx, event)

	return result, nil
}

// Complete marks an accepted request as delivered and credits the connector.
func (s *IntroService) Complete(ctx context.Context, requestID, actorID uuid.UUID) (*entity.IntroRequest, error) {
	current, err := s.connectorRequest(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}
	if current.Status != entity.IntroAccepted {
		return nil, ErrConflict
	}

	updated, err := s.transition(ctx, requestID, entity.IntroAccepted, entity.IntroCompleted)
	if err != nil {
		return nil, err
	}
	if _, err := s.deps.Stats.IncrementSuccess(ctx, actorID); err != nil {
		return nil, fmt.Errorf("update connector stats: %w", err)
	}

	s.emit(ctx, notify.Event{
		Type:           entity.NotificationIntroCompleted,
		UserID:         updated.RequesterID,
		Title:          "Introduction completed",
		Message:        fmt.Sprintf("%s completed your introduction at %s", s.firstName(ctx, actorID), updated.TargetCompany),
		IntroRequestID: &updated.ID,
	})
	return updated, nil
}

// Get returns a request visible to the actor as requester or connector.
func (s *IntroService) Get(ctx context.Context, requestID, actorID uuid.UUID) (*entity.IntroRequest, error) {
	req, err := s.find(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actorID && req.ConnectorUserID != actorID {
		return nil, ErrNotFound
	}
	return req, nil
}

// ListSent returns the requests the user created, newest first.
func (s *IntroService) ListSent(ctx context.Context, userID uuid.UUID) ([]entity.IntroRequest, error) {
	list, err := s.deps.Intros.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	return list, nil
}

// ListReceived returns the requests addressed to the user, newest first.
func (s *IntroService) ListReceived(ctx context.Context, userID uuid.UUID) ([]entity.IntroRequest, error) {
	list, err := s.deps.Intros.ListByConnector(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	return list, nil
}

func (s *IntroService) find(ctx context.Context, id uuid.UUID) (*entity.IntroRequest, error) {
	req, err := s.deps.Intros.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIntroRequestNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load intro request: %w", err)
	}
	return req, nil
}

// connectorRequest loads a request the actor may act on as connector.
func (s *IntroService) connectorRequest(ctx context.Context, id, actorID uuid.UUID) (*entity.IntroRequest, error) {
	req, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ConnectorUserID != actorID {
		return nil, ErrNotFound
	}
	return req, nil
}

func (s *IntroService) transition(ctx context.Context, id uuid.UUID, from, to entity.IntroStatus) (*entity.IntroRequest, error) {
	updated, err := s.deps.Intros.Transition(ctx, id, from, to)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, repository.ErrStatusMismatch):
		return nil, ErrConflict
	case errors.Is(err, repository.ErrIntroRequestNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("transition intro request: %w", err)
	}
}

func (s *IntroService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.deps.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *IntroService) forwardMessage(ctx context.Context, req *entity.IntroRequest) entity.IntroMessage {
	in := ai.ForwardMessageInput{
		RequesterPitch: req.Reason,
		TargetCompany:  req.TargetCompany,
	}
	if req.Essay != nil {
		in.RequesterPitch = *req.Essay
	}
	if requester, err := s.deps.Users.FindByID(ctx, req.RequesterID); err == nil {
		in.RequesterName = requester.Name
	} else {
		s.logger.Warn("load requester for forward message", zap.Error(err))
	}
	if connector, err := s.deps.Users.FindByID(ctx, req.ConnectorUserID); err == nil {
		in.ConnectorName = connector.Name
	}
	if req.ContactID != nil {
		if contact, err := s.deps.Contacts.FindByID(ctx, *req.ContactID); err == nil && contact.Name != nil {
			in.TargetName = *contact.Name
		}
	}
	return s.deps.Messages.ForwardMessage(ctx, in)
}

func (s *IntroService) firstName(ctx context.Context, id uuid.UUID) string {
	user, err := s.deps.Users.FindByID(ctx, id)
	if err != nil {
		return "Your connector"
	}
	return displayName(user)
}

func (s *IntroService) emit(ctx context.Context, event notify.Event) {
	if err := s.deps.Emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("emit notification",
			zap.String("type", event.Type),
			zap.Stringer("user_id", event.UserID),
			zap.Error(err))
	}
}

func displayName(u *entity.User) string {
	if first := u.FirstName(); first != "" {
		return first
	}
	return "Someone"
}
