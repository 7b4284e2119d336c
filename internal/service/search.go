package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/ai"
	"github.com/Helmus101/confluence/internal/company"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
	"github.com/Helmus101/confluence/internal/service/scoring"
)

// DefaultMaxIndirectResults caps indirect matches per search.
const DefaultMaxIndirectResults = 20

// SearchService finds direct and indirect matches for a free-text query.
type SearchService struct {
	contacts    repository.ContactsRepository
	users       repository.UsersRepository
	stats       repository.ConnectorStatsRepository
	parser      ai.IntentParser
	maxIndirect int
	logger      *zap.Logger
}

// NewSearchService wires the match engine. maxIndirect <= 0 uses the default.
func NewSearchService(
	contacts repository.ContactsRepository,
	users repository.UsersRepository,
	stats repository.ConnectorStatsRepository,
	parser ai.IntentParser,
	maxIndirect int,
	logger *zap.Logger,
) *SearchService {
	if maxIndirect <= 0 {
		maxIndirect = DefaultMaxIndirectResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		contacts:    contacts,
		users:       users,
		stats:       stats,
		parser:      parser,
		maxIndirect: maxIndirect,
		logger:      logger.Named("search"),
	}
}

// Search parses the query and returns the caller's own matching contacts and
// the best-ranked contact per company reachable through other users.
func (s *SearchService) Search(ctx context.Context, userID uuid.UUID, query string) (*entity.SearchResult, error) {
	result := entity.EmptySearchResult()
	if strings.TrimSpace(query) == "" {
		return result, nil
	}

	intent := s.parser.Analyze(ctx, query)
	result.Intent = intent
	if intent.Empty() {
		s.logger.Debug("empty intent, returning no matches", zap.String("query", query))
		return result, nil
	}

	direct, err := s.directMatches(ctx, userID, intent)
	if err != nil {
		return nil, err
	}
	indirect, err := s.indirectMatches(ctx, userID, intent)
	if err != nil {
		return nil, err
	}
	result.Direct = direct
	result.Indirect = indirect
	return result, nil
}

func (s *SearchService) directMatches(ctx context.Context, userID uuid.UUID, intent entity.SearchIntent) ([]entity.DirectMatch, error) {
	own, err := s.contacts.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list own contacts: %w", err)
	}
	matches := make([]entity.DirectMatch, 0)
	for _, c := range own {
		if c.Enriched && MatchesIntent(intent, c) {
			matches = append(matches, entity.DirectMatch{Contact: c})
		}
	}
	return matches, nil
}

type connectorInfo struct {
	user  *entity.User
	stats entity.ConnectorStats
}

func (s *SearchService) indirectMatches(ctx context.Context, userID uuid.UUID, intent entity.SearchIntent) ([]entity.IndirectMatch, error) {
	pool, err := s.contacts.ListEnrichedExcludingOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list candidate contacts: %w", err)
	}

	connectors := make(map[uuid.UUID]*connectorInfo)
	byID := make(map[uuid.UUID]entity.IndirectMatch)
	candidates := make([]scoring.Candidate, 0)

	for _, c := range pool {
		if c.UserID == userID || !c.Enriched || c.Company == nil || !MatchesIntent(intent, c) {
			continue
		}
		normalized := company.Normalize(*c.Company)
		if normalized == "" {
			continue
		}

		info, err := s.connector(ctx, connectors, c.UserID)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}

		confidence := 0
		if c.Confidence != nil {
			confidence = *c.Confidence
		}
		summary := ""
		if c.LinkedInSummary != nil {
			summary = *c.LinkedInSummary
		}

		byID[c.ID] = entity.IndirectMatch{
			ContactID:         c.ID,
			Company:           *c.Company,
			CompanyNormalized: normalized,
			Title:             c.Title,
			Industry:          c.Industry,
			Seniority:         c.Seniority,
			Location:          c.Location,
			Confidence:        confidence,
			Connector: entity.ConnectorSummary{
				UserID:        info.user.ID,
				FirstName:     info.user.FirstName(),
				SuccessCount:  info.stats.SuccessCount,
				ResponseRate:  info.stats.ResponseRate,
				TotalRequests: info.stats.TotalRequests,
			},
		}
		candidates = append(candidates, scoring.Candidate{
			ContactID:    c.ID,
			Confidence:   confidence,
			SuccessCount: info.stats.SuccessCount,
			ResponseRate: info.stats.ResponseRate,
			Summary:      summary,
		})
	}

	scoring.Rank(candidates)

	seen := make(map[string]struct{}, len(candidates))
	matches := make([]entity.IndirectMatch, 0, min(len(candidates), s.maxIndirect))
	for _, cand := range candidates {
		m := byID[cand.ContactID]
		if _, dup := seen[m.CompanyNormalized]; dup {
			continue
		}
		seen[m.CompanyNormalized] = struct{}{}
		matches = append(matches, m)
		if len(matches) == s.maxIndirect {
			break
		}
	}
	return matches, nil
}

// connector resolves and caches the owner of a candidate contact. A nil info
// means the owner no longer exists and the candidate is skipped.
func (s *SearchService) connector(ctx context.Context, cache map[uuid.UUID]*connectorInfo, ownerID uuid.UUID) (*connectorInfo, error) {
	if info, ok := cache[ownerID]; ok {
		return info, nil
	}
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			cache[ownerID] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("load connector: %w", err)
	}
	stats, err := s.stats.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load connector stats: %w", err)
	}
	stats.Recompute()
	info := &connectorInfo{user: user, stats: stats}
	cache[ownerID] = info
	return info, nil
}

// MatchesIntent reports whether any present intent field is a case-insensitive
// substring of the corresponding contact field.
func MatchesIntent(intent entity.SearchIntent, c entity.Contact) bool {
	pairs := []struct {
		term  string
		field *string
	}{
		{intent.Company, c.Company},
		{intent.Industry, c.Industry},
		{intent.Role, c.Title},
		{intent.Seniority, c.Seniority},
		{intent.Location, c.Location},
	}
	for _, p := range pairs {
		term := strings.ToLower(strings.TrimSpace(p.term))
		if term == "" || p.field == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*p.field), term) {
			return true
		}
	}
	return false
}
