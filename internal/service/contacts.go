package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Helmus101/confluence/internal/ai"
	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/repository"
)

const defaultEnrichConcurrency = 4

// ContactDeps groups the collaborators of ContactService.
type ContactDeps struct {
	Contacts   repository.ContactsRepository
	Enricher   ai.Enricher
	Classifier ai.IndustryClassifier
	Cleaner    *ContactCleaner
	Emitter    notify.Emitter
}

// ContactService manages a user's network: manual entry, file imports and enrichment.
type ContactService struct {
	deps        ContactDeps
	concurrency int
	logger      *zap.Logger
}

// NewContactService wires the service. concurrency bounds parallel enrichment calls.
func NewContactService(deps ContactDeps, concurrency int, logger *zap.Logger) *ContactService {
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	if deps.Cleaner == nil {
		deps.Cleaner = NewContactCleaner("")
	}
	if deps.Emitter == nil {
		deps.Emitter = notify.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{deps: deps, concurrency: concurrency, logger: logger.Named("contacts")}
}

// List returns the user's contacts, newest first.
func (s *ContactService) List(ctx context.Context, userID uuid.UUID) ([]entity.Contact, error) {
	contacts, err := s.deps.Contacts.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Add stores one manually entered contact. The form fields are joined into
// the raw text unless raw text is given explicitly.
func (s *ContactService) Add(ctx context.Context, userID uuid.UUID, req dto.CreateContactRequest) (*entity.Contact, error) {
	raw := strings.TrimSpace(req.RawText)
	if raw == "" {
		raw = joinNonEmpty([]string{req.Name, req.Title, req.Company, req.Email, req.Location, req.Notes})
	}
	if raw == "" {
		return nil, invalid("raw_text", "contact details are required")
	}

	var linkedIn *string
	if strings.TrimSpace(req.LinkedInURL) != "" {
		cleaned, err := CleanLinkedInURL(req.LinkedInURL)
		if err != nil {
			return nil, invalid("linkedin_url", err.Error())
		}
		linkedIn = &cleaned
	}

	contact, err := s.deps.Contacts.Create(ctx, userID, entity.NewContact{RawText: raw, LinkedInURL: linkedIn})
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// Import parses a CSV or XLSX upload. The first row is a header; every other
// row with at least one non-empty cell becomes one contact.
func (s *ContactService) Import(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (int, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", "":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return 0, invalid("file", "only .csv and .xlsx uploads are supported")
	}
	if err != nil {
		return 0, invalid("file", err.Error())
	}

	contacts := RowsToContacts(rows)
	if len(contacts) == 0 {
		return 0, nil
	}
	n, err := s.deps.Contacts.CreateMany(ctx, userID, contacts)
	if err != nil {
		return 0, fmt.Errorf("import contacts: %w", err)
	}
	s.logger.Info("contacts imported", zap.Stringer("user_id", userID), zap.Int("count", n), zap.String("file", filename))
	return n, nil
}

// RowsToContacts drops the header row and joins each remaining row's cells.
func RowsToContacts(rows [][]string) []entity.NewContact {
	if len(rows) <= 1 {
		return nil
	}
	out := make([]entity.NewContact, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if raw := joinNonEmpty(row); raw != "" {
			out = append(out, entity.NewContact{RawText: raw})
		}
	}
	return out
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func joinNonEmpty(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Enrich runs enrichment for every unenriched contact of the user. Contacts
// already enriched are skipped. Provider failures still mark the contact
// enriched with confidence 0 and are reported in Failed.
func (s *ContactService) Enrich(ctx context.Context, userID uuid.UUID) (dto.EnrichResponse, error) {
	contacts, err := s.deps.Contacts.ListByOwner(ctx, userID)
	if err != nil {
		return dto.EnrichResponse{}, fmt.Errorf("list contacts: %w", err)
	}

	var enriched, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, c := range contacts {
		if c.Enriched {
			continue
		}
		g.Go(func() error {
			data := s.enrichOne(gctx, c)
			if data.Confidence == 0 {
				failed.Add(1)
			}
			if _, err := s.deps.Contacts.Update(gctx, c.ID, data.Patch()); err != nil {
				if errors.Is(err, repository.ErrContactNotFound) {
					return nil
				}
				return fmt.Errorf("update contact %s: %w", c.ID, err)
			}
			enriched.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.EnrichResponse{}, err
	}

	resp := dto.EnrichResponse{Enriched: int(enriched.Load()), Failed: int(failed.Load())}
	if resp.Enriched > 0 {
		if err := s.deps.Emitter.Emit(ctx, notify.Event{
			Type:    entity.NotificationContactsEnriched,
			UserID:  userID,
			Title:   "Contacts enriched",
			Message: fmt.Sprintf("%d contacts were enriched", resp.Enriched),
		}); err != nil {
			s.logger.Warn("emit notification", zap.String("type", entity.NotificationContactsEnriched), zap.Error(err))
		}
	}
	s.logger.Info("enrichment finished",
		zap.Stringer("user_id", userID),
		zap.Int("enriched", resp.Enriched),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

func (s *ContactService) enrichOne(ctx context.Context, c entity.Contact) entity.EnrichedData {
	raw := c.RawText
	if strings.TrimSpace(raw) == "" && c.Name != nil {
		raw = *c.Name
	}
	data := s.deps.Cleaner.Clean(s.deps.Enricher.Enrich(ctx, raw))
	if data.Industry == nil && data.Company != nil && s.deps.Classifier != nil {
		if tag := s.deps.Classifier.ClassifyIndustry(ctx, *data.Company); tag != "" && tag != "other" {
			data.Industry = &tag
		}
	}
	return data
}
