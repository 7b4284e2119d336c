package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Helmus101/confluence/internal/company"
	"github.com/Helmus101/confluence/internal/entity"
)

// ErrContactNotFound indicates no contact exists for the identifier.
var ErrContactNotFound = errors.New("contact not found")

// ContactsRepository describes persistence operations for contacts.
type ContactsRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Contact, error)
	ListEnrichedExcludingOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Contact, error)
	ListByCompany(ctx context.Context, companyNormalized string, excludeOwnerID uuid.UUID) ([]entity.Contact, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error)
	Create(ctx context.Context, ownerID uuid.UUID, contact entity.NewContact) (*entity.Contact, error)
	CreateMany(ctx context.Context, ownerID uuid.UUID, contacts []entity.NewContact) (int, error)
	Update(ctx context.Context, id uuid.UUID, patch entity.ContactPatch) (*entity.Contact, error)
	Totals(ctx context.Context) (ContactTotals, error)
}

// ContactTotals summarises the contact table for reporting.
type ContactTotals struct {
	Total    int
	Enriched int
}

// PGXContactsRepository implements ContactsRepository using pgx.
type PGXContactsRepository struct {
	pool pgxPool
}

// NewPGXContactsRepository wires a pgx backed repository.
func NewPGXContactsRepository(pool *pgxpool.Pool) *PGXContactsRepository {
	return &PGXContactsRepository{pool: pool}
}

const contactColumns = `
            id,
            user_id,
            raw_text,
            name,
            email,
            phone,
            company,
            company_normalized,
            title,
            industry,
            seniority,
            location,
            linkedin_url,
            confidence,
            enriched,
            company_size,
            funding_stage,
            years_experience,
            skills,
            education,
            university,
            degree,
            major,
            graduation_year,
            recent_role_change,
            industry_fit,
            linkedin_summary,
            created_at`

func scanContact(row pgx.Row) (*entity.Contact, error) {
	var c entity.Contact
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.RawText,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Company,
		&c.CompanyNormalized,
		&c.Title,
		&c.Industry,
		&c.Seniority,
		&c.Location,
		&c.LinkedInURL,
		&c.Confidence,
		&c.Enriched,
		&c.CompanySize,
		&c.FundingStage,
		&c.YearsExperience,
		&c.Skills,
		&c.Education,
		&c.University,
		&c.Degree,
		&c.Major,
		&c.GraduationYear,
		&c.RecentRoleChange,
		&c.IndustryFit,
		&c.LinkedInSummary,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanContacts(rows pgx.Rows) ([]entity.Contact, error) {
	defer rows.Close()
	contacts := make([]entity.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// ListByOwner returns every contact owned by the user, newest first.
func (r *PGXContactsRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts by owner: %w", err)
	}
	return scanContacts(rows)
}

// ListEnrichedExcludingOwner scans the enriched contacts of all other users.
func (r *PGXContactsRepository) ListEnrichedExcludingOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE enriched AND user_id <> $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list enriched contacts: %w", err)
	}
	return scanContacts(rows)
}

// ListByCompany returns enriched contacts of other users whose normalized company matches.
func (r *PGXContactsRepository) ListByCompany(ctx context.Context, companyNormalized string, excludeOwnerID uuid.UUID) ([]entity.Contact, error) {
	if strings.TrimSpace(companyNormalized) == "" {
		return []entity.Contact{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE enriched AND company_normalized = $1 AND user_id <> $2`,
		companyNormalized, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts by company: %w", err)
	}
	return scanContacts(rows)
}

// CountByOwner returns how many contacts the user has uploaded.
func (r *PGXContactsRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE user_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

// FindByID fetches one contact.
func (r *PGXContactsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return c, nil
}

// Create stores an unenriched contact.
func (r *PGXContactsRepository) Create(ctx context.Context, ownerID uuid.UUID, in entity.NewContact) (*entity.Contact, error) {
	if strings.TrimSpace(in.RawText) == "" {
		return nil, fmt.Errorf("contact raw text is empty")
	}
	row := r.pool.QueryRow(ctx, `
        INSERT INTO contacts (user_id, raw_text, linkedin_url)
        VALUES ($1, $2, $3)
        RETURNING `+contactColumns,
		ownerID, in.RawText, stringOrNil(in.LinkedInURL))
	c, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// CreateMany inserts a batch of unenriched contacts in one transaction.
func (r *PGXContactsRepository) CreateMany(ctx context.Context, ownerID uuid.UUID, contacts []entity.NewContact) (int, error) {
	if len(contacts) == 0 {
		return 0, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("start contact import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range contacts {
		if strings.TrimSpace(c.RawText) == "" {
			continue
		}
		batch.Queue(`INSERT INTO contacts (user_id, raw_text, linkedin_url) VALUES ($1, $2, $3)`,
			ownerID, c.RawText, stringOrNil(c.LinkedInURL))
	}
	queued := batch.Len()
	if queued == 0 {
		return 0, nil
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("insert contact %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close contact batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit contact import tx: %w", err)
	}
	return queued, nil
}

// Update patches contact attributes. Setting Company also refreshes company_normalized.
func (r *PGXContactsRepository) Update(ctx context.Context, id uuid.UUID, patch entity.ContactPatch) (*entity.Contact, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Name != nil {
		set("name", stringOrNil(patch.Name))
	}
	if patch.Email != nil {
		set("email", stringOrNil(patch.Email))
	}
	if patch.Phone != nil {
		set("phone", stringOrNil(patch.Phone))
	}
	if patch.Company != nil {
		set("company", stringOrNil(patch.Company))
		normalized := company.Normalize(*patch.Company)
		set("company_normalized", stringOrNil(&normalized))
	}
	if patch.Title != nil {
		set("title", stringOrNil(patch.Title))
	}
	if patch.Industry != nil {
		set("industry", stringOrNil(patch.Industry))
	}
	if patch.Seniority != nil {
		set("seniority", stringOrNil(patch.Seniority))
	}
	if patch.Location != nil {
		set("location", stringOrNil(patch.Location))
	}
	if patch.LinkedInURL != nil {
		set("linkedin_url", stringOrNil(patch.LinkedInURL))
	}
	if patch.Confidence != nil {
		set("confidence", intOrNil(patch.Confidence))
	}
	if patch.Enriched != nil {
		set("enriched", *patch.Enriched)
	}
	if ext := patch.Extended; ext != nil {
		set("company_size", stringOrNil(ext.CompanySize))
		set("funding_stage", stringOrNil(ext.FundingStage))
		set("years_experience", intOrNil(ext.YearsExperience))
		set("skills", stringSliceOrEmpty(ext.Skills))
		set("education", stringOrNil(ext.Education))
		set("university", stringOrNil(ext.University))
		set("degree", stringOrNil(ext.Degree))
		set("major", stringOrNil(ext.Major))
		set("graduation_year", intOrNil(ext.GraduationYear))
		set("recent_role_change", boolOrNil(ext.RecentRoleChange))
		set("industry_fit", stringOrNil(ext.IndustryFit))
		set("linkedin_summary", stringOrNil(ext.LinkedInSummary))
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE contacts SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, contactColumns)

	c, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

// Totals counts all and enriched contacts.
func (r *PGXContactsRepository) Totals(ctx context.Context) (ContactTotals, error) {
	var totals ContactTotals
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE enriched) FROM contacts`).
		Scan(&totals.Total, &totals.Enriched)
	if err != nil {
		return ContactTotals{}, fmt.Errorf("count contacts: %w", err)
	}
	return totals, nil
}
