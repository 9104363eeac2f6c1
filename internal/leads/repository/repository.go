package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"atelier_erp_backend/internal/leads/domain"
	"atelier_erp_backend/platform/apperr"
)

const (
	leadNotFoundMessage     = "lead not found"
	activityNotFoundMessage = "activity not found"
)

const leadColumns = `id, company, contact, phone, email, source, segment, status,
	next_step_date, next_step_note, last_contact, estimated_value, owner, tags,
	address, company_id, support_type, support_detail, siret, client_type,
	created_at, updated_at`

// Repo implements the leads repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type row interface {
	Scan(dest ...any) error
}

func scanLead(r row) (Lead, error) {
	var l Lead
	var createdAt, updatedAt time.Time
	if err := r.Scan(
		&l.ID, &l.Company, &l.Contact, &l.Phone, &l.Email, &l.Source, &l.Segment, &l.Status,
		&l.NextStepDate, &l.NextStepNote, &l.LastContact, &l.EstimatedValue, &l.Owner, &l.Tags,
		&l.Address, &l.CompanyID, &l.SupportType, &l.SupportDetail, &l.SIRET, &l.ClientType,
		&createdAt, &updatedAt,
	); err != nil {
		return Lead{}, err
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	l.CreatedAt = createdAt.Format(time.RFC3339)
	l.UpdatedAt = updatedAt.Format(time.RFC3339)
	return l, nil
}

// CreateLead creates a lead.
func (r *Repo) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	query := `
		INSERT INTO leads (company, contact, phone, email, source, segment, status,
			next_step_date, next_step_note, estimated_value, owner, tags,
			address, company_id, support_type, support_detail, siret, client_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + leadColumns

	l, err := scanLead(r.pool.QueryRow(ctx, query,
		params.Company, params.Contact, params.Phone, params.Email,
		params.Source, params.Segment, params.Status,
		params.NextStepDate, params.NextStepNote, params.EstimatedValue, params.Owner, params.Tags,
		params.Address, params.CompanyID, params.SupportType, params.SupportDetail,
		params.SIRET, params.ClientType,
	))
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	l.Activities = []Activity{}
	return l, nil
}

// UpdateLead updates a lead's fields.
func (r *Repo) UpdateLead(ctx context.Context, params UpdateLeadParams) (Lead, error) {
	query := `
		UPDATE leads
		SET company = COALESCE($2, company),
			contact = COALESCE($3, contact),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			source = COALESCE($6, source),
			segment = COALESCE($7, segment),
			status = COALESCE($8, status),
			next_step_date = CASE WHEN $10 THEN NULL ELSE COALESCE($9, next_step_date) END,
			next_step_note = COALESCE($11, next_step_note),
			estimated_value = COALESCE($12, estimated_value),
			owner = COALESCE($13, owner),
			tags = COALESCE($14, tags),
			address = COALESCE($15, address),
			company_id = COALESCE($16, company_id),
			support_type = COALESCE($17, support_type),
			support_detail = COALESCE($18, support_detail),
			siret = COALESCE($19, siret),
			client_type = COALESCE($20, client_type),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + leadColumns

	l, err := scanLead(r.pool.QueryRow(ctx, query,
		params.ID, params.Company, params.Contact, params.Phone, params.Email,
		params.Source, params.Segment, params.Status,
		params.NextStepDate, params.ClearNextStep, params.NextStepNote,
		params.EstimatedValue, params.Owner, params.Tags,
		params.Address, params.CompanyID, params.SupportType, params.SupportDetail,
		params.SIRET, params.ClientType,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}

	if err := r.attachActivities(ctx, []*Lead{&l}); err != nil {
		return Lead{}, err
	}
	return l, nil
}

// DeleteLead removes a lead and its activity log.
func (r *Repo) DeleteLead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// GetLeadByID retrieves a lead with its activities.
func (r *Repo) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	l, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}

	if err := r.attachActivities(ctx, []*Lead{&l}); err != nil {
		return Lead{}, err
	}
	return l, nil
}

// ListLeads returns a filtered, paginated lead list with activities.
func (r *Repo) ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(company ILIKE $%d OR contact ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+params.Search+"%")
		argPos++
	}
	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, params.Status)
		argPos++
	}
	if params.Owner != "" {
		conditions = append(conditions, fmt.Sprintf("owner = $%d", argPos))
		args = append(args, params.Owner)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	sortColumn := "created_at"
	switch params.SortBy {
	case "nextStepDate":
		sortColumn = "next_step_date"
	case "estimatedValue":
		sortColumn = "estimated_value"
	case "updatedAt":
		sortColumn = "updated_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY %s %s NULLS LAST LIMIT $%d OFFSET $%d`,
		leadColumns, whereClause, sortColumn, sortOrder, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}

	refs := make([]*Lead, len(leads))
	for i := range leads {
		refs[i] = &leads[i]
	}
	if err := r.attachActivities(ctx, refs); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListDueFollowUps returns open leads whose planned next step date has
// passed.
func (r *Repo) ListDueFollowUps(ctx context.Context, before time.Time) ([]Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE next_step_date IS NOT NULL AND next_step_date <= $1 AND status NOT IN ($2, $3)
		ORDER BY next_step_date ASC`

	rows, err := r.pool.Query(ctx, query, before, domain.StatusGagne, domain.StatusPerdu)
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due follow-ups: %w", err)
	}
	return leads, nil
}

// AddActivity records an activity; a call also stamps the lead's
// last_contact in the same transaction.
func (r *Repo) AddActivity(ctx context.Context, params AddActivityParams) (Activity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Activity{}, fmt.Errorf("begin add activity: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`, params.LeadID).Scan(&exists); err != nil {
		return Activity{}, fmt.Errorf("check lead exists: %w", err)
	}
	if !exists {
		return Activity{}, apperr.NotFound(leadNotFoundMessage)
	}

	query := `
		INSERT INTO lead_activities (lead_id, type, content)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, type, content, created_at`

	var a Activity
	if err := tx.QueryRow(ctx, query, params.LeadID, params.Type, params.Content).Scan(
		&a.ID, &a.LeadID, &a.Type, &a.Content, &a.CreatedAt,
	); err != nil {
		return Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	if params.StampLastContact {
		if _, err := tx.Exec(ctx,
			`UPDATE leads SET last_contact = $2, updated_at = now() WHERE id = $1`,
			params.LeadID, a.CreatedAt,
		); err != nil {
			return Activity{}, fmt.Errorf("stamp last contact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Activity{}, fmt.Errorf("commit add activity: %w", err)
	}
	return a, nil
}

// RemoveActivity deletes one activity log entry.
func (r *Repo) RemoveActivity(ctx context.Context, leadID, activityID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM lead_activities WHERE id = $1 AND lead_id = $2`, activityID, leadID)
	if err != nil {
		return fmt.Errorf("remove activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(activityNotFoundMessage)
	}
	return nil
}

// attachActivities loads the activity logs for a batch of leads in one
// query, newest first.
func (r *Repo) attachActivities(ctx context.Context, leads []*Lead) error {
	for _, l := range leads {
		l.Activities = []Activity{}
	}
	if len(leads) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(leads))
	byID := make(map[uuid.UUID]*Lead, len(leads))
	for _, l := range leads {
		ids = append(ids, l.ID)
		byID[l.ID] = l
	}

	query := `
		SELECT id, lead_id, type, content, created_at
		FROM lead_activities
		WHERE lead_id = ANY($1)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Type, &a.Content, &a.CreatedAt); err != nil {
			return fmt.Errorf("scan activity: %w", err)
		}
		if l, ok := byID[a.LeadID]; ok {
			l.Activities = append(l.Activities, a)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate activities: %w", err)
	}
	return nil
}
