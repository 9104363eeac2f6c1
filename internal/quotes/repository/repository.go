package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"atelier_erp_backend/internal/quotes/domain"
	"atelier_erp_backend/platform/apperr"
)

const engagementNotFoundMessage = "engagement not found"

// uniqueViolation is the Postgres error code raised when a document
// number collides; callers retry with a fresh allocation.
const uniqueViolation = "23505"

const engagementColumns = `id, client_id, company_id, kind, status, quote_status, quote_number, quote_name,
	invoice_number, invoice_vat_enabled, scheduled_at, services, support_type, support_detail,
	additional_charge, contact_ids, assigned_user_ids, send_history, created_at, updated_at`

// Repo implements the engagements repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new engagements repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type row interface {
	Scan(dest ...any) error
}

func scanEngagement(r row) (Engagement, error) {
	var e Engagement
	var servicesJSON, historyJSON []byte
	var createdAt, updatedAt time.Time
	if err := r.Scan(
		&e.ID, &e.ClientID, &e.CompanyID, &e.Kind, &e.Status, &e.QuoteStatus, &e.QuoteNumber, &e.QuoteName,
		&e.InvoiceNumber, &e.InvoiceVATEnabled, &e.ScheduledAt, &servicesJSON, &e.SupportType, &e.SupportDetail,
		&e.AdditionalCharge, &e.ContactIDs, &e.AssignedUserIDs, &historyJSON, &createdAt, &updatedAt,
	); err != nil {
		return Engagement{}, err
	}

	if len(servicesJSON) > 0 {
		if err := json.Unmarshal(servicesJSON, &e.Services); err != nil {
			return Engagement{}, fmt.Errorf("decode engagement services: %w", err)
		}
	}
	if e.Services == nil {
		e.Services = make([]domain.ServiceLine, 0)
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &e.SendHistory); err != nil {
			return Engagement{}, fmt.Errorf("decode send history: %w", err)
		}
	}
	if e.SendHistory == nil {
		e.SendHistory = make([]domain.SendRecord, 0)
	}
	if e.ContactIDs == nil {
		e.ContactIDs = make([]uuid.UUID, 0)
	}
	if e.AssignedUserIDs == nil {
		e.AssignedUserIDs = make([]uuid.UUID, 0)
	}

	e.CreatedAt = createdAt.Format(time.RFC3339)
	e.UpdatedAt = updatedAt.Format(time.RFC3339)
	return e, nil
}

func encodeServices(services []domain.ServiceLine) ([]byte, error) {
	if services == nil {
		services = make([]domain.ServiceLine, 0)
	}
	data, err := json.Marshal(services)
	if err != nil {
		return nil, fmt.Errorf("encode engagement services: %w", err)
	}
	return data, nil
}

func encodeHistory(history []domain.SendRecord) ([]byte, error) {
	if history == nil {
		history = make([]domain.SendRecord, 0)
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode send history: %w", err)
	}
	return data, nil
}

func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("document number already allocated")
	}
	return nil
}

// CreateEngagement creates an engagement row. A colliding quote or
// invoice number surfaces as a conflict the caller can retry.
func (r *Repo) CreateEngagement(ctx context.Context, params CreateEngagementParams) (Engagement, error) {
	servicesJSON, err := encodeServices(params.Services)
	if err != nil {
		return Engagement{}, err
	}

	contactIDs := params.ContactIDs
	if contactIDs == nil {
		contactIDs = []uuid.UUID{}
	}
	assigned := params.AssignedUserIDs
	if assigned == nil {
		assigned = []uuid.UUID{}
	}

	query := fmt.Sprintf(`
		INSERT INTO engagements (
			client_id, company_id, kind, status, quote_status, quote_number, quote_name,
			invoice_number, invoice_vat_enabled, scheduled_at, services, support_type, support_detail,
			additional_charge, contact_ids, assigned_user_ids, send_history
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, '[]'::jsonb)
		RETURNING %s`, engagementColumns)

	e, err := scanEngagement(r.pool.QueryRow(ctx, query,
		params.ClientID, params.CompanyID, params.Kind, params.Status, params.QuoteStatus,
		params.QuoteNumber, params.QuoteName, params.InvoiceNumber, params.InvoiceVATEnabled,
		params.ScheduledAt, servicesJSON, params.SupportType, params.SupportDetail,
		params.AdditionalCharge, contactIDs, assigned,
	))
	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			return Engagement{}, conflict
		}
		return Engagement{}, fmt.Errorf("create engagement: %w", err)
	}
	return e, nil
}

// UpdateEngagement updates the editable fields of an engagement.
func (r *Repo) UpdateEngagement(ctx context.Context, params UpdateEngagementParams) (Engagement, error) {
	var servicesJSON []byte
	if params.ReplaceServices {
		var err error
		servicesJSON, err = encodeServices(params.Services)
		if err != nil {
			return Engagement{}, err
		}
	}

	query := fmt.Sprintf(`
		UPDATE engagements
		SET company_id = COALESCE($2, company_id),
			quote_name = COALESCE($3, quote_name),
			invoice_vat_enabled = COALESCE($4, invoice_vat_enabled),
			scheduled_at = COALESCE($5, scheduled_at),
			services = CASE WHEN $6 THEN $7::jsonb ELSE services END,
			support_type = COALESCE($8, support_type),
			support_detail = COALESCE($9, support_detail),
			additional_charge = COALESCE($10, additional_charge),
			contact_ids = COALESCE($11, contact_ids),
			assigned_user_ids = COALESCE($12, assigned_user_ids),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, engagementColumns)

	e, err := scanEngagement(r.pool.QueryRow(ctx, query,
		params.ID, params.CompanyID, params.QuoteName, params.InvoiceVATEnabled, params.ScheduledAt,
		params.ReplaceServices, servicesJSON, params.SupportType, params.SupportDetail,
		params.AdditionalCharge, params.ContactIDs, params.AssignedUserIDs,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Engagement{}, apperr.NotFound(engagementNotFoundMessage)
		}
		return Engagement{}, fmt.Errorf("update engagement: %w", err)
	}
	return e, nil
}

// SaveState persists the result of a lifecycle transition in one write.
func (r *Repo) SaveState(ctx context.Context, params SaveStateParams) (Engagement, error) {
	historyJSON, err := encodeHistory(params.SendHistory)
	if err != nil {
		return Engagement{}, err
	}
	contactIDs := params.ContactIDs
	if contactIDs == nil {
		contactIDs = []uuid.UUID{}
	}

	query := fmt.Sprintf(`
		UPDATE engagements
		SET kind = $2,
			status = $3,
			quote_status = $4,
			invoice_number = COALESCE($5, invoice_number),
			scheduled_at = COALESCE($6, scheduled_at),
			send_history = $7::jsonb,
			contact_ids = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, engagementColumns)

	e, err := scanEngagement(r.pool.QueryRow(ctx, query,
		params.ID, params.Kind, params.Status, params.QuoteStatus,
		params.InvoiceNumber, params.ScheduledAt, historyJSON, contactIDs,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Engagement{}, apperr.NotFound(engagementNotFoundMessage)
		}
		if conflict := asConflict(err); conflict != nil {
			return Engagement{}, conflict
		}
		return Engagement{}, fmt.Errorf("save engagement state: %w", err)
	}
	return e, nil
}

// DeleteEngagement deletes an engagement.
func (r *Repo) DeleteEngagement(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM engagements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete engagement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(engagementNotFoundMessage)
	}
	return nil
}

// GetEngagementByID retrieves an engagement by ID.
func (r *Repo) GetEngagementByID(ctx context.Context, id uuid.UUID) (Engagement, error) {
	query := fmt.Sprintf(`SELECT %s FROM engagements WHERE id = $1`, engagementColumns)

	e, err := scanEngagement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Engagement{}, apperr.NotFound(engagementNotFoundMessage)
		}
		return Engagement{}, fmt.Errorf("get engagement by id: %w", err)
	}
	return e, nil
}

// ListEngagements lists engagements with filters and pagination.
func (r *Repo) ListEngagements(ctx context.Context, params ListEngagementsParams) ([]Engagement, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.ClientID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("client_id = $%d", argIdx))
		args = append(args, *params.ClientID)
		argIdx++
	}
	if params.Kind != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, params.Kind)
		argIdx++
	}
	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM engagements WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count engagements: %w", err)
	}

	sortColumn := "created_at"
	switch params.SortBy {
	case "scheduledAt":
		sortColumn = "scheduled_at"
	case "updatedAt":
		sortColumn = "updated_at"
	}
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM engagements
		WHERE %s
		ORDER BY %s %s NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d
	`, engagementColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list engagements: %w", err)
	}
	defer rows.Close()

	items := make([]Engagement, 0)
	for rows.Next() {
		e, err := scanEngagement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan engagement: %w", err)
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate engagements: %w", rows.Err())
	}
	return items, total, nil
}

// ListAllEngagements returns every engagement; document numbering scans
// this snapshot.
func (r *Repo) ListAllEngagements(ctx context.Context) ([]Engagement, error) {
	query := fmt.Sprintf(`SELECT %s FROM engagements ORDER BY created_at DESC`, engagementColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all engagements: %w", err)
	}
	defer rows.Close()

	items := make([]Engagement, 0)
	for rows.Next() {
		e, err := scanEngagement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan engagement: %w", err)
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate engagements: %w", rows.Err())
	}
	return items, nil
}
