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

	"atelier_erp_backend/platform/apperr"
)

const (
	prestationNotFoundMessage = "prestation not found"
	categoryNotFoundMessage   = "category not found"
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreatePrestation creates a prestation and its options in one transaction.
func (r *Repo) CreatePrestation(ctx context.Context, params CreatePrestationParams) (Prestation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Prestation{}, fmt.Errorf("begin create prestation: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO catalog_prestations (name, description, base_price_ht, base_duration_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, base_price_ht, base_duration_min, created_at, updated_at`

	var p Prestation
	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(ctx, query, params.Name, params.Description, params.BasePriceHT, params.BaseDurationMin).Scan(
		&p.ID, &p.Name, &p.Description, &p.BasePriceHT, &p.BaseDurationMin, &createdAt, &updatedAt,
	); err != nil {
		return Prestation{}, fmt.Errorf("create prestation: %w", err)
	}
	p.CreatedAt = createdAt.Format(time.RFC3339)
	p.UpdatedAt = updatedAt.Format(time.RFC3339)

	p.Options, err = insertOptions(ctx, tx, p.ID, params.Options)
	if err != nil {
		return Prestation{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Prestation{}, fmt.Errorf("commit create prestation: %w", err)
	}
	return p, nil
}

func insertOptions(ctx context.Context, tx pgx.Tx, prestationID uuid.UUID, options []OptionParams) ([]Option, error) {
	query := `
		INSERT INTO catalog_prestation_options (prestation_id, label, price_ht, duration_min, sub_category_id, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	result := make([]Option, 0, len(options))
	for i, opt := range options {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, query, prestationID, opt.Label, opt.PriceHT, opt.DurationMin, opt.SubCategoryID, i).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert prestation option: %w", err)
		}
		result = append(result, Option{
			ID:            id,
			PrestationID:  prestationID,
			Label:         opt.Label,
			PriceHT:       opt.PriceHT,
			DurationMin:   opt.DurationMin,
			SubCategoryID: opt.SubCategoryID,
			Position:      i,
		})
	}
	return result, nil
}

// UpdatePrestation updates a prestation; a ReplaceOptions payload swaps the
// option list atomically.
func (r *Repo) UpdatePrestation(ctx context.Context, params UpdatePrestationParams) (Prestation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Prestation{}, fmt.Errorf("begin update prestation: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE catalog_prestations
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			base_price_ht = CASE WHEN $6 THEN NULL ELSE COALESCE($4, base_price_ht) END,
			base_duration_min = CASE WHEN $7 THEN NULL ELSE COALESCE($5, base_duration_min) END,
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, base_price_ht, base_duration_min, created_at, updated_at`

	var p Prestation
	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(ctx, query,
		params.ID, params.Name, params.Description, params.BasePriceHT, params.BaseDurationMin,
		params.ClearBasePrice, params.ClearBaseDur,
	).Scan(&p.ID, &p.Name, &p.Description, &p.BasePriceHT, &p.BaseDurationMin, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prestation{}, apperr.NotFound(prestationNotFoundMessage)
		}
		return Prestation{}, fmt.Errorf("update prestation: %w", err)
	}
	p.CreatedAt = createdAt.Format(time.RFC3339)
	p.UpdatedAt = updatedAt.Format(time.RFC3339)

	if params.ReplaceOptions {
		if _, err := tx.Exec(ctx, `DELETE FROM catalog_prestation_options WHERE prestation_id = $1`, p.ID); err != nil {
			return Prestation{}, fmt.Errorf("clear prestation options: %w", err)
		}
		p.Options, err = insertOptions(ctx, tx, p.ID, params.Options)
		if err != nil {
			return Prestation{}, err
		}
	} else {
		p.Options, err = loadOptions(ctx, tx, []uuid.UUID{p.ID})
		if err != nil {
			return Prestation{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Prestation{}, fmt.Errorf("commit update prestation: %w", err)
	}
	return p, nil
}

// DeletePrestation deletes a prestation; options cascade.
func (r *Repo) DeletePrestation(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM catalog_prestations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prestation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(prestationNotFoundMessage)
	}
	return nil
}

// GetPrestationByID retrieves a prestation with its options.
func (r *Repo) GetPrestationByID(ctx context.Context, id uuid.UUID) (Prestation, error) {
	query := `
		SELECT id, name, description, base_price_ht, base_duration_min, created_at, updated_at
		FROM catalog_prestations
		WHERE id = $1`

	var p Prestation
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.BasePriceHT, &p.BaseDurationMin, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prestation{}, apperr.NotFound(prestationNotFoundMessage)
		}
		return Prestation{}, fmt.Errorf("get prestation by id: %w", err)
	}
	p.CreatedAt = createdAt.Format(time.RFC3339)
	p.UpdatedAt = updatedAt.Format(time.RFC3339)

	options, err := loadOptions(ctx, r.pool, []uuid.UUID{p.ID})
	if err != nil {
		return Prestation{}, err
	}
	p.Options = options
	return p, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadOptions(ctx context.Context, q querier, prestationIDs []uuid.UUID) ([]Option, error) {
	query := `
		SELECT id, prestation_id, label, price_ht, duration_min, sub_category_id, position
		FROM catalog_prestation_options
		WHERE prestation_id = ANY($1)
		ORDER BY prestation_id, position ASC`

	rows, err := q.Query(ctx, query, prestationIDs)
	if err != nil {
		return nil, fmt.Errorf("load prestation options: %w", err)
	}
	defer rows.Close()

	options := make([]Option, 0)
	for rows.Next() {
		var opt Option
		if err := rows.Scan(&opt.ID, &opt.PrestationID, &opt.Label, &opt.PriceHT, &opt.DurationMin, &opt.SubCategoryID, &opt.Position); err != nil {
			return nil, fmt.Errorf("scan prestation option: %w", err)
		}
		options = append(options, opt)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate prestation options: %w", rows.Err())
	}
	return options, nil
}

// ListPrestations lists prestations with filters and pagination.
func (r *Repo) ListPrestations(ctx context.Context, params ListPrestationsParams) ([]Prestation, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM catalog_prestations WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prestations: %w", err)
	}

	sortColumn := "name"
	switch params.SortBy {
	case "createdAt":
		sortColumn = "created_at"
	case "updatedAt":
		sortColumn = "updated_at"
	}
	sortOrder := "ASC"
	if params.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, name, description, base_price_ht, base_duration_min, created_at, updated_at
		FROM catalog_prestations
		WHERE %s
		ORDER BY %s %s, name ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list prestations: %w", err)
	}
	defer rows.Close()

	items, err := scanPrestations(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachOptions(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAllPrestations returns the full catalog snapshot used to build a
// pricing lookup.
func (r *Repo) ListAllPrestations(ctx context.Context) ([]Prestation, error) {
	query := `
		SELECT id, name, description, base_price_ht, base_duration_min, created_at, updated_at
		FROM catalog_prestations
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all prestations: %w", err)
	}
	defer rows.Close()

	items, err := scanPrestations(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachOptions(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func scanPrestations(rows pgx.Rows) ([]Prestation, error) {
	items := make([]Prestation, 0)
	for rows.Next() {
		var p Prestation
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.BasePriceHT, &p.BaseDurationMin, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan prestation: %w", err)
		}
		p.CreatedAt = createdAt.Format(time.RFC3339)
		p.UpdatedAt = updatedAt.Format(time.RFC3339)
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate prestations: %w", rows.Err())
	}
	return items, nil
}

func (r *Repo) attachOptions(ctx context.Context, items []Prestation) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
		index[items[i].ID] = i
		items[i].Options = make([]Option, 0)
	}

	options, err := loadOptions(ctx, r.pool, ids)
	if err != nil {
		return err
	}
	for _, opt := range options {
		i := index[opt.PrestationID]
		items[i].Options = append(items[i].Options, opt)
	}
	return nil
}

// CreateCategory creates a category node.
func (r *Repo) CreateCategory(ctx context.Context, params CreateCategoryParams) (Category, error) {
	query := `
		INSERT INTO catalog_categories (name, parent_id, price_ht, default_duration_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, parent_id, price_ht, default_duration_min, created_at, updated_at`

	var cat Category
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, params.Name, params.ParentID, params.PriceHT, params.DefaultDurationMin).Scan(
		&cat.ID, &cat.Name, &cat.ParentID, &cat.PriceHT, &cat.DefaultDurationMin, &createdAt, &updatedAt,
	); err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	cat.CreatedAt = createdAt.Format(time.RFC3339)
	cat.UpdatedAt = updatedAt.Format(time.RFC3339)
	return cat, nil
}

// UpdateCategory updates a category node. The parent link is immutable.
func (r *Repo) UpdateCategory(ctx context.Context, params UpdateCategoryParams) (Category, error) {
	query := `
		UPDATE catalog_categories
		SET name = COALESCE($2, name),
			price_ht = COALESCE($3, price_ht),
			default_duration_min = COALESCE($4, default_duration_min),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, parent_id, price_ht, default_duration_min, created_at, updated_at`

	var cat Category
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, params.ID, params.Name, params.PriceHT, params.DefaultDurationMin).Scan(
		&cat.ID, &cat.Name, &cat.ParentID, &cat.PriceHT, &cat.DefaultDurationMin, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound(categoryNotFoundMessage)
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	cat.CreatedAt = createdAt.Format(time.RFC3339)
	cat.UpdatedAt = updatedAt.Format(time.RFC3339)
	return cat, nil
}

// DeleteCategory deletes a category node.
func (r *Repo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM catalog_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(categoryNotFoundMessage)
	}
	return nil
}

// GetCategoryByID retrieves a category by ID.
func (r *Repo) GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error) {
	query := `
		SELECT id, name, parent_id, price_ht, default_duration_min, created_at, updated_at
		FROM catalog_categories
		WHERE id = $1`

	var cat Category
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cat.ID, &cat.Name, &cat.ParentID, &cat.PriceHT, &cat.DefaultDurationMin, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound(categoryNotFoundMessage)
		}
		return Category{}, fmt.Errorf("get category by id: %w", err)
	}
	cat.CreatedAt = createdAt.Format(time.RFC3339)
	cat.UpdatedAt = updatedAt.Format(time.RFC3339)
	return cat, nil
}

// ListCategories returns all category nodes, families first.
func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, parent_id, price_ht, default_duration_min, created_at, updated_at
		FROM catalog_categories
		ORDER BY parent_id NULLS FIRST, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]Category, 0)
	for rows.Next() {
		var cat Category
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ParentID, &cat.PriceHT, &cat.DefaultDurationMin, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.CreatedAt = createdAt.Format(time.RFC3339)
		cat.UpdatedAt = updatedAt.Format(time.RFC3339)
		items = append(items, cat)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate categories: %w", rows.Err())
	}
	return items, nil
}

// HasSubCategories checks whether a family still has sub-families.
func (r *Repo) HasSubCategories(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM catalog_categories WHERE parent_id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sub-categories: %w", err)
	}
	return exists, nil
}
