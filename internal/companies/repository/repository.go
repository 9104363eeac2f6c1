package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"atelier_erp_backend/platform/apperr"
)

const companyNotFoundMessage = "company not found"

const companyColumns = `id, name, legal_name, siret, vat_number, address, city, email, phone, vat_enabled, created_at, updated_at`

// Repo implements the companies repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new companies repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type row interface {
	Scan(dest ...any) error
}

func scanCompany(r row) (Company, error) {
	var c Company
	var createdAt, updatedAt time.Time
	if err := r.Scan(
		&c.ID, &c.Name, &c.LegalName, &c.SIRET, &c.VATNumber,
		&c.Address, &c.City, &c.Email, &c.Phone, &c.VATEnabled,
		&createdAt, &updatedAt,
	); err != nil {
		return Company{}, err
	}
	c.CreatedAt = createdAt.Format(time.RFC3339)
	c.UpdatedAt = updatedAt.Format(time.RFC3339)
	return c, nil
}

// CreateCompany creates a company.
func (r *Repo) CreateCompany(ctx context.Context, params CreateCompanyParams) (Company, error) {
	query := `
		INSERT INTO companies (name, legal_name, siret, vat_number, address, city, email, phone, vat_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + companyColumns

	c, err := scanCompany(r.pool.QueryRow(ctx, query,
		params.Name, params.LegalName, params.SIRET, params.VATNumber,
		params.Address, params.City, params.Email, params.Phone, params.VATEnabled,
	))
	if err != nil {
		return Company{}, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

// UpdateCompany updates a company's fields.
func (r *Repo) UpdateCompany(ctx context.Context, params UpdateCompanyParams) (Company, error) {
	query := `
		UPDATE companies
		SET name = COALESCE($2, name),
			legal_name = COALESCE($3, legal_name),
			siret = COALESCE($4, siret),
			vat_number = COALESCE($5, vat_number),
			address = COALESCE($6, address),
			city = COALESCE($7, city),
			email = COALESCE($8, email),
			phone = COALESCE($9, phone),
			vat_enabled = CASE WHEN $11 THEN NULL ELSE COALESCE($10, vat_enabled) END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + companyColumns

	c, err := scanCompany(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.LegalName, params.SIRET, params.VATNumber,
		params.Address, params.City, params.Email, params.Phone,
		params.VATEnabled, params.ClearVATOverride,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, apperr.NotFound(companyNotFoundMessage)
		}
		return Company{}, fmt.Errorf("update company: %w", err)
	}
	return c, nil
}

// DeleteCompany removes a company.
func (r *Repo) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(companyNotFoundMessage)
	}
	return nil
}

// GetCompanyByID retrieves a company by ID.
func (r *Repo) GetCompanyByID(ctx context.Context, id uuid.UUID) (Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	c, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, apperr.NotFound(companyNotFoundMessage)
		}
		return Company{}, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// ListCompanies returns all companies ordered by name.
func (r *Repo) ListCompanies(ctx context.Context) ([]Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}
