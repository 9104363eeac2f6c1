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
	clientNotFoundMessage  = "client not found"
	contactNotFoundMessage = "contact not found"
)

const clientColumns = `id, type, name, company_name, first_name, last_name, siret, email, phone, address, city, status, tags, created_at, updated_at`

// Repo implements the clients repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type row interface {
	Scan(dest ...any) error
}

func scanClient(r row) (Client, error) {
	var c Client
	var createdAt, updatedAt time.Time
	if err := r.Scan(
		&c.ID, &c.Type, &c.Name, &c.CompanyName, &c.FirstName, &c.LastName,
		&c.SIRET, &c.Email, &c.Phone, &c.Address, &c.City, &c.Status, &c.Tags,
		&createdAt, &updatedAt,
	); err != nil {
		return Client{}, err
	}
	c.CreatedAt = createdAt.Format(time.RFC3339)
	c.UpdatedAt = updatedAt.Format(time.RFC3339)
	return c, nil
}

// CreateClient creates a client row.
func (r *Repo) CreateClient(ctx context.Context, params CreateClientParams) (Client, error) {
	query := fmt.Sprintf(`
		INSERT INTO clients (type, name, company_name, first_name, last_name, siret, email, phone, address, city, status, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`, clientColumns)

	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	c, err := scanClient(r.pool.QueryRow(ctx, query,
		params.Type, params.Name, params.CompanyName, params.FirstName, params.LastName,
		params.SIRET, params.Email, params.Phone, params.Address, params.City, params.Status, tags,
	))
	if err != nil {
		return Client{}, fmt.Errorf("create client: %w", err)
	}
	c.Contacts = make([]Contact, 0)
	return c, nil
}

// UpdateClient updates a client row.
func (r *Repo) UpdateClient(ctx context.Context, params UpdateClientParams) (Client, error) {
	query := fmt.Sprintf(`
		UPDATE clients
		SET name = COALESCE($2, name),
			company_name = COALESCE($3, company_name),
			siret = COALESCE($4, siret),
			email = COALESCE($5, email),
			phone = COALESCE($6, phone),
			address = COALESCE($7, address),
			city = COALESCE($8, city),
			status = COALESCE($9, status),
			tags = COALESCE($10, tags),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, clientColumns)

	c, err := scanClient(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.CompanyName, params.SIRET, params.Email,
		params.Phone, params.Address, params.City, params.Status, params.Tags,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, apperr.NotFound(clientNotFoundMessage)
		}
		return Client{}, fmt.Errorf("update client: %w", err)
	}

	if err := r.attachContacts(ctx, []*Client{&c}); err != nil {
		return Client{}, err
	}
	return c, nil
}

// GetClientByID retrieves a client with all its contacts, inactive included.
func (r *Repo) GetClientByID(ctx context.Context, id uuid.UUID) (Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)

	c, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, apperr.NotFound(clientNotFoundMessage)
		}
		return Client{}, fmt.Errorf("get client by id: %w", err)
	}

	if err := r.attachContacts(ctx, []*Client{&c}); err != nil {
		return Client{}, err
	}
	return c, nil
}

// ListClients lists clients with filters and pagination.
func (r *Repo) ListClients(ctx context.Context, params ListClientsParams) ([]Client, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR siret ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}
	if params.Type != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, params.Type)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM clients WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	sortColumn := "name"
	switch params.SortBy {
	case "status":
		sortColumn = "status"
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
		SELECT %s FROM clients
		WHERE %s
		ORDER BY %s %s, name ASC
		LIMIT $%d OFFSET $%d
	`, clientColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate clients: %w", rows.Err())
	}

	refs := make([]*Client, len(items))
	for i := range items {
		refs[i] = &items[i]
	}
	if err := r.attachContacts(ctx, refs); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAllWithContacts returns the full client snapshot used by the
// identity resolver.
func (r *Repo) ListAllWithContacts(ctx context.Context) ([]Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients ORDER BY created_at ASC`, clientColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all clients: %w", err)
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate clients: %w", rows.Err())
	}

	refs := make([]*Client, len(items))
	for i := range items {
		refs[i] = &items[i]
	}
	if err := r.attachContacts(ctx, refs); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) attachContacts(ctx context.Context, clients []*Client) error {
	if len(clients) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(clients))
	index := make(map[uuid.UUID]*Client, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
		index[c.ID] = c
		c.Contacts = make([]Contact, 0)
	}

	query := `
		SELECT id, client_id, first_name, last_name, email, mobile, roles, is_billing_default, active, created_at, updated_at
		FROM client_contacts
		WHERE client_id = ANY($1)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load client contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contact Contact
		var createdAt, updatedAt time.Time
		if err := rows.Scan(
			&contact.ID, &contact.ClientID, &contact.FirstName, &contact.LastName,
			&contact.Email, &contact.Mobile, &contact.Roles, &contact.IsBillingDefault,
			&contact.Active, &createdAt, &updatedAt,
		); err != nil {
			return fmt.Errorf("scan client contact: %w", err)
		}
		contact.CreatedAt = createdAt.Format(time.RFC3339)
		contact.UpdatedAt = updatedAt.Format(time.RFC3339)
		index[contact.ClientID].Contacts = append(index[contact.ClientID].Contacts, contact)
	}
	if rows.Err() != nil {
		return fmt.Errorf("iterate client contacts: %w", rows.Err())
	}
	return nil
}

// CreateContact creates a contact row; when it takes the billing default
// the previous holder is demoted in the same transaction.
func (r *Repo) CreateContact(ctx context.Context, params CreateContactParams) (Contact, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Contact{}, fmt.Errorf("begin create contact: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)`, params.ClientID).Scan(&exists); err != nil {
		return Contact{}, fmt.Errorf("check client exists: %w", err)
	}
	if !exists {
		return Contact{}, apperr.NotFound(clientNotFoundMessage)
	}

	if params.IsBillingDefault {
		if _, err := tx.Exec(ctx, `UPDATE client_contacts SET is_billing_default = FALSE, updated_at = now() WHERE client_id = $1 AND is_billing_default`, params.ClientID); err != nil {
			return Contact{}, fmt.Errorf("demote billing default: %w", err)
		}
	}

	roles := params.Roles
	if roles == nil {
		roles = []string{}
	}

	query := `
		INSERT INTO client_contacts (client_id, first_name, last_name, email, mobile, roles, is_billing_default, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING id, client_id, first_name, last_name, email, mobile, roles, is_billing_default, active, created_at, updated_at`

	var contact Contact
	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(ctx, query,
		params.ClientID, params.FirstName, params.LastName, params.Email, params.Mobile, roles, params.IsBillingDefault,
	).Scan(
		&contact.ID, &contact.ClientID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.Mobile, &contact.Roles, &contact.IsBillingDefault,
		&contact.Active, &createdAt, &updatedAt,
	); err != nil {
		return Contact{}, fmt.Errorf("create contact: %w", err)
	}
	contact.CreatedAt = createdAt.Format(time.RFC3339)
	contact.UpdatedAt = updatedAt.Format(time.RFC3339)

	if err := tx.Commit(ctx); err != nil {
		return Contact{}, fmt.Errorf("commit create contact: %w", err)
	}
	return contact, nil
}

// UpdateContact updates a contact row.
func (r *Repo) UpdateContact(ctx context.Context, params UpdateContactParams) (Contact, error) {
	query := `
		UPDATE client_contacts
		SET first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			email = COALESCE($5, email),
			mobile = COALESCE($6, mobile),
			roles = COALESCE($7, roles),
			updated_at = now()
		WHERE id = $1 AND client_id = $2
		RETURNING id, client_id, first_name, last_name, email, mobile, roles, is_billing_default, active, created_at, updated_at`

	var contact Contact
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		params.ID, params.ClientID, params.FirstName, params.LastName, params.Email, params.Mobile, params.Roles,
	).Scan(
		&contact.ID, &contact.ClientID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.Mobile, &contact.Roles, &contact.IsBillingDefault,
		&contact.Active, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return Contact{}, fmt.Errorf("update contact: %w", err)
	}
	contact.CreatedAt = createdAt.Format(time.RFC3339)
	contact.UpdatedAt = updatedAt.Format(time.RFC3339)
	return contact, nil
}

// DeactivateContact soft-deletes a contact.
func (r *Repo) DeactivateContact(ctx context.Context, clientID, contactID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE client_contacts SET active = FALSE, is_billing_default = FALSE, updated_at = now() WHERE id = $1 AND client_id = $2`,
		contactID, clientID)
	if err != nil {
		return fmt.Errorf("deactivate contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMessage)
	}
	return nil
}

// RestoreContact reactivates a soft-deleted contact.
func (r *Repo) RestoreContact(ctx context.Context, clientID, contactID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE client_contacts SET active = TRUE, updated_at = now() WHERE id = $1 AND client_id = $2`,
		contactID, clientID)
	if err != nil {
		return fmt.Errorf("restore contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMessage)
	}
	return nil
}

// SetBillingDefault makes a contact the billing default and demotes every
// other contact of the client, keeping at most one holder.
func (r *Repo) SetBillingDefault(ctx context.Context, clientID, contactID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set billing default: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE client_contacts SET is_billing_default = FALSE, updated_at = now() WHERE client_id = $1 AND is_billing_default`,
		clientID); err != nil {
		return fmt.Errorf("demote billing default: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE client_contacts SET is_billing_default = TRUE, updated_at = now() WHERE id = $1 AND client_id = $2 AND active`,
		contactID, clientID)
	if err != nil {
		return fmt.Errorf("set billing default: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMessage)
	}

	return tx.Commit(ctx)
}
