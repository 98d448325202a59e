package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/go-crud/internal/crud"
	"github.com/deppfellow/go-crud/internal/model"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, name, email, phone, notes, avatar_key, created_by, created_at, updated_at`

// AutocompleteLimit caps the rows returned to autocomplete widgets.
const AutocompleteLimit = 10

var contactSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
	"createdAt":  "created_at",
}

type ContactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ContactRepository) WithTx(tx pgx.Tx) *ContactRepository {
	return &ContactRepository{db: tx}
}

// GetByID returns pgx.ErrNoRows (wrapped with the table marker read by
// sqlerr.HandleError) when the contact does not exist.
func (r *ContactRepository) GetByID(ctx context.Context, id int64) (model.Contact, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("failed to query contact %d: %w", id, err)
	}

	contact, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Contact])
	if err != nil {
		return model.Contact{}, fmt.Errorf("table:contacts: %w", err)
	}

	return contact, nil
}

// FindByEmail returns the contact owning email, if any.
func (r *ContactRepository) FindByEmail(ctx context.Context, email string) (model.Contact, bool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return model.Contact{}, false, fmt.Errorf("failed to query contact by email: %w", err)
	}

	contact, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Contact])
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Contact{}, false, nil
	}
	if err != nil {
		return model.Contact{}, false, fmt.Errorf("failed to scan contact by email: %w", err)
	}

	return contact, true, nil
}

// Search returns the paginatable query for filter.
func (r *ContactRepository) Search(filter model.ContactFilter) crud.Query[model.Contact] {
	where, args := contactWhere(filter)
	return &contactQuery{
		db:      r.db,
		where:   where,
		args:    args,
		orderBy: contactOrderBy(filter),
	}
}

// Autocomplete returns id, name and email of contacts whose name or email starts
// with term. A non-empty createdBy restricts the suggestions to that owner.
func (r *ContactRepository) Autocomplete(ctx context.Context, term, createdBy string) ([]map[string]any, error) {
	sql, args := autocompleteQuery(term, createdBy)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact autocomplete: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (map[string]any, error) {
		var (
			id          int64
			name, email string
		)
		if err := row.Scan(&id, &name, &email); err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "name": name, "email": email}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact autocomplete: %w", err)
	}

	return results, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO contacts (name, email, phone, notes, avatar_key, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Email, c.Phone, c.Notes, c.AvatarKey, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, c *model.Contact) error {
	err := r.db.QueryRow(ctx, `
		UPDATE contacts
		SET name = $2, email = $3, phone = $4, notes = $5, avatar_key = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Email, c.Phone, c.Notes, c.AvatarKey,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("table:contacts: failed to update contact %d: %w", c.ID, err)
	}
	return nil
}

// Delete reports whether a row was removed.
func (r *ContactRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

type contactQuery struct {
	db      DBTX
	where   string
	args    []any
	orderBy string
}

func (q *contactQuery) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+q.where, q.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

func (q *contactQuery) Fetch(ctx context.Context, offset, limit int) ([]model.Contact, error) {
	n := len(q.args)
	sql := fmt.Sprintf(`SELECT %s FROM contacts%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		contactColumns, q.where, q.orderBy, n+1, n+2)

	args := append(append([]any{}, q.args...), limit, offset)

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}

	contacts, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Contact])
	if err != nil {
		return nil, fmt.Errorf("failed to scan contacts: %w", err)
	}

	return contacts, nil
}

func contactWhere(filter model.ContactFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if term := strings.TrimSpace(filter.Term); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func autocompleteQuery(term, createdBy string) (string, []any) {
	args := []any{escapeLike(term) + "%"}
	where := "(name ILIKE $1 OR email ILIKE $1)"

	if createdBy != "" {
		args = append(args, createdBy)
		where += fmt.Sprintf(" AND created_by = $%d", len(args))
	}

	args = append(args, AutocompleteLimit)
	sql := fmt.Sprintf(`SELECT id, name, email FROM contacts WHERE %s ORDER BY name LIMIT $%d`, where, len(args))

	return sql, args
}

func contactOrderBy(filter model.ContactFilter) string {
	column, ok := contactSortColumns[filter.Sort]
	if !ok {
		column = "id"
	}

	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}

	if column == "id" {
		return "id " + direction
	}
	return column + " " + direction + ", id ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
