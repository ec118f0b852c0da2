package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/unirecords/internal/app/models"
	"github.com/yigit/unirecords/internal/pkg/fieldmap"
	"github.com/yigit/unirecords/internal/pkg/querylog"
)

// ResourceRepository runs the CRUD statements of one schema. Every statement
// goes through the caller's session so it is traced and runs on the
// request's connection.
type ResourceRepository struct {
	schema models.Schema
	sb     squirrel.StatementBuilderType
}

// NewResourceRepository creates a repository for schema using the given
// placeholder format.
func NewResourceRepository(schema models.Schema, placeholder squirrel.PlaceholderFormat) *ResourceRepository {
	return &ResourceRepository{
		schema: schema,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Schema returns the schema served by the repository.
func (r *ResourceRepository) Schema() models.Schema {
	return r.schema
}

func (r *ResourceRepository) columns() []string {
	return append([]string{r.schema.Key.Column}, r.schema.Fields.Columns()...)
}

// List returns every row of the table ordered by key.
func (r *ResourceRepository) List(ctx context.Context, session *querylog.Session) ([]fieldmap.Row, error) {
	query, args, err := r.sb.Select(r.columns()...).
		From(r.schema.Table).
		OrderBy(r.schema.Key.Column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list %s query: %w", r.schema.Table, err)
	}

	rows, err := session.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// FindByKey returns the row with the given key, or nil when there is none.
func (r *ResourceRepository) FindByKey(ctx context.Context, session *querylog.Session, key any) (fieldmap.Row, error) {
	query, args, err := r.sb.Select(r.columns()...).
		From(r.schema.Table).
		Where(squirrel.Eq{r.schema.Key.Column: key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get %s query: %w", r.schema.Table, err)
	}

	rows, err := session.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error getting %s by key: %w", r.schema.Table, err)
	}
	defer rows.Close()

	found, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// Insert creates a row from column values and returns its key.
func (r *ResourceRepository) Insert(ctx context.Context, session *querylog.Session, values []ColumnValue) (any, error) {
	columns := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, v := range values {
		columns = append(columns, v.Column)
		args = append(args, v.Value)
	}

	query, queryArgs, err := r.sb.Insert(r.schema.Table).
		Columns(columns...).
		Values(args...).
		Suffix("RETURNING " + r.schema.Key.Column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create %s query: %w", r.schema.Table, err)
	}

	rows, err := session.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("error creating %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error creating %s: %w", r.schema.Table, err)
		}
		return nil, fmt.Errorf("error creating %s: no key returned", r.schema.Table)
	}

	var key any
	if err := rows.Scan(&key); err != nil {
		return nil, fmt.Errorf("error scanning %s key: %w", r.schema.Table, err)
	}
	// drain so constraint errors raised after the first row surface here
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error creating %s: %w", r.schema.Table, err)
	}
	return normalizeValue(key), nil
}

// Update writes the given column values to the row with key.
func (r *ResourceRepository) Update(ctx context.Context, session *querylog.Session, key any, values []ColumnValue) error {
	builder := r.sb.Update(r.schema.Table)
	for _, v := range values {
		builder = builder.Set(v.Column, v.Value)
	}

	query, args, err := builder.
		Where(squirrel.Eq{r.schema.Key.Column: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update %s query: %w", r.schema.Table, err)
	}

	if _, err := session.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error updating %s: %w", r.schema.Table, err)
	}
	return nil
}

// Delete removes the row with key.
func (r *ResourceRepository) Delete(ctx context.Context, session *querylog.Session, key any) error {
	query, args, err := r.sb.Delete(r.schema.Table).
		Where(squirrel.Eq{r.schema.Key.Column: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete %s query: %w", r.schema.Table, err)
	}

	if _, err := session.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error deleting %s: %w", r.schema.Table, err)
	}
	return nil
}

// ColumnValue is one bound column of an insert or update.
type ColumnValue struct {
	Column string
	Value  any
}

func scanRows(rows *querylog.Rows) ([]fieldmap.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading columns: %w", err)
	}

	result := []fieldmap.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		row := make(fieldmap.Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// normalizeValue converts driver values to JSON friendly ones.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
