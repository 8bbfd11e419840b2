package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// timeNow is the clock used for timestamps written by the application
var timeNow = func() time.Time { return time.Now().UTC() }

// pgUniqueViolation is the SQLSTATE for unique constraint violations
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Items      []*T
	Page       int
	PageSize   int
	TotalItems int64
}

// TotalPages returns the number of pages needed for TotalItems
func (p *Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// table is the generic row store shared by every repository. Rows are mapped onto T through
// its db tags, so columns must list exactly the tagged fields of T. Table, column and where
// fragments always come from repository constants, never from user input.
type table[T any] struct {
	q        queryable
	name     string
	columns  []string
	keys     []string
	writable map[string]bool
	orderBy  string
}

func newTable[T any](q queryable, name string, columns, keys, writable []string, orderBy string) table[T] {
	w := make(map[string]bool, len(writable))
	for _, c := range writable {
		w[c] = true
	}
	return table[T]{
		q:        q,
		name:     name,
		columns:  columns,
		keys:     keys,
		writable: w,
		orderBy:  orderBy,
	}
}

func (t table[T]) selectList() string {
	return strings.Join(t.columns, ", ")
}

func (t table[T]) keyClause(offset int) string {
	parts := make([]string, len(t.keys))
	for i, k := range t.keys {
		parts[i] = fmt.Sprintf("%s = $%d", k, i+offset+1)
	}
	return strings.Join(parts, " AND ")
}

func (t table[T]) checkKeys(keys []any) error {
	if len(keys) != len(t.keys) {
		return fmt.Errorf("%s: expected %d key values, got %d", t.name, len(t.keys), len(keys))
	}
	return nil
}

func (t table[T]) collect(ctx context.Context, query string, args ...any) ([]*T, error) {
	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
}

func (t table[T]) collectOne(ctx context.Context, query string, args ...any) (*T, error) {
	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// get returns the row with the given key, or (nil, nil) when absent
func (t table[T]) get(ctx context.Context, keys ...any) (*T, error) {
	if err := t.checkKeys(keys); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", t.selectList(), t.name, t.keyClause(0))
	item, err := t.collectOne(ctx, query, keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %v: %w", t.name, keys, err)
	}
	return item, nil
}

// getAll returns every row in the default order; limit <= 0 means no limit
func (t table[T]) getAll(ctx context.Context, limit int) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", t.selectList(), t.name, t.orderBy)
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	items, err := t.collect(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	return items, nil
}

// find returns the rows matching a where fragment in the default order
func (t table[T]) find(ctx context.Context, where string, args ...any) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s", t.selectList(), t.name, where, t.orderBy)
	items, err := t.collect(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	return items, nil
}

// insert writes a new row from the given column values and returns it
func (t table[T]) insert(ctx context.Context, values map[string]any) (*T, error) {
	cols, args, err := t.writableColumns(values)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "), t.selectList())

	item, err := t.collectOne(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", t.name, err)
	}
	return item, nil
}

// update sets the given columns on the keyed row and returns the updated row,
// or (nil, nil) when no row matched
func (t table[T]) update(ctx context.Context, values map[string]any, keys ...any) (*T, error) {
	if err := t.checkKeys(keys); err != nil {
		return nil, err
	}
	cols, args, err := t.writableColumns(values)
	if err != nil {
		return nil, err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
		t.name, strings.Join(sets, ", "), t.keyClause(len(cols)), t.selectList())

	item, err := t.collectOne(ctx, query, append(args, keys...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %v: %w", t.name, keys, err)
	}
	return item, nil
}

// delete removes the keyed row and reports whether it existed
func (t table[T]) delete(ctx context.Context, keys ...any) (bool, error) {
	if err := t.checkKeys(keys); err != nil {
		return false, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", t.name, t.keyClause(0))
	tag, err := t.q.Exec(ctx, query, keys...)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s %v: %w", t.name, keys, err)
	}
	return tag.RowsAffected() > 0, nil
}

// exists reports whether the keyed row is present
func (t table[T]) exists(ctx context.Context, keys ...any) (bool, error) {
	if err := t.checkKeys(keys); err != nil {
		return false, err
	}
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", t.name, t.keyClause(0))
	var found bool
	if err := t.q.QueryRow(ctx, query, keys...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check %s %v: %w", t.name, keys, err)
	}
	return found, nil
}

// deleteWhere removes all rows matching a where fragment and returns how many were removed
func (t table[T]) deleteWhere(ctx context.Context, where string, args ...any) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", t.name, where)
	tag, err := t.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return tag.RowsAffected(), nil
}

// count returns the number of rows matching a where fragment; an empty fragment counts all rows
func (t table[T]) count(ctx context.Context, where string, args ...any) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.name)
	if where != "" {
		query += " WHERE " + where
	}
	var n int64
	if err := t.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	return n, nil
}

// paginate returns one page (1-based) of rows matching a where fragment
func (t table[T]) paginate(ctx context.Context, page, pageSize int, where string, args ...any) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total, err := t.count(ctx, where, args...)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", t.selectList(), t.name)
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", t.orderBy, len(args)+1, len(args)+2)

	items, err := t.collect(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("failed to page %s: %w", t.name, err)
	}

	return &Page[T]{Items: items, Page: page, PageSize: pageSize, TotalItems: total}, nil
}

// writableColumns validates and orders column values for insert/update statements
func (t table[T]) writableColumns(values map[string]any) ([]string, []any, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%s: no columns to write", t.name)
	}

	cols := make([]string, 0, len(values))
	for c := range values {
		if !t.writable[c] {
			return nil, nil, fmt.Errorf("%s: column %q is not writable", t.name, c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = values[c]
	}
	return cols, args, nil
}
