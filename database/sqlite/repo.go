// Package sqlite implements the repo interfaces using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayoubd/filevault"
)

type Repo struct {
	db     *sql.DB
	tables Tables
}

func NewRepo(db *sql.DB, tables Tables) *Repo {
	return &Repo{db: db, tables: tables}
}

// Ping reports database connectivity without surfacing driver errors.
func (r *Repo) Ping(ctx context.Context) bool {
	return r.db.PingContext(ctx) == nil
}

// parseID coerces a caller-supplied identifier string to a UUID.
// A malformed identifier is no match, never an error.
func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (filevault.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, email, password_hash FROM %s WHERE email = ?`, quoteIdentifier(r.tables.Users))

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (filevault.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return filevault.User{}, filevault.ErrNotFound
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, email, password_hash FROM %s WHERE id = ?`, quoteIdentifier(r.tables.Users))

	return r.scanUser(r.db.QueryRowContext(ctx, query, uid.String()))
}

func (r *Repo) scanUser(row *sql.Row) (filevault.User, error) {
	var u filevault.User
	var idStr string

	err := row.Scan(&idStr, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filevault.User{}, filevault.ErrNotFound
		}
		return filevault.User{}, fmt.Errorf("find user: %w", err)
	}

	u.ID, err = uuid.Parse(idStr)
	if err != nil {
		return filevault.User{}, fmt.Errorf("find user: parse uuid: %w", err)
	}

	return u, nil
}

func (r *Repo) InsertUser(ctx context.Context, email, passwordHash string) (filevault.User, error) {
	// Check first so a duplicate reports cleanly; the unique index still
	// protects against the insert race.
	var existing string
	checkQuery := fmt.Sprintf(`SELECT id FROM %s WHERE email = ?`, quoteIdentifier(r.tables.Users)) //nolint:gosec // table name is validated
	err := r.db.QueryRowContext(ctx, checkQuery, email).Scan(&existing)
	if err == nil {
		return filevault.User{}, fmt.Errorf("insert user: %w: email already registered", filevault.ErrBadRequest)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return filevault.User{}, fmt.Errorf("insert user: check existing: %w", err)
	}

	newID := uuid.New()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	insertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		quoteIdentifier(r.tables.Users))

	if _, err := r.db.ExecContext(ctx, insertQuery, newID.String(), email, passwordHash, now); err != nil {
		return filevault.User{}, fmt.Errorf("insert user: %w", err)
	}

	return filevault.User{ID: newID, Email: email, PasswordHash: passwordHash}, nil
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdentifier(r.tables.Users)) //nolint:gosec // table name is validated

	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *Repo) GetFile(ctx context.Context, id, ownerID string) (filevault.FileNode, error) {
	fid, ok := parseID(id)
	if !ok {
		return filevault.FileNode{}, filevault.ErrNotFound
	}
	oid, ok := parseID(ownerID)
	if !ok {
		return filevault.FileNode{}, filevault.ErrNotFound
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, user_id, name, kind, is_public, parent_id, local_path
		FROM %s
		WHERE id = ? AND user_id = ?`, quoteIdentifier(r.tables.Files))

	return r.scanFile(r.db.QueryRowContext(ctx, query, fid.String(), oid.String()))
}

func (r *Repo) GetFileByID(ctx context.Context, id string) (filevault.FileNode, error) {
	fid, ok := parseID(id)
	if !ok {
		return filevault.FileNode{}, filevault.ErrNotFound
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, user_id, name, kind, is_public, parent_id, local_path
		FROM %s
		WHERE id = ?`, quoteIdentifier(r.tables.Files))

	return r.scanFile(r.db.QueryRowContext(ctx, query, fid.String()))
}

func (r *Repo) scanFile(row *sql.Row) (filevault.FileNode, error) {
	var n filevault.FileNode
	var idStr, userStr, kindStr string
	var isPublic int

	err := row.Scan(&idStr, &userStr, &n.Name, &kindStr, &isPublic, &n.ParentID, &n.LocalPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filevault.FileNode{}, filevault.ErrNotFound
		}
		return filevault.FileNode{}, fmt.Errorf("get file: %w", err)
	}

	n.ID, err = uuid.Parse(idStr)
	if err != nil {
		return filevault.FileNode{}, fmt.Errorf("get file: parse uuid: %w", err)
	}

	n.UserID, err = uuid.Parse(userStr)
	if err != nil {
		return filevault.FileNode{}, fmt.Errorf("get file: parse user uuid: %w", err)
	}

	n.Kind = filevault.NodeKind(kindStr)
	n.IsPublic = isPublic != 0

	return n, nil
}

func (r *Repo) InsertFile(ctx context.Context, node filevault.FileNode) (filevault.FileNode, error) {
	newID := uuid.New()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	isPublic := 0
	if node.IsPublic {
		isPublic = 1
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, user_id, name, kind, is_public, parent_id, local_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.tables.Files))

	_, err := r.db.ExecContext(ctx, query,
		newID.String(), node.UserID.String(), node.Name, string(node.Kind), isPublic, node.ParentID, node.LocalPath, now,
	)
	if err != nil {
		return filevault.FileNode{}, fmt.Errorf("insert file: %w", err)
	}

	node.ID = newID
	return node, nil
}

func (r *Repo) SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (filevault.FileNode, error) {
	fid, ok := parseID(id)
	if !ok {
		return filevault.FileNode{}, filevault.ErrNotFound
	}
	oid, ok := parseID(ownerID)
	if !ok {
		return filevault.FileNode{}, filevault.ErrNotFound
	}

	flag := 0
	if isPublic {
		flag = 1
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET is_public = ? WHERE id = ? AND user_id = ?`, quoteIdentifier(r.tables.Files))

	result, err := r.db.ExecContext(ctx, query, flag, fid.String(), oid.String())
	if err != nil {
		return filevault.FileNode{}, fmt.Errorf("set visibility: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return filevault.FileNode{}, fmt.Errorf("set visibility: rows affected: %w", err)
	}

	// Distinguish "no matching record" from "updated with no field change":
	// sqlite reports a row as affected even when the value was unchanged.
	if rowsAffected == 0 {
		return filevault.FileNode{}, fmt.Errorf("set visibility: %w", filevault.ErrNotFound)
	}

	return r.GetFile(ctx, id, ownerID)
}

func (r *Repo) ListFiles(ctx context.Context, ownerID, parentID string, offset, limit int) ([]filevault.FileNode, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return []filevault.FileNode{}, nil
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, user_id, name, kind, is_public, parent_id, local_path
		FROM %s
		WHERE user_id = ? AND parent_id = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`, quoteIdentifier(r.tables.Files))

	rows, err := r.db.QueryContext(ctx, query, oid.String(), parentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	nodes := make([]filevault.FileNode, 0, limit)
	for rows.Next() {
		var n filevault.FileNode
		var idStr, userStr, kindStr string
		var isPublic int

		if scanErr := rows.Scan(&idStr, &userStr, &n.Name, &kindStr, &isPublic, &n.ParentID, &n.LocalPath); scanErr != nil {
			return nil, fmt.Errorf("list files: scan: %w", scanErr)
		}

		var parseErr error
		n.ID, parseErr = uuid.Parse(idStr)
		if parseErr != nil {
			return nil, fmt.Errorf("list files: parse uuid: %w", parseErr)
		}
		n.UserID, parseErr = uuid.Parse(userStr)
		if parseErr != nil {
			return nil, fmt.Errorf("list files: parse user uuid: %w", parseErr)
		}

		n.Kind = filevault.NodeKind(kindStr)
		n.IsPublic = isPublic != 0

		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: rows: %w", err)
	}

	return nodes, nil
}

func (r *Repo) CountFiles(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdentifier(r.tables.Files)) //nolint:gosec // table name is validated

	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}
