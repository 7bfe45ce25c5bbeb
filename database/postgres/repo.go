// Package postgres implements the repo interfaces using PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayoubd/filevault"
)

const uniqueViolationCode = "23505"

type Repo struct {
	pool   *pgxpool.Pool
	tables Tables
}

func NewRepo(pool *pgxpool.Pool, tables Tables) *Repo {
	return &Repo{pool: pool, tables: tables}
}

// Ping reports database connectivity without surfacing driver errors.
func (r *Repo) Ping(ctx context.Context) bool {
	return r.pool.Ping(ctx) == nil
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
	query := fmt.Sprintf(`
		SELECT id, email, password_hash FROM %s WHERE email = $1
	`, r.tables.Users)

	var u filevault.User
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filevault.User{}, filevault.ErrNotFound
		}
		return filevault.User{}, fmt.Errorf("find user by email: %w", err)
	}

	return u, nil
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (filevault.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return filevault.User{}, filevault.ErrNotFound
	}

	query := fmt.Sprintf(`
		SELECT id, email, password_hash FROM %s WHERE id = $1
	`, r.tables.Users)

	var u filevault.User
	err := r.pool.QueryRow(ctx, query, uid).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filevault.User{}, filevault.ErrNotFound
		}
		return filevault.User{}, fmt.Errorf("find user by id: %w", err)
	}

	return u, nil
}

func (r *Repo) InsertUser(ctx context.Context, email, passwordHash string) (filevault.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, r.tables.Users)

	var u filevault.User
	err := r.pool.QueryRow(ctx, query, email, passwordHash).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return filevault.User{}, fmt.Errorf("insert user: %w: email already registered", filevault.ErrBadRequest)
		}
		return filevault.User{}, fmt.Errorf("insert user: %w", err)
	}

	u.Email = email
	u.PasswordHash = passwordHash
	return u, nil
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Users)

	var n int64
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
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

	query := fmt.Sprintf(`
		SELECT id, user_id, name, kind, is_public, parent_id, local_path
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Files)

	return r.scanFile(r.pool.QueryRow(ctx, query, fid, oid))
}

func (r *Repo) GetFileByID(ctx context.Context, id string) (filevault.FileNode, error) {
	fid, ok := parseID(id)
	if !ok {
		return filevault.FileNode{}, filevault.ErrNotFound
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, name, kind, is_public, parent_id, local_path
		FROM %s
		WHERE id = $1
	`, r.tables.Files)

	return r.scanFile(r.pool.QueryRow(ctx, query, fid))
}

func (r *Repo) scanFile(row pgx.Row) (filevault.FileNode, error) {
	var n filevault.FileNode
	var kindStr string

	err := row.Scan(&n.ID, &n.UserID, &n.Name, &kindStr, &n.IsPublic, &n.ParentID, &n.LocalPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filevault.FileNode{}, filevault.ErrNotFound
		}
		return filevault.FileNode{}, fmt.Errorf("get file: %w", err)
	}

	n.Kind = filevault.NodeKind(kindStr)
	return n, nil
}

func (r *Repo) InsertFile(ctx context.Context, node filevault.FileNode) (filevault.FileNode, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, kind, is_public, parent_id, local_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tables.Files)

	err := r.pool.QueryRow(ctx, query,
		node.UserID, node.Name, string(node.Kind), node.IsPublic, node.ParentID, node.LocalPath,
	).Scan(&node.ID)
	if err != nil {
		return filevault.FileNode{}, fmt.Errorf("insert file: %w", err)
	}

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

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_public = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, kind, is_public, parent_id, local_path
	`, r.tables.Files)

	return r.scanFile(r.pool.QueryRow(ctx, query, isPublic, fid, oid))
}

func (r *Repo) ListFiles(ctx context.Context, ownerID, parentID string, offset, limit int) ([]filevault.FileNode, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return []filevault.FileNode{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, name, kind, is_public, parent_id, local_path
		FROM %s
		WHERE user_id = $1 AND parent_id = $2
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4
	`, r.tables.Files)

	rows, err := r.pool.Query(ctx, query, oid, parentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	nodes := make([]filevault.FileNode, 0, limit)
	for rows.Next() {
		var n filevault.FileNode
		var kindStr string

		if err := rows.Scan(&n.ID, &n.UserID, &n.Name, &kindStr, &n.IsPublic, &n.ParentID, &n.LocalPath); err != nil {
			return nil, fmt.Errorf("list files: scan: %w", err)
		}

		n.Kind = filevault.NodeKind(kindStr)
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: rows: %w", err)
	}

	return nodes, nil
}

func (r *Repo) CountFiles(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Files)

	var n int64
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}
