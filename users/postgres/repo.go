package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/communityhq/community-api/internal/errors"
	"github.com/communityhq/community-api/users"
)

const uniqueViolation = "23505"

var _ users.UserRepo = (*UserRepo)(nil)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, external_id, password_hash, display_name, roles, token_version, confirmed, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `INSERT INTO users (id, username, email, external_id, password_hash, display_name, roles, confirmed, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, nullable(user.Email), nullable(user.ExternalID),
		string(user.PasswordHash), user.DisplayName, joinRoles(user.Roles),
		user.Confirmed, user.CreatedDate, user.UpdatedDate)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateIdentity
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *users.User) error {
	query := `UPDATE users
	          SET username = $2, email = $3, external_id = $4, password_hash = $5,
	              display_name = $6, roles = $7, confirmed = $8, updated_at = $9
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, nullable(user.Email), nullable(user.ExternalID),
		string(user.PasswordHash), user.DisplayName, joinRoles(user.Roles),
		user.Confirmed, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateIdentity
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	if email == "" {
		return nil, apperrors.ErrNotFound
	}
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	if externalID == "" {
		return nil, apperrors.ErrNotFound
	}
	return r.getBy(ctx, "external_id = $1", externalID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *UserRepo) List(ctx context.Context) ([]*users.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id`, userColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var userList []*users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		userList = append(userList, user)
	}
	return userList, rows.Err()
}

func (r *UserRepo) CountByDate(ctx context.Context) ([]users.DateCount, error) {
	query := `SELECT DATE(created_at) AS created_date, COUNT(id)
	          FROM users
	          GROUP BY DATE(created_at)
	          ORDER BY created_date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var counts []users.DateCount
	for rows.Next() {
		var dc users.DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// IncrementTokenVersion is a single read-modify-write statement so
// concurrent increments are never lost.
func (r *UserRepo) IncrementTokenVersion(ctx context.Context, id string) (int, error) {
	query := `UPDATE users
	          SET token_version = token_version + 1, updated_at = $2
	          WHERE id = $1
	          RETURNING token_version`

	var version int
	err := r.db.QueryRowContext(ctx, query, id, time.Now().UTC()).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return version, nil
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (*users.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, where)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*users.User, error) {
	var (
		user       users.User
		email      sql.NullString
		externalID sql.NullString
		hash       string
		roles      string
	)
	err := row.Scan(&user.ID, &user.Username, &email, &externalID, &hash,
		&user.DisplayName, &roles, &user.TokenVersion, &user.Confirmed,
		&user.CreatedDate, &user.UpdatedDate)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.ExternalID = externalID.String
	user.PasswordHash = users.HashedPassword(hash)
	user.Roles = splitRoles(roles)
	return &user, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func joinRoles(roles []users.RoleType) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func splitRoles(joined string) []users.RoleType {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	roles := make([]users.RoleType, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, users.RoleType(p))
	}
	return roles
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
