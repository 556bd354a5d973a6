package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
)

// Repository persists credentials. Implementations enforce email and
// username uniqueness atomically and report duplicates as apperr.ErrConflict.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Ping(ctx context.Context) error
}

// pgxPool is the subset of *pgxpool.Pool used by PostgresRepository.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db pgxPool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db pgxPool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `SELECT id::text, username, email, password_hash, role, created_at FROM users`

// Create inserts a new user. The unique constraints on email and username
// decide races between concurrent registrations.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, userID, user.Username, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperr.ErrConflict
		}
		return storeError("postgres", "create", err)
	}
	return nil
}

// FindByEmail fetches a user by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, "find_by_email", selectUser+` WHERE email = $1`, email)
}

// FindByUsername fetches a user by username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findOne(ctx, "find_by_username", selectUser+` WHERE username = $1`, username)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return r.findOne(ctx, "find_by_id", selectUser+` WHERE id = $1`, userID)
}

// Ping checks the connection pool.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresRepository) findOne(ctx context.Context, op, query string, arg any) (User, error) {
	var (
		user      User
		role      string
		createdAt time.Time
	)
	row := r.db.QueryRow(ctx, query, arg)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &role, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, storeError("postgres", op, err)
	}
	user.Role = Role(role)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
