package repository

import (
	"context"
	"errors"

	"i4e-backend/internal/database"
	"i4e-backend/internal/domain/user"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, email, mobile_no, password_hash, first_name, last_name, is_active, created_at, updated_at`

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.MobileNo, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	created, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, mobile_no, password_hash, first_name, last_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		u.Email, u.MobileNo, u.PasswordHash, u.FirstName, u.LastName,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, user.ErrAlreadyExists
		}
		return user.User{}, err
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresUserRepository) FindOrCreateByMobile(ctx context.Context, mobileNo string) (user.User, bool, error) {
	var created bool
	u, err := scanUserWithFlag(r.db.QueryRow(ctx,
		`INSERT INTO users (mobile_no) VALUES ($1)
		 ON CONFLICT (mobile_no) WHERE mobile_no IS NOT NULL DO UPDATE SET updated_at = now()
		 RETURNING `+userColumns+`, (xmax = 0)`,
		mobileNo,
	), &created)
	if err != nil {
		return user.User{}, false, err
	}
	return u, created, nil
}

func scanUserWithFlag(row database.Row, flag *bool) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.MobileNo, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, flag)
	if err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
