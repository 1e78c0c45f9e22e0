package repository

import (
	"context"
	"fmt"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, city, state, pincode string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateAvatar(ctx context.Context, id int64, path string) error
}

type PGUserRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, full_name, dob, email, contact, city, state, pincode, username, password_hash, COALESCE(avatar_path, ''), created_at`

func (r *PGUserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `INSERT INTO users (full_name, dob, email, contact, city, state, pincode, username, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		u.FullName, u.DOB, u.Email, u.Contact, u.City, u.State, u.Pincode, u.Username, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateUser
	}
	return err
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (r *PGUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 OR username=$2)`, email, username).Scan(&exists)
	return exists, err
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, id int64, city, state, pincode string) error {
	return r.update(ctx, `UPDATE users SET city=$1, state=$2, pincode=$3 WHERE id=$4`, city, state, pincode, id)
}

func (r *PGUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.update(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
}

func (r *PGUserRepository) UpdateAvatar(ctx context.Context, id int64, path string) error {
	return r.update(ctx, `UPDATE users SET avatar_path=$1 WHERE id=$2`, path, id)
}

func (r *PGUserRepository) update(ctx context.Context, sql string, args ...any) error {
	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.DOB, &u.Email, &u.Contact, &u.City, &u.State, &u.Pincode,
		&u.Username, &u.PasswordHash, &u.AvatarPath, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
