package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)
	dob := time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	u := &domain.User{FullName: "Asha Rao", DOB: dob, Email: "asha@example.com", Contact: "9876543210",
		City: "Mumbai", State: "MH", Pincode: "400050", Username: "asha", PasswordHash: "hash"}

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Asha Rao", dob, "asha@example.com", "9876543210", "Mumbai", "MH", "400050", "asha", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(4), u.ID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)
	now := time.Now()

	pool.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1")).
		WithArgs("asha@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "dob", "email", "contact", "city", "state",
			"pincode", "username", "password_hash", "avatar_path", "created_at"}).
			AddRow(int64(4), "Asha Rao", now, "asha@example.com", "9876543210", "Mumbai", "MH",
				"400050", "asha", "hash", "", now))

	u, err := repo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)
	assert.Empty(t, u.AvatarPath)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_ExistsByEmailOrUsername(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM users")).
		WithArgs("asha@example.com", "asha").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByEmailOrUsername(context.Background(), "asha@example.com", "asha")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UpdateProfile_NotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE users SET city=$1")).
		WithArgs("Pune", "MH", "411001", int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateProfile(context.Background(), 9, "Pune", "MH", "411001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE users SET avatar_path=$1")).
		WithArgs("/uploads/a.png", int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.UpdateAvatar(context.Background(), 4, "/uploads/a.png"))
	assert.NoError(t, pool.ExpectationsWereMet())
}
