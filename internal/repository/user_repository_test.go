package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRows(id, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow(id, "Ada", email, "$2a$10$hash", "CUSTOMER", now, now)
}

func TestUserRepoGetByEmailNormalizes(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("ada@example.com").
		WillReturnRows(userRows("user-1", "ada@example.com"))

	u, err := repo.GetByEmail(context.Background(), "  ADA@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE email=? LIMIT 1").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}))

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateVerified(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users (id, name, email, password_hash, role) VALUES (?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", "$2a$10$hash", "CUSTOMER").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO carts (id, user_id) VALUES (?,?)").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO profiles (id, user_id) VALUES (?,?)").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE id=? LIMIT 1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(userRows("user-1", "ada@example.com"))

	u, err := repo.CreateVerified(context.Background(), "Ada", "ada@example.com", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateVerifiedDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users (id, name, email, password_hash, role) VALUES (?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", "$2a$10$hash", "CUSTOMER").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err = repo.CreateVerified(context.Background(), "Ada", "ada@example.com", "$2a$10$hash")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET password_hash=? WHERE id=?").
		WithArgs("$2a$10$newhash", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "user-1", "$2a$10$newhash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdatePasswordMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET password_hash=? WHERE id=?").
		WithArgs("$2a$10$newhash", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "ghost", "$2a$10$newhash"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
