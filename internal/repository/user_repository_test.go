package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
)

const insertUserSQL = "INSERT INTO users (full_name,email,phone,password_hash,role,status,created_at)"

var duplicateKey = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ana@fitzone.com' for key 'users.email'"}

func TestCreateUserNormalizesAndFillsID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q(insertUserSQL)).
		WithArgs("Ana", "ana@fitzone.com", "", "hash", model.RoleUser, model.UserActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	u := &model.User{FullName: "Ana", Email: "  Ana@FitZone.com ", PasswordHash: "hash"}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	assert.Equal(t, uint64(11), u.ID)
	assert.Equal(t, "ana@fitzone.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q(insertUserSQL)).WillReturnError(duplicateKey)

	err := NewUserRepo(db).Create(context.Background(), &model.User{Email: "ana@fitzone.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateUserOtherMySQLErrorPassesThrough(t *testing.T) {
	db, mock := newMock(t)
	lost := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	mock.ExpectExec(q(insertUserSQL)).WillReturnError(lost)

	err := NewUserRepo(db).Create(context.Background(), &model.User{Email: "ana@fitzone.com"})
	assert.ErrorIs(t, err, lost)
	assert.NotErrorIs(t, err, ErrEmailExists)
}

func TestDeleteUserCascadesInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM reservations WHERE user_id=?")).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM carts WHERE user_id=?")).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM users WHERE id=?")).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, NewUserRepo(db).Delete(context.Background(), 5))
}

func TestDeleteMissingUserRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM reservations WHERE user_id=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM carts WHERE user_id=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM users WHERE id=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewUserRepo(db).Delete(context.Background(), 5), ErrNotFound)
}
