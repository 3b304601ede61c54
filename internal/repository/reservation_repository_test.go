package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
)

var monday = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

const (
	lockClassSQL = "SELECT name, capacity FROM classes WHERE id=? AND active=1 FOR UPDATE"
	dupSQL       = "SELECT COUNT(*) FROM reservations WHERE user_id=? AND class_id=? AND status='active'"
	takenSQL     = "SELECT COUNT(*) FROM reservations WHERE class_id=? AND status='active'"
	insertResSQL = "INSERT INTO reservations (user_id, class_id, class_name, date, time, status, created_at)"
)

func TestDayUsesLocation(t *testing.T) {
	late := time.Date(2030, 3, 5, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2030, 3, 5, 0, 0, 0, 0, time.UTC), Day(late))

	prev := Location
	Location = time.FixedZone("ART", -3*3600)
	t.Cleanup(func() { Location = prev })
	assert.Equal(t, monday, Day(late))
	assert.Equal(t, time.UTC, Day(late).Location())
}

func TestBookLocksClassThenChecksAndInserts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q(lockClassSQL)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"name", "capacity"}).AddRow("Spinning", 10))
	mock.ExpectQuery(q(dupSQL+" AND date=? AND time=?")).WithArgs(3, 7, monday, "08:00 - 09:00").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(q(takenSQL+" AND date=? AND time=?")).WithArgs(7, monday, "08:00 - 09:00").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(9))
	mock.ExpectExec(q(insertResSQL)).
		WithArgs(3, 7, "Spinning", monday, "08:00 - 09:00", model.ReservationActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	res := &model.Reservation{UserID: 3, ClassID: 7, Date: monday.Add(15 * time.Hour), Time: "08:00 - 09:00"}
	require.NoError(t, NewReservationRepo(db).Book(context.Background(), res, ScopeSlot))
	assert.Equal(t, uint64(42), res.ID)
	assert.Equal(t, "Spinning", res.ClassName)
	assert.Equal(t, model.ReservationActive, res.Status)
	assert.Equal(t, monday, res.Date)
}

func TestBookByDateOmitsTime(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q(lockClassSQL)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"name", "capacity"}).AddRow("Yoga", 10))
	mock.ExpectQuery(q(dupSQL+" AND date=?")).WithArgs(3, 7, monday).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(q(takenSQL+" AND date=?")).WithArgs(7, monday).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(q(insertResSQL)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res := &model.Reservation{UserID: 3, ClassID: 7, Date: monday}
	assert.NoError(t, NewReservationRepo(db).Book(context.Background(), res, ScopeDate))
}

func TestBookRollsBack(t *testing.T) {
	lock := func(mock sqlmock.Sqlmock, capacity int) {
		mock.ExpectBegin()
		mock.ExpectQuery(q(lockClassSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"name", "capacity"}).AddRow("Spinning", capacity))
	}
	count := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"n"}).AddRow(n) }
	insertErr := errors.New("disk full")

	cases := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		want   error
	}{
		{
			name: "missing class",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockClassSQL)).WillReturnRows(sqlmock.NewRows([]string{"name", "capacity"}))
			},
			want: ErrNotFound,
		},
		{
			name: "already booked",
			expect: func(mock sqlmock.Sqlmock) {
				lock(mock, 10)
				mock.ExpectQuery(q(dupSQL)).WillReturnRows(count(1))
			},
			want: ErrAlreadyReserved,
		},
		{
			name: "full",
			expect: func(mock sqlmock.Sqlmock) {
				lock(mock, 2)
				mock.ExpectQuery(q(dupSQL)).WillReturnRows(count(0))
				mock.ExpectQuery(q(takenSQL)).WillReturnRows(count(2))
			},
			want: ErrClassFull,
		},
		{
			name: "insert fails",
			expect: func(mock sqlmock.Sqlmock) {
				lock(mock, 2)
				mock.ExpectQuery(q(dupSQL)).WillReturnRows(count(0))
				mock.ExpectQuery(q(takenSQL)).WillReturnRows(count(1))
				mock.ExpectExec(q(insertResSQL)).WillReturnError(insertErr)
			},
			want: insertErr,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			tc.expect(mock)
			mock.ExpectRollback()

			res := &model.Reservation{UserID: 3, ClassID: 7, Date: monday, Time: "08:00 - 09:00"}
			err := NewReservationRepo(db).Book(context.Background(), res, ScopeSlot)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, res.ID)
		})
	}
}
