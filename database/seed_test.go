package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var seedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func testSeeder(t *testing.T) (*Seeder, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	return NewSeeder(db,
		WithSeed(7),
		WithClock(func() time.Time { return seedNow }),
		WithHashCost(bcrypt.MinCost),
	), mock
}

// inDecade matches timestamps between the start of the decade and seedNow.
type inDecade struct{}

func (inDecade) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	return !ts.Before(DecadeStart(seedNow)) && !ts.After(seedNow)
}

// bcryptOf matches a bcrypt hash of the seed password.
type bcryptOf struct{}

func (bcryptOf) Match(v driver.Value) bool {
	hash, ok := v.(string)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(SeedPassword)) == nil
}

func TestDecadeStart(t *testing.T) {
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), DecadeStart(seedNow))
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		DecadeStart(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		DecadeStart(time.Date(2019, 12, 31, 23, 59, 0, 0, time.UTC)))
}

func TestSeed(t *testing.T) {
	seeder, mock := testSeeder(t)

	mock.ExpectBegin()
	for id := 1; id <= 2; id++ {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), bcryptOf{}).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(id, seedNow, true))
	}
	for id := 1; id <= 3; id++ {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), inDecade{}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100 + id))
	}
	for i := 0; i < 4; i++ {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO comments")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), inDecade{}).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	created, err := seeder.Seed(context.Background(), SeedCounts{Users: 2, Posts: 3, Comments: 4})
	require.NoError(t, err)
	assert.Equal(t, SeedCounts{Users: 2, Posts: 3, Comments: 4}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCountsOnlyNewUsers(t *testing.T) {
	seeder, mock := testSeeder(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(1, seedNow, true))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(2, seedNow, false))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	created, err := seeder.Seed(context.Background(), SeedCounts{Users: 2, Posts: 1})
	require.NoError(t, err)
	assert.Equal(t, SeedCounts{Users: 1, Posts: 1}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRollsBackOnFailure(t *testing.T) {
	seeder, mock := testSeeder(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(1, seedNow, true))
	mock.ExpectQuery("INSERT INTO posts").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := seeder.Seed(context.Background(), SeedCounts{Users: 1, Posts: 1})
	assert.ErrorIs(t, err, ErrPostgresFailure)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRejectsInvalidCounts(t *testing.T) {
	cases := map[string]SeedCounts{
		"negative":             {Users: -1},
		"posts without users":  {Posts: 1},
		"comments without any": {Users: 1, Comments: 5},
	}
	for name, counts := range cases {
		t.Run(name, func(t *testing.T) {
			seeder, mock := testSeeder(t)
			_, err := seeder.Seed(context.Background(), counts)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
