package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"masterboxer.com/project-micro-feed/models"
)

const SeedPassword = "password123"

type SeedCounts struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder fills the store with fake users, posts and comments.
type Seeder struct {
	db       *sqlx.DB
	fake     *gofakeit.Faker
	rng      *rand.Rand
	now      func() time.Time
	hashCost int
}

type SeederOption func(*Seeder)

func WithSeed(seed uint64) SeederOption {
	return func(s *Seeder) {
		s.fake = gofakeit.New(seed)
		s.rng = rand.New(rand.NewPCG(seed, seed+1))
	}
}

func WithClock(now func() time.Time) SeederOption {
	return func(s *Seeder) {
		s.now = now
	}
}

func WithHashCost(cost int) SeederOption {
	return func(s *Seeder) {
		s.hashCost = cost
	}
}

func NewSeeder(db *sqlx.DB, opts ...SeederOption) *Seeder {
	s := &Seeder{
		db:       db,
		fake:     gofakeit.New(0),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DecadeStart returns midnight on January 1st of the decade containing t.
func DecadeStart(t time.Time) time.Time {
	return time.Date(t.Year()-t.Year()%10, time.January, 1, 0, 0, 0, 0, t.Location())
}

// Seed inserts the requested rows in a single transaction. Posts get a
// random owner and comments a random post and user; every row gets a random
// timestamp within the current decade. The returned Users count only covers
// newly inserted users, not existing ones reused on a name clash.
func (s *Seeder) Seed(ctx context.Context, counts SeedCounts) (SeedCounts, error) {
	if counts.Users < 0 || counts.Posts < 0 || counts.Comments < 0 {
		return SeedCounts{}, fmt.Errorf("%w: counts must not be negative", ErrInvalidConfiguration)
	}
	if counts.Users == 0 && counts.Posts+counts.Comments > 0 {
		return SeedCounts{}, fmt.Errorf("%w: posts and comments need at least one user", ErrInvalidConfiguration)
	}
	if counts.Posts == 0 && counts.Comments > 0 {
		return SeedCounts{}, fmt.Errorf("%w: comments need at least one post", ErrInvalidConfiguration)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return SeedCounts{}, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}
	defer tx.Rollback()

	now := s.now()
	from := DecadeStart(now)

	userIDs, inserted, err := s.createUsers(ctx, tx, counts.Users)
	if err != nil {
		return SeedCounts{}, err
	}
	postIDs, err := s.createPosts(ctx, tx, userIDs, counts.Posts, from, now)
	if err != nil {
		return SeedCounts{}, err
	}
	if err := s.createComments(ctx, tx, postIDs, userIDs, counts.Comments, from, now); err != nil {
		return SeedCounts{}, err
	}

	if err := tx.Commit(); err != nil {
		return SeedCounts{}, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}

	created := counts
	created.Users = inserted
	return created, nil
}

func (s *Seeder) createUsers(ctx context.Context, tx *sqlx.Tx, n int) ([]int, int, error) {
	ids := make([]int, 0, n)
	inserted := 0
	taken := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		username := s.fake.Username()
		for taken[username] {
			username = s.fake.Username() + strconv.Itoa(s.rng.IntN(1000))
		}
		taken[username] = true

		hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), s.hashCost)
		if err != nil {
			return nil, 0, fmt.Errorf("hashing password: %v", err)
		}

		u := models.User{Username: username, Email: s.fake.Email(), Password: string(hash)}

		// an existing user with the same name is reused; xmax is 0 only for
		// freshly inserted rows
		var isNew bool
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO users (username, email, password, created_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
			RETURNING id, created_at, (xmax = 0) AS inserted`,
			u.Username, u.Email, u.Password).Scan(&u.ID, &u.CreatedAt, &isNew)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: creating user: %v", ErrPostgresFailure, err)
		}
		if isNew {
			inserted++
		}
		ids = append(ids, u.ID)
	}
	return ids, inserted, nil
}

func (s *Seeder) createPosts(ctx context.Context, tx *sqlx.Tx, userIDs []int, n int, from, to time.Time) ([]int, error) {
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		var id int
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO posts (user_id, text, timestamp)
			VALUES ($1, $2, $3)
			RETURNING id`,
			userIDs[s.rng.IntN(len(userIDs))], s.text(), s.fake.DateRange(from, to)).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("%w: creating post: %v", ErrPostgresFailure, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Seeder) createComments(ctx context.Context, tx *sqlx.Tx, postIDs, userIDs []int, n int, from, to time.Time) error {
	for i := 0; i < n; i++ {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (post_id, user_id, text, timestamp)
			VALUES ($1, $2, $3, $4)`,
			postIDs[s.rng.IntN(len(postIDs))], userIDs[s.rng.IntN(len(userIDs))],
			s.text(), s.fake.DateRange(from, to))
		if err != nil {
			return fmt.Errorf("%w: creating comment: %v", ErrPostgresFailure, err)
		}
	}
	return nil
}

func (s *Seeder) text() string {
	return s.fake.HackerPhrase() + " " + s.fake.HackerPhrase()
}
