package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"masterboxer.com/project-micro-feed/models"
)

// Store reads posts, comments and users from Postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	err := s.db.SelectContext(ctx, &posts, `
		SELECT id, user_id, text, timestamp
		FROM posts
		ORDER BY timestamp DESC, id DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}
	return posts, nil
}

func (s *Store) PostComments(ctx context.Context, postID int) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.SelectContext(ctx, &comments, `
		SELECT id, post_id, user_id, text, timestamp
		FROM comments
		WHERE post_id = $1
		ORDER BY timestamp ASC, id ASC`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}
	return comments, nil
}

func (s *Store) Usernames(ctx context.Context, userIDs []int) (map[int]string, error) {
	result := make(map[int]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	ids := make([]int64, len(userIDs))
	for i, id := range userIDs {
		ids[i] = int64(id)
	}

	rows, err := s.db.QueryxContext(ctx, `SELECT id, username FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
		}
		result[id] = username
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}

	return result, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPostgresFailure, err)
	}
	return nil
}
