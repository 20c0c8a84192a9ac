package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"masterboxer.com/project-micro-feed/models"
)

const (
	MaxFeedPosts       = 10
	MaxSampledComments = 3
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// FeedStore is the read side of the post store that the feed is built from.
type FeedStore interface {
	// RecentPosts returns up to limit posts, newest first.
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	// PostComments returns every comment of a post in creation order.
	PostComments(ctx context.Context, postID int) ([]models.Comment, error)
	// Usernames resolves user IDs to usernames. Unknown IDs are absent from
	// the result.
	Usernames(ctx context.Context, userIDs []int) (map[int]string, error)
}

type FeedService struct {
	store   FeedStore
	newRand func() *rand.Rand
}

type FeedOption func(*FeedService)

// WithRand makes the service draw comment samples from generators built by fn.
// fn is called once per GetFeed call.
func WithRand(fn func() *rand.Rand) FeedOption {
	return func(s *FeedService) {
		s.newRand = fn
	}
}

func NewFeedService(store FeedStore, opts ...FeedOption) *FeedService {
	s := &FeedService{
		store:   store,
		newRand: newRequestRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetFeed returns the MaxFeedPosts most recent posts, each with its author,
// its total comment count and up to MaxSampledComments random comments.
// Any store failure fails the whole feed.
func (s *FeedService) GetFeed(ctx context.Context) ([]models.FeedEntry, error) {
	posts, err := s.store.RecentPosts(ctx, MaxFeedPosts)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching posts: %v", ErrStoreUnavailable, err)
	}
	if len(posts) > MaxFeedPosts {
		posts = posts[:MaxFeedPosts]
	}

	comments := make([][]models.Comment, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range posts {
		g.Go(func() error {
			c, err := s.store.PostComments(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("%w: fetching comments of post %d: %v", ErrStoreUnavailable, p.ID, err)
			}
			comments[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := s.newRand()
	counts := make([]int, len(posts))
	samples := make([][]models.Comment, len(posts))
	userIDs := make([]int, 0, len(posts)*(1+MaxSampledComments))
	for i, p := range posts {
		count, sample, err := Sample(r, comments[i], MaxSampledComments)
		if err != nil {
			return nil, err
		}
		counts[i], samples[i] = count, sample

		userIDs = append(userIDs, p.UserID)
		for _, c := range sample {
			userIDs = append(userIDs, c.UserID)
		}
	}

	names, err := s.resolveUsernames(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	feed := make([]models.FeedEntry, 0, len(posts))
	for i, p := range posts {
		entry := models.FeedEntry{
			Text:         p.Text,
			Timestamp:    p.Timestamp,
			User:         models.FeedUser{Username: names[p.UserID]},
			CommentCount: counts[i],
			Comments:     make([]models.FeedComment, 0, len(samples[i])),
		}
		for _, c := range samples[i] {
			entry.Comments = append(entry.Comments, models.FeedComment{
				Text:      c.Text,
				Timestamp: c.Timestamp,
				User:      models.FeedUser{Username: names[c.UserID]},
			})
		}
		feed = append(feed, entry)
	}

	return feed, nil
}

func (s *FeedService) resolveUsernames(ctx context.Context, userIDs []int) (map[int]string, error) {
	if len(userIDs) == 0 {
		return map[int]string{}, nil
	}

	seen := make(map[int]bool, len(userIDs))
	unique := make([]int, 0, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	names, err := s.store.Usernames(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving users: %v", ErrStoreUnavailable, err)
	}
	for _, id := range unique {
		if _, ok := names[id]; !ok {
			return nil, fmt.Errorf("%w: user %d referenced but not found", ErrStoreUnavailable, id)
		}
	}

	return names, nil
}
