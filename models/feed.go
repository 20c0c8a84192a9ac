package models

import "time"

// FeedUser is the public projection of a user inside the feed.
type FeedUser struct {
	Username string `json:"username"`
}

type FeedComment struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	User      FeedUser  `json:"user"`
}

// FeedEntry is one post of the feed. CommentCount is the post's full comment
// count, Comments only a random sample of them.
type FeedEntry struct {
	Text         string        `json:"text"`
	Timestamp    time.Time     `json:"timestamp"`
	User         FeedUser      `json:"user"`
	CommentCount int           `json:"comment_count"`
	Comments     []FeedComment `json:"comments"`
}
