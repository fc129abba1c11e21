package db

import (
	"time"

	"gorm.io/datatypes"
)

// IDSet is a set-valued document field persisted as a JSON array.
// A NULL column and an empty array both read as the empty set.
type IDSet = datatypes.JSONSlice[string]

// Account is a registered user and their profile/social state.
// Collection: users.
//
// UsernameKey and EmailKey hold the lower-cased forms and carry the unique
// indexes, so uniqueness is case-insensitive and enforced by the store.
type Account struct {
	ID                    string    `gorm:"primaryKey;size:64"`
	FirstName             string    `gorm:"size:64;not null"`
	Username              string    `gorm:"size:64;not null"`
	UsernameKey           string    `gorm:"uniqueIndex;size:64;not null"`
	Email                 string    `gorm:"size:128;not null"`
	EmailKey              string    `gorm:"uniqueIndex;size:128;not null"`
	BirthDate             time.Time `gorm:"not null"`
	Country               string    `gorm:"size:64"`
	Language              string    `gorm:"size:32"`
	Gender                string    `gorm:"size:16"`
	ProfilePictureRef     string    `gorm:"size:255"`
	FollowedIDs           IDSet     `gorm:"column:followed_ids"`
	ReactedPostIDs        IDSet     `gorm:"column:reacted_post_ids"`
	CommentedPostIDs      IDSet     `gorm:"column:commented_post_ids"`
	ReactedCommentIDs     IDSet     `gorm:"column:reacted_comment_ids"`
	CompletedWorkoutCount int       `gorm:"not null"`
	Level                 int       `gorm:"not null"`
	Medals                IDSet     `gorm:"column:medals"`
	Version               int64     `gorm:"not null"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "users" }

func (a *Account) DocID() string         { return a.ID }
func (a *Account) DocVersion() int64     { return a.Version }
func (a *Account) SetDocVersion(v int64) { a.Version = v }

// Age is derived from BirthDate at read time and never stored.
func (a *Account) Age(now time.Time) int {
	if a.BirthDate.IsZero() {
		return 0
	}
	b := a.BirthDate
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	return max(years, 0)
}

// Post carries a denormalized snapshot of its author taken at creation time.
// Collection: posts.
type Post struct {
	ID                      string    `gorm:"primaryKey;size:64"`
	AuthorID                string    `gorm:"size:64;not null;index"`
	AuthorFirstName         string    `gorm:"size:64"`
	AuthorUsername          string    `gorm:"size:64"`
	AuthorProfilePictureRef string    `gorm:"size:255"`
	Text                    string    `gorm:"type:text;not null"`
	PhotoRef                string    `gorm:"size:255"`
	ReactingAccountIDs      IDSet     `gorm:"column:reacting_account_ids"`
	CommentingAccountIDs    IDSet     `gorm:"column:commenting_account_ids"`
	Version                 int64     `gorm:"not null"`
	CreatedAt               time.Time `gorm:"index"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) DocID() string         { return p.ID }
func (p *Post) DocVersion() int64     { return p.Version }
func (p *Post) SetDocVersion(v int64) { p.Version = v }

// Comment belongs to a post. Collection: comments.
type Comment struct {
	ID                      string    `gorm:"primaryKey;size:64"`
	AuthorID                string    `gorm:"size:64;not null;index"`
	PostID                  string    `gorm:"size:64;not null;index"`
	AuthorFirstName         string    `gorm:"size:64"`
	AuthorUsername          string    `gorm:"size:64"`
	AuthorProfilePictureRef string    `gorm:"size:255"`
	Text                    string    `gorm:"type:text;not null"`
	ReactingAccountIDs      IDSet     `gorm:"column:reacting_account_ids"`
	Version                 int64     `gorm:"not null"`
	CreatedAt               time.Time `gorm:"index"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) DocID() string         { return c.ID }
func (c *Comment) DocVersion() int64     { return c.Version }
func (c *Comment) SetDocVersion(v int64) { c.Version = v }

// Workout is one interval session. Collection: workouts.
// The owner column keeps the legacy name users_id.
type Workout struct {
	ID                       string    `gorm:"primaryKey;size:64"`
	AccountID                string    `gorm:"column:users_id;size:64;not null;index"`
	Type                     string    `gorm:"size:64;not null"`
	Date                     time.Time `gorm:"not null"`
	IsFinished               bool      `gorm:"not null"`
	Calories                 float64
	SeriesPlanned            int
	WorkTimeSeconds          int
	RestTimeSeconds          int
	CompletedDurationSeconds int
	CompletedSeries          int
	Version                  int64     `gorm:"not null"`
	CreatedAt                time.Time `gorm:"autoCreateTime"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime"`
}

func (Workout) TableName() string { return "workouts" }

func (w *Workout) DocID() string         { return w.ID }
func (w *Workout) DocVersion() int64     { return w.Version }
func (w *Workout) SetDocVersion(v int64) { w.Version = v }

// Identity is the credential record paired with an Account at sign-up.
type Identity struct {
	AccountID    string    `gorm:"primaryKey;size:64"`
	EmailKey     string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&Account{}, &Post{}, &Comment{}, &Workout{}, &Identity{}}
}
