package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedPostTexts = []string{
	"Did this today!",
	"New personal best on the 30/10 intervals",
	"Rest day, but still stretched",
	"Morning session done before coffee",
	"Eight rounds, no breaks",
}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears existing rows in every collection.
//  2. Creates 10 accounts (password "password") with paired identities.
//  3. Each account follows ~3 others, authors 2 posts and a finished workout.
//  4. Reactions and comments are spread randomly over the posts.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB, log *slog.Logger) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"comments", "posts", "workouts", "identities", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Accounts ---
	accounts := make([]*Account, 0, 10)
	for i := 1; i <= 10; i++ {
		username := fmt.Sprintf("athlete%d", i)
		email := fmt.Sprintf("athlete%d@example.com", i)
		acc := &Account{
			ID:          uuid.NewString(),
			FirstName:   fmt.Sprintf("Athlete %d", i),
			Username:    username,
			UsernameKey: strings.ToLower(username),
			Email:       email,
			EmailKey:    strings.ToLower(email),
			BirthDate:   time.Date(1985+i, time.Month(i), i, 0, 0, 0, 0, time.UTC),
			Country:     "GB",
			Language:    "en",
			Gender:      []string{"female", "male"}[i%2],
			Level:       1,
		}
		if err := db.Create(acc).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}
		identity := Identity{AccountID: acc.ID, EmailKey: acc.EmailKey, PasswordHash: string(hash)}
		if err := db.Create(&identity).Error; err != nil {
			return fmt.Errorf("failed to seed identity: %w", err)
		}
		accounts = append(accounts, acc)
	}
	log.Info("seeded accounts", "count", len(accounts))

	// --- Follows ---
	for _, acc := range accounts {
		for j := 0; j < 3; j++ {
			target := accounts[r.Intn(len(accounts))]
			if target.ID == acc.ID {
				continue
			}
			acc.FollowedIDs, _ = AddID(acc.FollowedIDs, target.ID)
		}
	}

	// --- Posts, workouts ---
	var posts []*Post
	now := time.Now().UTC().Truncate(time.Millisecond)
	for i, acc := range accounts {
		for j := 0; j < 2; j++ {
			post := &Post{
				ID:              uuid.NewString(),
				AuthorID:        acc.ID,
				AuthorFirstName: acc.FirstName,
				AuthorUsername:  acc.Username,
				Text:            seedPostTexts[r.Intn(len(seedPostTexts))],
				CreatedAt:       now.Add(-time.Duration(i*2+j) * time.Hour),
			}
			posts = append(posts, post)
		}

		workout := &Workout{
			ID:                       uuid.NewString(),
			AccountID:                acc.ID,
			Type:                     "hiit",
			Date:                     now.Add(-24 * time.Hour),
			IsFinished:               true,
			Calories:                 180,
			SeriesPlanned:            8,
			WorkTimeSeconds:          30,
			RestTimeSeconds:          10,
			CompletedDurationSeconds: 320,
			CompletedSeries:          8,
		}
		if err := db.Create(workout).Error; err != nil {
			return fmt.Errorf("failed to seed workout: %w", err)
		}
		acc.CompletedWorkoutCount = 1
	}

	// --- Reactions, comments ---
	var comments []*Comment
	for _, post := range posts {
		for _, acc := range accounts {
			if r.Intn(100) < 30 {
				post.ReactingAccountIDs, _ = AddID(post.ReactingAccountIDs, acc.ID)
				acc.ReactedPostIDs, _ = AddID(acc.ReactedPostIDs, post.ID)
			}
			if r.Intn(100) < 10 {
				comments = append(comments, &Comment{
					ID:              uuid.NewString(),
					AuthorID:        acc.ID,
					PostID:          post.ID,
					AuthorFirstName: acc.FirstName,
					AuthorUsername:  acc.Username,
					Text:            "Great work!",
					CreatedAt:       post.CreatedAt.Add(time.Minute),
				})
				post.CommentingAccountIDs, _ = AddID(post.CommentingAccountIDs, acc.ID)
				acc.CommentedPostIDs, _ = AddID(acc.CommentedPostIDs, post.ID)
			}
		}
	}

	if len(posts) > 0 {
		if err := db.Create(&posts).Error; err != nil {
			return fmt.Errorf("failed to seed posts: %w", err)
		}
	}
	if len(comments) > 0 {
		if err := db.Create(&comments).Error; err != nil {
			return fmt.Errorf("failed to seed comments: %w", err)
		}
	}
	for _, acc := range accounts {
		if err := db.Save(acc).Error; err != nil {
			return fmt.Errorf("failed to update seeded account: %w", err)
		}
	}
	log.Info("seeded posts", "posts", len(posts), "comments", len(comments))

	return nil
}
