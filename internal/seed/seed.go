// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with test data: users with mixed profile
// privacy, public and private posts, a follow mesh, and pending follow
// requests with their inbox notifications.
func Seed(db *gorm.DB, opts Options) error {
	slog.Info("starting database seeding",
		slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			slog.Warn("could not clear all existing data, continuing anyway")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	slog.Info("test users created", slog.Int("count", len(users)))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	slog.Info("posts created", slog.Int("count", len(posts)))

	if err := createEngagement(db, users, posts); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}

	edges, requests, err := createFollowMesh(db, users)
	if err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}
	slog.Info("follow mesh created",
		slog.Int("edges", edges), slog.Int("pending_requests", requests))

	slog.Info("database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	slog.Info("clearing existing data")
	sql := `TRUNCATE TABLE notifications, follow_requests, follows, comments, likes, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

// createFollowMesh wires users together. Edges only point at public
// profiles or come from an accepted history; everything aimed at a
// private profile that was not "accepted" becomes a pending request with
// the notification the real transition would have written.
func createFollowMesh(db *gorm.DB, users []models.User) (edges, requests int, err error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(42))

	for i := range users {
		for j := range users {
			if i == j || r.Float64() > 0.2 {
				continue
			}
			follower, target := users[i], users[j]

			// Private targets split between already-accepted edges and
			// still-pending requests.
			if target.PrivateProfile && r.Float64() < 0.5 {
				txErr := db.Transaction(func(tx *gorm.DB) error {
					request := models.FollowRequest{
						RequesterID: follower.ID,
						TargetID:    target.ID,
						Status:      models.FollowRequestStatusPending,
					}
					if err := tx.Create(&request).Error; err != nil {
						return err
					}
					notification := models.Notification{
						UserID:    target.ID,
						Type:      models.NotificationTypeFollowRequest,
						RelatedID: follower.ID,
						Message:   fmt.Sprintf("%s sent you a follow request", follower.Username),
					}
					return tx.Create(&notification).Error
				})
				if txErr != nil {
					return edges, requests, txErr
				}
				requests++
				continue
			}

			edge := models.Follow{FollowerID: follower.ID, FollowingID: target.ID}
			if err := db.Create(&edge).Error; err != nil {
				return edges, requests, err
			}
			edges++
		}
	}
	return edges, requests, nil
}

func createEngagement(db *gorm.DB, users []models.User, posts []models.Post) error {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(43))

	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID || r.Float64() > 0.15 {
				continue
			}
			like := models.Like{UserID: user.ID, PostID: post.ID}
			if err := db.Create(&like).Error; err != nil {
				return err
			}
			if r.Float64() < 0.3 {
				comment := randomComment(user.ID, post.ID)
				if err := db.Create(&comment).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
