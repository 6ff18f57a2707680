package seed

import (
	"fmt"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	users := make([]models.User, 0, count)

	// Always include fixed accounts so logins stay predictable across reseeds.
	if count >= 2 {
		for _, name := range []string{"ripple", "test"} {
			user := models.User{
				Username: name,
				Email:    fmt.Sprintf("%s@example.com", name),
				Password: string(hashedPassword),
				Bio:      "One of the OGs.",
				Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name),
			}
			if err := db.Create(&user).Error; err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hashedPassword),
			Bio:      gofakeit.Sentence(8),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			// Roughly a third of seeded accounts require follow approval.
			PrivateProfile: r.Float64() < 0.35,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []models.User, count int) ([]models.Post, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		post := models.Post{
			UserID:   author.ID,
			Content:  gofakeit.Paragraph(1, 3, 8, "\n"),
			IsPublic: r.Float64() < 0.7,
		}
		if r.Float64() < 0.25 {
			post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		}

		// Spread created_at over the past 90 days for a realistic feed.
		daysBack := r.Intn(90)
		hoursBack := r.Intn(24)
		post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func randomComment(userID, postID uint) models.Comment {
	return models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: gofakeit.Sentence(10),
	}
}
