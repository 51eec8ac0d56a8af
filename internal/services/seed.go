package services

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"notsolong/internal/models"
	"notsolong/internal/utils"
)

type seedTitle struct {
	Name     string
	Category string
	Author   string
	Recap    string
}

var seedCatalog = []seedTitle{
	{"The Matrix", models.CategoryMovie, "The Wachowskis", "Bullet time still feels brand new."},
	{"Pride and Prejudice", models.CategoryBook, "Jane Austen", "Tea-time gossip doubles as battlefield planning."},
	{"Serial", models.CategoryPodcast, "Sarah Koenig", "Investigative tape hiss keeps the suspense humming."},
	{"1984", models.CategoryBook, "George Orwell", "Big Brother never sleeps, even during lunch."},
	{"The Crown", models.CategoryTVSeries, "Peter Morgan", "Palace intrigue is just group chat drama with tiaras."},
	{"The Godfather", models.CategoryMovie, "Mario Puzo", "Family dinners come with vendettas for dessert."},
	{"Dune", models.CategoryBook, "Frank Herbert", "Desert politics make space travel look easy."},
	{"Planet Money", models.CategoryPodcast, "NPR", "Economics explained via tote bags and dad jokes."},
	{"The Expanse", models.CategoryTVSeries, "James S. A. Corey", "Belters, Earthers, and Martians share awkward elevator rides."},
	{"The Last Dance", models.CategoryTVShow, "ESPN", "Basketball flashbacks edited like a heist movie."},
	{"TED Talk: Do Schools Kill Creativity?", models.CategorySpeech, "Ken Robinson", "Creativity wins by asking kids to keep daydreaming."},
	{"Hamilton", models.CategoryOther, "Lin-Manuel Miranda", "Founding Fathers rap battle on every beat."},
}

const seedUserCount = 8

// Seed populates a demo dataset: users, the title catalog, one recap
// per title, and random ledger votes. Counters are then filled by the
// bulk recomputation path rather than incrementally. Skips if titles
// already exist.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Title{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.L().Info("seed data already present, skipping")
		return nil
	}

	users, err := seedUsers(conn)
	if err != nil {
		return err
	}

	var recaps []models.Recap
	for i, entry := range seedCatalog {
		creator := users[i%len(users)]
		title := models.Title{
			Name:        entry.Name,
			Category:    entry.Category,
			Author:      entry.Author,
			CreatedByID: &creator.ID,
		}
		if err := conn.Create(&title).Error; err != nil {
			return err
		}
		recap := models.Recap{TitleID: title.ID, UserID: creator.ID, Text: entry.Recap}
		if err := conn.Create(&recap).Error; err != nil {
			return err
		}
		recaps = append(recaps, recap)
	}

	// Random ledger rows; counters stay zero until RefreshMetrics.
	for _, recap := range recaps {
		for _, user := range users {
			switch rand.Intn(3) {
			case 0:
				// no opinion
			case 1:
				if err := conn.Create(&models.Vote{RecapID: recap.ID, UserID: user.ID, Value: Upvote}).Error; err != nil {
					return err
				}
			case 2:
				if err := conn.Create(&models.Vote{RecapID: recap.ID, UserID: user.ID, Value: Downvote}).Error; err != nil {
					return err
				}
			}
		}
	}

	if err := NewVoteService(conn).RefreshMetrics(); err != nil {
		return err
	}

	zap.L().Info("seed completed",
		zap.Int("users", len(users)),
		zap.Int("titles", len(seedCatalog)),
		zap.Int("recaps", len(recaps)))
	return nil
}

func seedUsers(conn *gorm.DB) ([]models.User, error) {
	hash, err := utils.HashPassword("password123")
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, seedUserCount)
	for i := 1; i <= seedUserCount; i++ {
		user := models.User{
			Username: fmt.Sprintf("reader%d", i),
			Email:    fmt.Sprintf("reader%d@example.com", i),
			Password: hash,
		}
		if err := conn.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
