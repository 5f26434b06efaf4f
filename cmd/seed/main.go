package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"vidgate/internal/config"
	"vidgate/internal/database"
	"vidgate/internal/domain"
	"vidgate/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	count, err := videoRepo.CountAll(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if count > 0 {
		log.Printf("videos already seeded count=%d", count)
		return
	}

	log.Println("Creating demo user...")
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	demo := &domain.User{
		Email:        "demo@vidgate.local",
		PasswordHash: string(hash),
		Name:         "Demo User",
	}
	if err := userRepo.Create(ctx, demo); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating videos...")
	videos := []domain.Video{
		{
			Title:        "How to Start a Startup",
			Description:  "Sam Altman and Dustin Moskovitz share key insights on starting a successful startup.",
			SourceID:     "CBYhVcO4WgI",
			ThumbnailURL: "https://img.youtube.com/vi/CBYhVcO4WgI/maxresdefault.jpg",
			Active:       true,
		},
		{
			Title:        "The Single Biggest Reason Why Startups Succeed",
			Description:  "Bill Gross walks through the factors that most influenced startup outcomes.",
			SourceID:     "bNpx7gpSqbY",
			ThumbnailURL: "https://img.youtube.com/vi/bNpx7gpSqbY/maxresdefault.jpg",
			Active:       true,
		},
		{
			Title:        "Inside the Mind of a Master Procrastinator",
			Description:  "Tim Urban takes us on a journey through the procrastinating brain.",
			SourceID:     "arj7oStGLkU",
			ThumbnailURL: "https://img.youtube.com/vi/arj7oStGLkU/maxresdefault.jpg",
			Active:       true,
		},
		{
			Title:        "The Puzzle of Motivation",
			Description:  "Dan Pink examines what really drives performance at work.",
			SourceID:     "rrkrvAUbU9Y",
			ThumbnailURL: "https://img.youtube.com/vi/rrkrvAUbU9Y/maxresdefault.jpg",
			Active:       true,
		},
		{
			Title:        "Archived Talk (inactive)",
			Description:  "Hidden from the dashboard; kept for history.",
			SourceID:     "dQw4w9WgXcQ",
			ThumbnailURL: "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
			Active:       false,
		},
	}
	for i := range videos {
		if err := videoRepo.Create(ctx, &videos[i]); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("seed complete users=1 videos=%d", len(videos))
}
