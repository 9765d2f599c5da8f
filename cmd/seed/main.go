// Command main runs the database seeder for Shadospace.
package main

import (
	"flag"
	"log"

	"shadospace/internal/config"
	"shadospace/internal/database"
	"shadospace/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (faster, dev only)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeederWithOptions(db, seed.Options{SkipBcrypt: *skipBcrypt})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	posts, err := s.SeedPosts(users, *numPosts)
	if err != nil {
		log.Fatalf("Post seeding failed: %v", err)
	}
	if err := s.SeedEngagement(users, posts); err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
