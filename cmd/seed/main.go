// Command main runs the database seeder for Vibelet.
package main

import (
	"flag"
	"log"

	"vibelet/internal/config"
	"vibelet/internal/database"
	"vibelet/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numVibes := flag.Int("vibes", 200, "Number of vibes to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Printf("Seeding: %d users, %d vibes, clean=%v", *numUsers, *numVibes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedSocialMesh(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if err := s.SeedEngagement(users, *numVibes); err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}

	log.Println("Done. All seeded users have the password: Password123456")
}
