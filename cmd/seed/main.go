// Command seed fills the database with demo accounts and activity.
package main

import (
	"flag"
	"log"

	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.NumUsers, "users", 50, "Number of users to create")
	flag.IntVar(&opts.NumPosts, "posts", 200, "Number of posts to create")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.IntVar(&opts.MaxDays, "max-days", 90, "Spread post timestamps over this many days")
	flag.BoolVar(&opts.SkipBcrypt, "fast", false, "Hash passwords at minimum bcrypt cost")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Generate data without writing it")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed for reproducible data")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v\n", opts.NumUsers, opts.NumPosts, opts.ShouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done. Every seeded user has the password: %s", seed.DefaultPassword)
}
