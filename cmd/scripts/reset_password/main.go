package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/utils"
)

// Resets a user's password from the command line, for when the admin locks
// themselves out. Usage:
//
//	go run ./cmd/scripts/reset_password -email admin@example.com -password newpass123
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	email := flag.String("email", "", "email of the user")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	if len(*password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := models.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := models.GetDB()

	var user models.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("User not found: %v", err)
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Model(&user).Update("password", hash).Error; err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}

	fmt.Printf("Password updated for %s (user id %d)\n", user.Email, user.ID)
}
