package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"vidtube/models"
	"vidtube/pkg/token"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_user <username> <email> <password>")
		os.Exit(2)
	}
	username := strings.ToLower(os.Args[1])
	email := strings.ToLower(os.Args[2])
	password := os.Args[3]
	if len(password) < 6 {
		log.Fatal("password too short (min 6)")
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// check existing
	var existing models.User
	if err := db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", existing.Username, existing.ID)
		os.Exit(0)
	}

	hpw, err := token.HashPassword(password)
	if err != nil {
		log.Fatalf("hash failed: %v", err)
	}
	user := models.User{
		Username:       username,
		Email:          email,
		FullName:       username,
		HashedPassword: hpw,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d\n", username, user.ID)
}
