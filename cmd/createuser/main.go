package main

import (
	"context"
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/database"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository/postgres"
)

func main() {
	email := flag.String("email", "", "user email")
	password := flag.String("password", "", "user password")
	role := flag.String("role", "member", "user role (member or admin)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("usage: createuser -email <email> -password <password> [-role admin]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password:", err)
	}

	userRepo := postgres.NewUserRepository(db.DB)
	user := &repository.User{
		Email:        *email,
		PasswordHash: string(hash),
		Role:         *role,
	}

	if err := userRepo.Create(context.Background(), user); err != nil {
		log.Fatal("failed to create user:", err)
	}

	log.Printf("created user %s (%s) with id %s", user.Email, user.Role, user.ID)
}
