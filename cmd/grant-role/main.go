package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/summercamp/camp-backend/internal/config"
	"github.com/summercamp/camp-backend/internal/database"
	"github.com/summercamp/camp-backend/internal/logger"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository"
	"github.com/summercamp/camp-backend/internal/service"
	"golang.org/x/term"
)

// grant-role sets the role of a user by email. Role changes over HTTP need an
// admin, so the first admin is created here.
func main() {
	var email, role string
	flag.StringVar(&email, "email", "", "Email of the user")
	flag.StringVar(&role, "role", string(model.RoleAdmin), "Role to grant: none, instructor or admin")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userService := service.NewUserService(repository.NewUserRepository(pool), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	if email == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Enter Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}
	if email == "" {
		fmt.Println("Error: Email is required (use -email when not running in a terminal)")
		os.Exit(1)
	}

	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		fmt.Printf("Error: unknown role %q\n", role)
		os.Exit(1)
	}

	user, err := userService.GrantByEmail(ctx, email, r)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to grant role")
	}

	fmt.Printf("Success! %s (%s) now has role %s\n", user.Email, user.ID, user.Role)
}
