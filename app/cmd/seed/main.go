// Command seed registers a member in the local record set, so a portal
// running in local mode has records to authenticate against.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"member-portal/app/config"
	"member-portal/app/di"
	"member-portal/app/domain"
	"member-portal/app/utils/logger"
)

func main() {
	email := flag.String("email", "", "member email (required)")
	name := flag.String("name", "", "member display name (required)")
	password := flag.String("password", "", "member password (required)")
	role := flag.String("role", string(domain.RoleMember), "member role (member or admin)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *email == "" || *name == "" || *password == "" {
		appLogger.Error("email, name and password are required")
		flag.Usage()
		os.Exit(2)
	}

	memberRole := domain.MemberRole(*role)
	if !memberRole.IsValid() {
		appLogger.Error("invalid role", "role", *role)
		os.Exit(2)
	}

	if cfg.StorageMode != domain.ModeLocal {
		appLogger.Error("seeding requires STORAGE_MODE=local", "mode", cfg.StorageMode)
		os.Exit(2)
	}

	container, err := di.NewContainer(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize dependency container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	identity, err := container.LocalAdapter.RegisterMember(context.Background(), *email, *name, *password, memberRole)
	if err != nil {
		appLogger.Error("Failed to register member", "email", *email, "error", err)
		os.Exit(1)
	}

	appLogger.Info("Member registered",
		"member_id", identity.ID,
		"email", identity.Email,
		"role", identity.Role)
}
