package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/admin"
	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/database"
	"github.com/BBMRI-cz/fhir-place/internal/log"
	"github.com/BBMRI-cz/fhir-place/internal/repository"
	"github.com/BBMRI-cz/fhir-place/internal/security"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate                                          apply database migrations
  seed                                             create the admin (and test) user
  create-user -username U -first F -last L -email E
  set-active  -username U -active=true|false
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := log.New(cfg.Environment, cfg.Log).With().Str("component", "admin").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer pool.Close()

	if err := run(ctx, cfg, pool, logger, os.Args[1], os.Args[2:]); err != nil {
		logger.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		stop()
		pool.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, pool *pgxpool.Pool, logger zerolog.Logger, cmd string, args []string) error {
	if cmd == "migrate" {
		return database.Migrate(ctx, pool, logger)
	}

	policy := security.NewRequirementsCache(
		config.LoadPasswordRequirements,
		cfg.Password.Requirements(),
		cfg.Security.PasswordCacheTTL,
		logger,
	)
	accounts := service.NewAccountService(repository.NewUserRepository(pool), policy, logger)

	switch cmd {
	case "seed":
		password := cfg.Seed.AdminPassword
		if password == "" {
			if cfg.IsProduction() {
				var err error
				if password, err = admin.PromptNewPassword(os.Stdout); err != nil {
					return err
				}
			} else {
				password = admin.DefaultAdminPassword
			}
		}
		return admin.Seed(ctx, accounts, admin.SeedOptions{
			AdminPassword: password,
			WithTestUser:  cfg.Seed.TestUser && !cfg.IsProduction(),
		}, logger)

	case "create-user":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		username := fs.String("username", "", "login name")
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		email := fs.String("email", "", "email address")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *username == "" {
			return fmt.Errorf("-username is required")
		}

		password, err := admin.PromptNewPassword(os.Stdout)
		if err != nil {
			return err
		}
		user, err := accounts.CreateUser(ctx, service.CreateUserInput{
			Username:  *username,
			Password:  password,
			FirstName: *first,
			LastName:  *last,
			Email:     *email,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created user %s (%s)\n", user.Username, user.ID)
		return nil

	case "set-active":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		username := fs.String("username", "", "login name")
		active := fs.Bool("active", true, "whether the account may sign in")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return admin.SetActive(ctx, accounts, repository.NewSessionRepository(pool), *username, *active, logger)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
