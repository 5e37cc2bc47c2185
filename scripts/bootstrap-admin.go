package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/keydesk/keydesk/internal/repository"
	"github.com/keydesk/keydesk/internal/service"
)

type output struct {
	AdminID       int64  `json:"admin_id"`
	Email         string `json:"email"`
	SchemaVersion uint   `json:"schema_version"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bootstrap-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		databaseURL = fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = fs.String("email", os.Getenv("ADMIN_EMAIL"), "Admin email")
		password    = fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (8-128 characters)")
		migrate     = fs.Bool("migrate", true, "Apply pending migrations first")
		format      = fs.String("format", "plain", "Output format: plain or json")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *databaseURL == "" {
		fmt.Fprintln(stderr, "DATABASE_URL is required")
		return 1
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(stderr, "-email and -password are required")
		return 1
	}
	outFormat := strings.ToLower(*format)
	if outFormat != "plain" && outFormat != "json" {
		fmt.Fprintln(stderr, "invalid format; use plain or json")
		return 1
	}

	if *migrate {
		if err := repository.Migrate(*databaseURL); err != nil {
			fmt.Fprintln(stderr, "migrate:", err)
			return 1
		}
	}

	version, dirty, err := repository.SchemaVersion(*databaseURL)
	if err != nil {
		fmt.Fprintln(stderr, "schema version:", err)
		return 1
	}
	if dirty {
		fmt.Fprintf(stderr, "schema version %d is dirty; repair the failed migration first\n", version)
		return 1
	}
	if version == 0 {
		fmt.Fprintln(stderr, "schema has no migrations applied; drop -migrate=false to apply them")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, repository.PoolConfig{MaxConns: 1})
	if err != nil {
		fmt.Fprintln(stderr, "connect database:", err)
		return 1
	}
	defer repo.Close()

	// Registration does not open a session, so no session store is needed.
	accounts := service.NewAccountService(repo, nil, 0, nil)
	admin, err := accounts.Register(ctx, service.Credentials{Email: *email, Password: *password})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			fmt.Fprintln(stderr, "invalid input:", vErr.Message)
		case errors.Is(err, service.ErrEmailExists):
			fmt.Fprintf(stderr, "admin %s already exists\n", *email)
		default:
			fmt.Fprintln(stderr, "create admin:", err)
		}
		return 1
	}

	out := output{
		AdminID:       admin.ID,
		Email:         admin.Email,
		SchemaVersion: version,
	}

	if outFormat == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return 0
	}
	fmt.Fprintf(stdout, "created admin %d (%s)\n", out.AdminID, out.Email)
	return 0
}
