package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"photo-culler/internal/database"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"

	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errPasswordShort    = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	errPasswordLong     = fmt.Errorf("password must be at most %d characters", maxPasswordLength)
)

// passwordReader prompts for and reads a password without echo.
type passwordReader func(prompt string) ([]byte, error)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	databaseDir := databaseDirFromEnv()
	db, err := database.New(ctx, filepath.Join(databaseDir, database.FileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}

	ok := true
	switch command {
	case "reset":
		ok = resetPassword(ctx, db, terminalPassword, os.Stdout, os.Stderr)
	case "status":
		showStatus(ctx, db, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command)) //nolint:gosec // input is sanitized via allowlist
		printUsage(os.Stdout)
		ok = false
	}

	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	if !ok {
		os.Exit(1)
	}
}

func databaseDirFromEnv() string {
	if dir := os.Getenv("DATABASE_DIR"); dir != "" {
		return dir
	}
	return defaultDatabaseDir
}

// sanitizeCommand replaces anything outside [a-zA-Z0-9_-] with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Photo Culler Password Management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: resetpw <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  reset   - Reset the password")
	fmt.Fprintln(w, "  status  - Check if password is configured")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func terminalPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return password, err
}

// checkPassword applies the same rules as the web setup form.
func checkPassword(password, confirm []byte) error {
	if !bytes.Equal(password, confirm) {
		return errPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return errPasswordShort
	}
	if len(password) > maxPasswordLength {
		return errPasswordLong
	}
	return nil
}

func resetPassword(ctx context.Context, db *database.Database, read passwordReader, stdout, stderr io.Writer) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if !db.HasUsers(ctx) {
		fmt.Fprintln(stderr, "Error: No password configured yet. Use the web interface to set up.")
		return false
	}

	password, err := read("New Password: ")
	if err != nil {
		fmt.Fprintf(stderr, "Error reading password: %v\n", err)
		return false
	}

	confirm, err := read("Confirm Password: ")
	if err != nil {
		fmt.Fprintf(stderr, "Error reading password: %v\n", err)
		return false
	}

	if err := checkPassword(password, confirm); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", capitalize(err.Error()))
		return false
	}

	if err := db.UpdatePassword(ctx, string(password)); err != nil {
		fmt.Fprintf(stderr, "Error: Failed to update password: %v\n", err)
		return false
	}

	fmt.Fprintln(stdout, "Password updated successfully.")
	fmt.Fprintln(stdout, "All existing sessions have been invalidated.")
	return true
}

func showStatus(ctx context.Context, db *database.Database, stdout io.Writer) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if db.HasUsers(ctx) {
		fmt.Fprintln(stdout, "Status: Password is configured")
	} else {
		fmt.Fprintln(stdout, "Status: No password configured (setup required)")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
