// Package cli implements the otagatectl commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iudanet/otagate/internal/iocli"
	"github.com/iudanet/otagate/pkg/api"
)

// PasswordEnv - переменная окружения с паролем администратора
const PasswordEnv = "OTAGATE_ADMIN_PASSWORD"

//go:generate moq -out controller_mock.go . Controller

// Controller - операции HTTP API контроллера
type Controller interface {
	Insert(ctx context.Context, value string) (*api.KeyResponse, error)
	Remove(ctx context.Context, req api.KeyRequest) (*api.KeyResponse, error)
	Print(ctx context.Context) (*api.ListResponse, error)
	Time(ctx context.Context) (*api.TimeResponse, error)
	Health(ctx context.Context) (*api.HealthResponse, error)
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Upload(ctx context.Context, token, filename string, image io.Reader) (*api.UpdateResponse, error)
}

// Passwords - источники пароля администратора
type Passwords struct {
	FromFile string
}

type Cli struct {
	client    Controller
	io        iocli.IO
	out       io.Writer
	getenv    func(string) string
	passwords Passwords
}

func New(client Controller, console iocli.IO, out io.Writer, passwords Passwords) *Cli {
	return &Cli{
		client:    client,
		io:        console,
		out:       out,
		getenv:    os.Getenv,
		passwords: passwords,
	}
}

// getPassword retrieves the admin password with priority:
// 1. Environment variable OTAGATE_ADMIN_PASSWORD
// 2. File given by -password-file
// 3. Interactive prompt (fallback)
func (c *Cli) getPassword() (string, error) {
	if envPassword := c.getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if c.passwords.FromFile != "" {
		content, err := os.ReadFile(c.passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	password, err := c.io.ReadPassword("Admin password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "otagatectl - controller client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  otagatectl [OPTIONS] COMMAND")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -version                Show version information")
	fmt.Fprintln(w, "  -server URL             Controller URL (default: http://192.168.4.1)")
	fmt.Fprintln(w, "  -password-file PATH     Path to file containing the admin password")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin password priority (highest to lowest):")
	fmt.Fprintln(w, "  1. "+PasswordEnv+" environment variable")
	fmt.Fprintln(w, "  2. -password-file (file path)")
	fmt.Fprintln(w, "  3. Interactive prompt (fallback)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  health                  Check that the controller answers")
	fmt.Fprintln(w, "  time                    Show the controller clock")
	fmt.Fprintln(w, "  print                   List stored entries")
	fmt.Fprintln(w, "  insert <value>          Store value in the first free slot")
	fmt.Fprintln(w, "  remove <kN|value>       Remove an entry by key or by value")
	fmt.Fprintln(w, "  upload <file>           Flash a firmware image (requires admin password)")
}
