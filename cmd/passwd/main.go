// Command passwd prints the argon2id hash of an admin password for the
// -password-hash option of the server.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/iudanet/otagate/internal/crypto"
	"github.com/iudanet/otagate/internal/iocli"
	"github.com/iudanet/otagate/internal/validation"
)

var errMismatch = errors.New("passwords do not match")

func main() {
	if err := run(iocli.NewStdio(), os.Stdout, crypto.DefaultParams()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(console iocli.IO, out io.Writer, params crypto.Params) error {
	password, err := console.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := console.ReadPassword("Repeat password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if confirm != password {
		return errMismatch
	}

	hash, err := crypto.HashPassword(password, params)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, hash)
	return err
}
