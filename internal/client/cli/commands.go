package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iudanet/otagate/internal/validation"
	"github.com/iudanet/otagate/pkg/api"
)

// ErrUsage возвращается при неверных аргументах команды
var ErrUsage = errors.New("invalid usage")

func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "health":
		return c.runHealth(ctx)
	case "time":
		return c.runTime(ctx)
	case "print":
		return c.runPrint(ctx)
	case "insert":
		if len(args) != 1 {
			return fmt.Errorf("%w: insert <value>", ErrUsage)
		}
		return c.runInsert(ctx, args[0])
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("%w: remove <kN|value>", ErrUsage)
		}
		return c.runRemove(ctx, args[0])
	case "upload":
		if len(args) != 1 {
			return fmt.Errorf("%w: upload <file>", ErrUsage)
		}
		return c.runUpload(ctx, args[0])
	default:
		return fmt.Errorf("%w: unknown command %s", ErrUsage, command)
	}
}

func (c *Cli) runHealth(ctx context.Context) error {
	resp, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Status:  %s\n", resp.Status)
	fmt.Fprintf(c.out, "Version: %s\n", resp.Version)
	fmt.Fprintf(c.out, "Storage: %s\n", resp.Storage)
	return nil
}

func (c *Cli) runTime(ctx context.Context) error {
	resp, err := c.client.Time(ctx)
	if err != nil {
		return err
	}
	if !resp.Synced {
		fmt.Fprintln(c.out, "Clock is not synchronized")
		return nil
	}

	dst := "no"
	if resp.DST {
		dst = "yes"
	}
	fmt.Fprintf(c.out, "Time:      %s\n", resp.Time)
	fmt.Fprintf(c.out, "DST:       %s\n", dst)
	fmt.Fprintf(c.out, "Last sync: %s\n", resp.LastSync)
	return nil
}

func (c *Cli) runPrint(ctx context.Context) error {
	resp, err := c.client.Print(ctx)
	if err != nil {
		return err
	}
	for _, e := range resp.Entries {
		fmt.Fprintf(c.out, "%-5s %s\n", e.Key, e.Value)
	}
	fmt.Fprintf(c.out, "%d/%d slots used\n", resp.Count, resp.Capacity)
	return nil
}

func (c *Cli) runInsert(ctx context.Context, value string) error {
	resp, err := c.client.Insert(ctx, value)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Stored as %s\n", resp.Key)
	return nil
}

// runRemove удаляет по ключу, если аргумент похож на ключ, иначе по значению
func (c *Cli) runRemove(ctx context.Context, arg string) error {
	req := api.KeyRequest{Value: arg}
	if validation.ValidateKey(arg) == nil {
		req = api.KeyRequest{Key: arg}
	}

	resp, err := c.client.Remove(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed %s\n", resp.Key)
	return nil
}

func (c *Cli) runUpload(ctx context.Context, path string) error {
	image, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		_ = image.Close()
	}()

	password, err := c.getPassword()
	if err != nil {
		return err
	}

	token, err := c.client.Login(ctx, password)
	if err != nil {
		return err
	}

	resp, err := c.client.Upload(ctx, token, filepath.Base(path), image)
	if err != nil {
		// после неудачной прошивки контроллер продолжает работу, закрываем сессию
		if logoutErr := c.client.Logout(ctx, token); logoutErr != nil {
			c.io.Printf("Warning: logout failed: %v\n", logoutErr)
		}
		return err
	}

	fmt.Fprintln(c.out, resp.Message)
	fmt.Fprintf(c.out, "Written: %d bytes\n", resp.Bytes)
	fmt.Fprintf(c.out, "SHA-256: %s\n", resp.SHA256)
	return nil
}
