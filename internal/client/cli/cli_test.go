package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/otagate/pkg/api"
)

// fakeController записывает вызовы API
type fakeController struct {
	removed     []api.KeyRequest
	loginErr    error
	uploadErr   error
	password    string
	uploaded    string
	uploadToken string
	logouts     int
}

func (f *fakeController) Insert(_ context.Context, value string) (*api.KeyResponse, error) {
	return &api.KeyResponse{Key: "k4", Success: true}, nil
}

func (f *fakeController) Remove(_ context.Context, req api.KeyRequest) (*api.KeyResponse, error) {
	f.removed = append(f.removed, req)
	key := req.Key
	if key == "" {
		key = "k1"
	}
	return &api.KeyResponse{Key: key, Success: true}, nil
}

func (f *fakeController) Print(context.Context) (*api.ListResponse, error) {
	return &api.ListResponse{
		Entries:  []api.Entry{{Key: "k0", Value: "alpha"}, {Key: "k3", Value: "beta"}},
		Count:    2,
		Capacity: 100,
		Success:  true,
	}, nil
}

func (f *fakeController) Time(context.Context) (*api.TimeResponse, error) {
	return &api.TimeResponse{Time: "2024-07-01 13:00:00", LastSync: "2024-07-01 12:30:00", Synced: true, DST: true}, nil
}

func (f *fakeController) Health(context.Context) (*api.HealthResponse, error) {
	return &api.HealthResponse{Status: "ok", Version: "1.2.0", Storage: "bolt"}, nil
}

func (f *fakeController) Login(_ context.Context, password string) (string, error) {
	f.password = password
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "tok", nil
}

func (f *fakeController) Logout(context.Context, string) error {
	f.logouts++
	return nil
}

func (f *fakeController) Upload(_ context.Context, token, filename string, image io.Reader) (*api.UpdateResponse, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploadToken = token
	f.uploaded = filename
	return &api.UpdateResponse{Success: true, Message: "update successful, restarting", SHA256: "e3b0c442", Bytes: 4}, nil
}

// fakeIO отвечает на запрос пароля заранее заданной строкой
type fakeIO struct {
	password string
	prompts  int
}

func (f *fakeIO) Println(a ...any)               {}
func (f *fakeIO) Printf(format string, a ...any) {}

func (f *fakeIO) ReadPassword(string) (string, error) {
	f.prompts++
	return f.password, nil
}

func newTestCli(client Controller, console *fakeIO, out io.Writer, passwords Passwords, env map[string]string) *Cli {
	c := New(client, console, out, passwords)
	c.getenv = func(name string) string { return env[name] }
	return c
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fw.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xE9, 1, 2, 3}, 0o600))
	return path
}

func TestRun_ReadCommands(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		args     []string
		contains []string
	}{
		{name: "health", command: "health", contains: []string{"Status:  ok", "Version: 1.2.0"}},
		{name: "time", command: "time", contains: []string{"2024-07-01 13:00:00", "DST:       yes"}},
		{name: "print", command: "print", contains: []string{"k3    beta", "2/100 slots used"}},
		{name: "insert", command: "insert", args: []string{"gamma"}, contains: []string{"Stored as k4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			c := newTestCli(&fakeController{}, &fakeIO{}, &out, Passwords{}, nil)

			require.NoError(t, c.Run(context.Background(), tt.command, tt.args))
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_RemoveByKeyOrValue(t *testing.T) {
	client := &fakeController{}
	var out strings.Builder
	c := newTestCli(client, &fakeIO{}, &out, Passwords{}, nil)

	require.NoError(t, c.Run(context.Background(), "remove", []string{"k7"}))
	require.NoError(t, c.Run(context.Background(), "remove", []string{"k07"}))

	require.Len(t, client.removed, 2)
	assert.Equal(t, api.KeyRequest{Key: "k7"}, client.removed[0])
	assert.Equal(t, api.KeyRequest{Value: "k07"}, client.removed[1], "not a canonical key, treated as value")
}

func TestRun_Usage(t *testing.T) {
	c := newTestCli(&fakeController{}, &fakeIO{}, io.Discard, Passwords{}, nil)

	assert.ErrorIs(t, c.Run(context.Background(), "insert", nil), ErrUsage)
	assert.ErrorIs(t, c.Run(context.Background(), "remove", []string{"a", "b"}), ErrUsage)
	assert.ErrorIs(t, c.Run(context.Background(), "reboot", nil), ErrUsage)
}

func TestRun_Upload(t *testing.T) {
	client := &fakeController{}
	console := &fakeIO{password: "prompted-password"}
	var out strings.Builder
	c := newTestCli(client, console, &out, Passwords{}, nil)

	require.NoError(t, c.Run(context.Background(), "upload", []string{writeImage(t)}))

	assert.Equal(t, "prompted-password", client.password)
	assert.Equal(t, "tok", client.uploadToken)
	assert.Equal(t, "fw.bin", client.uploaded)
	assert.Equal(t, 1, console.prompts)
	assert.Contains(t, out.String(), "restarting")
	assert.Contains(t, out.String(), "SHA-256: e3b0c442")
}

func TestRun_UploadFailureLogsOut(t *testing.T) {
	client := &fakeController{uploadErr: errors.New("server error (500): update write failed")}
	c := newTestCli(client, &fakeIO{password: "pw"}, io.Discard, Passwords{}, nil)

	err := c.Run(context.Background(), "upload", []string{writeImage(t)})

	require.Error(t, err)
	assert.Equal(t, 1, client.logouts)
}

func TestRun_UploadMissingFile(t *testing.T) {
	client := &fakeController{}
	console := &fakeIO{password: "pw"}
	c := newTestCli(client, console, io.Discard, Passwords{}, nil)

	err := c.Run(context.Background(), "upload", []string{filepath.Join(t.TempDir(), "absent.bin")})

	require.Error(t, err)
	assert.Zero(t, console.prompts, "password is not asked for a missing image")
	assert.Empty(t, client.password)
}

// TestGetPassword проверяет приоритет источников пароля
func TestGetPassword(t *testing.T) {
	dir := t.TempDir()
	passwordFile := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("from-file\n"), 0o600))
	emptyFile := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(emptyFile, []byte("\n"), 0o600))

	tests := []struct {
		env       map[string]string
		name      string
		file      string
		prompt    string
		expected  string
		expectErr bool
	}{
		{name: "env wins", env: map[string]string{PasswordEnv: "from-env"}, file: passwordFile, prompt: "from-prompt", expected: "from-env"},
		{name: "file", file: passwordFile, prompt: "from-prompt", expected: "from-file"},
		{name: "prompt", prompt: "from-prompt", expected: "from-prompt"},
		{name: "empty file", file: emptyFile, expectErr: true},
		{name: "missing file", file: filepath.Join(dir, "absent"), expectErr: true},
		{name: "empty prompt", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCli(&fakeController{}, &fakeIO{password: tt.prompt}, io.Discard, Passwords{FromFile: tt.file}, tt.env)

			password, err := c.getPassword()
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, password)
		})
	}
}

func TestPrintUsage(t *testing.T) {
	var out strings.Builder
	PrintUsage(&out)

	for _, command := range []string{"health", "time", "print", "insert", "remove", "upload"} {
		assert.Contains(t, out.String(), fmt.Sprintf("  %s", command))
	}
}
