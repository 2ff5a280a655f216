package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippy/internal/config"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/server"
)

func TestSession_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	s, err := loadSession(path)
	require.NoError(t, err)
	assert.Empty(t, s.Token)

	s.Server, s.Email, s.Token = "http://example.test", "me@example.com", "tok"
	require.NoError(t, s.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := loadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", loaded.Server)
	assert.Equal(t, "tok", loaded.Token)

	require.NoError(t, loaded.Clear())
	cleared, err := loadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", cleared.Server)
	assert.Empty(t, cleared.Email)
	assert.Empty(t, cleared.Token)
}

func TestLoadSession_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := loadSession(path)
	assert.Error(t, err)
}

func TestResolvePrefix(t *testing.T) {
	snippets := []model.Snippet{
		{ID: "abc123", Title: "one"},
		{ID: "abd456", Title: "two"},
		{ID: "abc", Title: "exact"},
	}

	tests := []struct {
		name    string
		prefix  string
		want    string
		wantErr string
	}{
		{"unique prefix", "abd", "two", ""},
		{"exact id wins over longer match", "abc", "exact", ""},
		{"ambiguous", "ab", "", "ambiguous"},
		{"no match", "zz", "", "no snippet matches"},
		{"empty", "  ", "", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePrefix(snippets, tt.prefix)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Title)
		})
	}
}

func TestCodeBlock(t *testing.T) {
	s := model.Snippet{Content: "x := 1\n\n", Language: model.StringPtr("go")}
	assert.Equal(t, "```go\nx := 1\n```\n", codeBlock(s))

	s = model.Snippet{Content: "```js\nfoo()\n```"}
	assert.Equal(t, "````\n```js\nfoo()\n```\n````\n", codeBlock(s))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".go", extensionFor("go"))
	assert.Equal(t, ".py", extensionFor("Python"))
	assert.Equal(t, ".txt", extensionFor(""))
	assert.Equal(t, ".txt", extensionFor("cobol"))
}

func TestPrintList(t *testing.T) {
	items := []model.Snippet{{ID: "0123456789", Title: "Quick sort", UpdatedAt: time.Now()}}

	var buf bytes.Buffer
	printList(&buf, "me@example.com", "", nil, 0)
	assert.Contains(t, buf.String(), "No snippets yet")

	buf.Reset()
	printList(&buf, "me@example.com", "zig", nil, 3)
	assert.Contains(t, buf.String(), `No snippets match "zig"`)

	buf.Reset()
	printList(&buf, "me@example.com", "sort", items, 3)
	assert.Contains(t, buf.String(), "1 of 3 snippets for")
	assert.Contains(t, buf.String(), "Quick sort")
	assert.Contains(t, buf.String(), "01234567")
	assert.NotContains(t, buf.String(), "0123456789")
}

func startServer(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{
		AppEnv:             "development",
		AppPort:            8080,
		BaseURL:            "http://localhost:8080",
		DBPath:             ":memory:",
		JWTSecret:          "cli-test-secret-0123456789",
		TokenTTL:           time.Hour,
		ListCacheTTL:       time.Minute,
		ShutdownTimeout:    time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	srv, err := server.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestCLI_EndToEnd(t *testing.T) {
	url := startServer(t)
	sessionPath := filepath.Join(t.TempDir(), "session.yaml")

	run := func(stdin string, args ...string) (string, error) {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetIn(strings.NewReader(stdin))
		rootCmd.SetArgs(append([]string{"--server", url, "--session", sessionPath}, args...))
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	_, err := run("", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	out, err := run("secret1\n", "register", "cli@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as cli@example.com")

	out, err = run("fmt.Println(1)\n", "add", "Hello Go", "-l", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "Added snippet")

	out, err = run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello Go")
	assert.Contains(t, out, "cli@example.com")

	out, err = run("", "search", "PRINTLN")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1 snippets")

	list, err := apiClient.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	out, err = run("", "show", id[:6], "--raw")
	require.NoError(t, err)
	assert.Equal(t, "fmt.Println(1)\n", out)

	_, err = run("", "edit", id[:6], "-t", "Renamed")
	require.NoError(t, err)
	list, err = apiClient.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", list[0].Title)
	assert.Equal(t, "fmt.Println(1)\n", list[0].Content)

	_, err = run("", "edit", id[:6], "-t", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update snippet")

	out, err = run("n\n", "rm", id[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = run("", "rm", id[:6], "-f")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted snippet")

	out, err = run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No snippets yet")

	out, err = run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = run("", "whoami")
	require.Error(t, err)
}
