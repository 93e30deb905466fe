package main_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

var skBinaryPath string
var skBinaryDir string

var (
	scriptTUISupported      = true
	scriptTUIDisabledReason string
)

func TestMain(m *testing.M) {
	// Keep termenv from probing the test harness TTY
	os.Setenv("SK_TEST_MODE", "1")

	// Build the binary once for all tests
	if err := buildSkOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build sk binary: %v\n", err)
		os.Exit(1)
	}

	scriptTUISupported, scriptTUIDisabledReason = detectScriptTUICapability(skBinaryPath)

	code := m.Run()
	if skBinaryDir != "" {
		_ = os.RemoveAll(skBinaryDir)
	}
	os.Exit(code)
}

func detectScriptTUICapability(skPath string) (bool, string) {
	if _, err := exec.LookPath("script"); err != nil {
		return false, "script command not available"
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return false, "script TUI harness unsupported on this OS"
	}
	if skPath == "" {
		return false, "sk binary path is empty"
	}

	tempDir, err := os.MkdirTemp("", "sk-e2e-tui-cap-*")
	if err != nil {
		return false, fmt.Sprintf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	thread := `{"id":"cap-1","author":"alice","body":"Capability check","created_at":"2024-03-01T09:00:00Z"}`
	if err := os.WriteFile(filepath.Join(tempDir, "thread.jsonl"), []byte(thread), 0o644); err != nil {
		return false, fmt.Sprintf("failed to write thread.jsonl: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := scriptTUICommand(ctx, skPath)
	if cmd == nil {
		return false, "script command unavailable"
	}
	cmd.Dir = tempDir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"SK_TUI_AUTOCLOSE_MS=250",
		"SKEIN_DIR=",
	)

	outFile := filepath.Join(tempDir, "script.out")
	f, err := os.Create(outFile)
	if err != nil {
		return false, fmt.Sprintf("failed to create output file: %v", err)
	}
	cmd.Stdout = f
	cmd.Stderr = f

	runErr := cmd.Run()
	_ = f.Close()

	if ctx.Err() == context.DeadlineExceeded {
		return false, "sk did not auto-exit under script (PTY/CI mismatch)"
	}
	if runErr != nil {
		return false, fmt.Sprintf("script TUI run failed: %v", runErr)
	}

	return true, ""
}

func buildSkOnce() error {
	tempDir, err := os.MkdirTemp("", "sk-e2e-build-*")
	if err != nil {
		return err
	}
	skBinaryDir = tempDir

	binName := "sk"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(tempDir, binName)

	cmd := exec.Command("go", "build", "-o", binPath, "../../cmd/sk")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go build failed: %v\n%s", err, out)
	}

	skBinaryPath = binPath
	return nil
}

// buildSkBinary returns the path to the pre-built binary.
func buildSkBinary(t *testing.T) string {
	t.Helper()
	if skBinaryPath == "" {
		t.Fatal("sk binary not built")
	}
	return skBinaryPath
}

// skipIfNoScript skips the test if the script command is unavailable.
func skipIfNoScript(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("script"); err != nil {
		t.Skip("skipping: script command not available")
	}
	if !scriptTUISupported {
		if scriptTUIDisabledReason != "" {
			t.Skipf("skipping: %s", scriptTUIDisabledReason)
		}
		t.Skip("skipping: script-based TUI harness unavailable")
	}
}

// scriptTUICommand creates an exec.Cmd that runs the sk binary under `script`
// to provide a pseudo-TTY for TUI tests.
func scriptTUICommand(ctx context.Context, skPath string, args ...string) *exec.Cmd {
	if _, err := exec.LookPath("script"); err != nil {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		scriptArgs := []string{"-q", "/dev/null", skPath}
		scriptArgs = append(scriptArgs, args...)
		return exec.CommandContext(ctx, "script", scriptArgs...)

	case "linux":
		cmdStr := skPath
		for _, arg := range args {
			if strings.ContainsAny(arg, " \t") {
				cmdStr += " \"" + arg + "\""
			} else {
				cmdStr += " " + arg
			}
		}
		return exec.CommandContext(ctx, "script", "-q", "-e", "-f", "-c", cmdStr, "/dev/null")

	default:
		return nil
	}
}

// ensureCmdStdinCloses wires a controllable stdin for command execution.
func ensureCmdStdinCloses(t *testing.T, ctx context.Context, cmd *exec.Cmd, closeAfter time.Duration) {
	t.Helper()
	if cmd == nil || cmd.Stdin != nil {
		return
	}
	stdinR, stdinW := io.Pipe()
	cmd.Stdin = stdinR
	t.Cleanup(func() {
		_ = stdinW.Close()
		_ = stdinR.Close()
	})

	go func() {
		select {
		case <-ctx.Done():
			_ = stdinW.Close()
		case <-time.After(closeAfter):
			_ = stdinW.Close()
		}
	}()
}

// runCmdToFile runs a command and captures stdout+stderr to a temp file.
func runCmdToFile(t *testing.T, cmd *exec.Cmd) ([]byte, error) {
	t.Helper()
	if cmd == nil {
		return nil, fmt.Errorf("nil cmd")
	}

	outPath := filepath.Join(t.TempDir(), "cmd.out")
	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	cmd.Stdout = f
	cmd.Stderr = f

	runErr := cmd.Run()
	_ = f.Close()

	out, readErr := os.ReadFile(outPath)
	if readErr != nil {
		return nil, fmt.Errorf("read output file: %w (run err: %v)", readErr, runErr)
	}
	return out, runErr
}

const fixtureJSONL = `{"id":"p1","author":"alice","body":"Threaded viewers compared\n\nNotes from trying three terminal thread readers.","score":42,"kind":"post","role":"op","created_at":"2024-03-01T09:00:00Z","pinned":true}
{"id":"c1","parent":"p1","author":"bob","body":"Tried all three, same pick.","score":7,"created_at":"2024-03-01T09:10:00Z"}
{"id":"c2","parent":"c1","author":"carol","body":"Same conclusion here.","score":3,"role":"mod","created_at":"2024-03-01T09:20:00Z"}
{"id":"c3","parent":"p1","author":"dave","body":"Removed rant.","score":-2,"created_at":"2024-03-01T09:30:00Z","deleted":true}
`

// writeThreadFixture seeds a directory with a four-comment thread.jsonl,
// one comment deleted, and returns the directory.
func writeThreadFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "thread.jsonl"), []byte(fixtureJSONL), 0o644); err != nil {
		t.Fatalf("write thread fixture: %v", err)
	}
	return dir
}

// writeArchiveFixture creates a two-thread skein.db in dir the way the
// archiver writes it and returns the archive path.
func writeArchiveFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "skein.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening archive for writing: %v", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE threads (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT,
			updated_at TIMESTAMP
		);
		CREATE TABLE comments (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			parent_id TEXT,
			author TEXT,
			body TEXT,
			score INTEGER,
			kind TEXT,
			role TEXT,
			created_at TIMESTAMP,
			edited_at TIMESTAMP,
			deleted BOOLEAN,
			pinned BOOLEAN,
			avatar TEXT,
			labels TEXT
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("seeding archive: %v", err)
		}
	}

	seed("INSERT INTO threads (id, title, url, updated_at) VALUES (?, ?, ?, ?)",
		"go-generics", "Generics in Go: worth it?", "https://example.org/t/go-generics", base.Add(2*time.Hour))
	seed("INSERT INTO threads (id, title, url, updated_at) VALUES (?, ?, ?, ?)",
		"perf-tuning", "Profiling before guessing", nil, base.Add(time.Hour))

	seed(`INSERT INTO comments (id, thread_id, parent_id, author, body, score, kind, role, created_at, deleted, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"p1", "go-generics", nil, "alice", "Generics in Go: worth it?", 42, "post", "op", base, false, true)
	seed(`INSERT INTO comments (id, thread_id, parent_id, author, body, score, kind, role, created_at, deleted, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"c1", "go-generics", "p1", "bob", "Worth it for containers.", 7, "comment", "", base.Add(10*time.Minute), false, false)
	seed(`INSERT INTO comments (id, thread_id, parent_id, author, body, score, kind, role, created_at, deleted, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"q1", "perf-tuning", nil, "dave", "Profiling before guessing", 12, "post", "op", base.Add(30*time.Minute), false, false)

	return path
}
