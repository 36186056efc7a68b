package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogWatcherStopIsIdempotent(t *testing.T) {
	t.Parallel()

	lw, err := NewLogWatcher(t.TempDir(), WatcherConfig{})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	lw.Stop()
	lw.Stop()
}

func TestLogWatcherDetectsNewLogOnCreate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	newLogCh := make(chan string, 1)
	lw, err := NewLogWatcher(dir, WatcherConfig{OnNewLogFile: func(path string) {
		select {
		case newLogCh <- path:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer lw.Stop()

	if err := lw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	newLogPath := filepath.Join(dir, "game-2026-02-21.soclog")
	if err := os.WriteFile(newLogPath, []byte("soclog: type=F, version=2700, game_name=g\n"), 0o600); err != nil {
		t.Fatalf("write new log: %v", err)
	}

	select {
	case got := <-newLogCh:
		if filepath.Clean(got) != filepath.Clean(newLogPath) {
			t.Fatalf("detected path = %q, want %q", got, newLogPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for new log file detection")
	}
}

func TestLogWatcherIgnoresOtherCreatedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	newLogCh := make(chan string, 1)
	lw, err := NewLogWatcher(dir, WatcherConfig{OnNewLogFile: func(path string) {
		select {
		case newLogCh <- path:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer lw.Stop()

	if err := lw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	nonLogPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(nonLogPath, []byte("ignore me"), 0o600); err != nil {
		t.Fatalf("write non-log file: %v", err)
	}

	select {
	case got := <-newLogCh:
		t.Fatalf("unexpected new log file detection: %q", got)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestLogWatcherReportsAppendedLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "game.soclog")
	header := "soclog: type=F, version=2700, game_name=g\n"
	if err := os.WriteFile(logPath, []byte(header), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	type batch struct {
		lines []string
		start int64
	}
	dataCh := make(chan batch, 4)
	lw, err := NewLogWatcher(dir, WatcherConfig{OnNewData: func(path string, lines []string, start, end int64) {
		dataCh <- batch{lines: lines, start: start}
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer lw.Stop()

	if err := lw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	select {
	case got := <-dataCh:
		if got.start != 0 || len(got.lines) != 1 {
			t.Fatalf("initial read = %+v, want header line from offset 0", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for initial read")
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("all:Turn:playerNumber=3|gameState=15\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	select {
	case got := <-dataCh:
		if got.start != int64(len(header)) {
			t.Fatalf("append start offset = %d, want %d", got.start, len(header))
		}
		if len(got.lines) != 1 || got.lines[0] != "all:Turn:playerNumber=3|gameState=15" {
			t.Fatalf("append lines = %q", got.lines)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for appended lines")
	}
}
