package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stacks/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
}

func TestTailLinesReturnsLastN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.log")
	writeLog(t, path, "a\nb\nc\n")

	lines, offset, err := logs.TailLines(path, 2)
	if err != nil {
		t.Fatalf("TailLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("offset = %d, want end of file", offset)
	}
}

func TestTailLinesShorterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.log")
	writeLog(t, path, "only\n")

	lines, _, err := logs.TailLines(path, 10)
	if err != nil {
		t.Fatalf("TailLines: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestTailLinesMissingFile(t *testing.T) {
	lines, offset, err := logs.TailLines(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("TailLines: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %#v offset %d", lines, offset)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.log")
	writeLog(t, path, "start\n")

	_, offset, err := logs.TailLines(path, 1)
	if err != nil {
		t.Fatalf("TailLines: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var emitted []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			emitted = append(emitted, line)
			mu.Unlock()
		})
	}()

	appendLog(t, path, "later\nand more\n")

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		count := len(emitted)
		mu.Unlock()
		if count >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("follow never emitted the appended lines")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Follow returned %v, want context.Canceled", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if emitted[0] != "later" || emitted[1] != "and more" {
		t.Fatalf("unexpected emitted lines: %#v", emitted)
	}
}

func TestFollowSkipsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.log")
	writeLog(t, path, "whole\npartial")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var emitted []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, 0, 10*time.Millisecond, func(line string) {
			mu.Lock()
			emitted = append(emitted, line)
			mu.Unlock()
		})
	}()

	time.Sleep(50 * time.Millisecond)
	appendLog(t, path, " now complete\n")

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		count := len(emitted)
		mu.Unlock()
		if count >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("follow never completed the partial line")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if emitted[0] != "whole" || emitted[1] != "partial now complete" {
		t.Fatalf("unexpected emitted lines: %#v", emitted)
	}
}

func TestFollowHandlesTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.log")
	writeLog(t, path, "old old old\n")

	_, offset, err := logs.TailLines(path, 0)
	if err != nil {
		t.Fatalf("TailLines: %v", err)
	}

	// Rotate: replace with a shorter file.
	writeLog(t, path, "fresh\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var emitted []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			emitted = append(emitted, line)
			mu.Unlock()
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		count := len(emitted)
		mu.Unlock()
		if count >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("follow never re-read the rotated file")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if emitted[0] != "fresh" {
		t.Fatalf("unexpected emitted lines: %#v", emitted)
	}
}
