package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"uav-logchat/flightdesk/internal/config"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestUploadSweeper_Sweep(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	touch(t, filepath.Join(dir, "stale.bin"), old)
	touch(t, filepath.Join(dir, "STALE2.BIN"), old)
	touch(t, filepath.Join(dir, "fresh.bin"), time.Now())
	touch(t, filepath.Join(dir, "notes.txt"), old)

	s := NewUploadSweeper(dir, time.Hour)
	if removed := s.Sweep(); removed != 2 {
		t.Errorf("Expected 2 files removed, got %d", removed)
	}

	for name, want := range map[string]bool{"stale.bin": false, "STALE2.BIN": false, "fresh.bin": true, "notes.txt": true} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Errorf("Expected %s exists=%v, got %v", name, want, exists)
		}
	}
}

func TestUploadSweeper_MissingDir(t *testing.T) {
	s := NewUploadSweeper(filepath.Join(t.TempDir(), "gone"), time.Hour)
	if removed := s.Sweep(); removed != 0 {
		t.Errorf("Expected 0, got %d", removed)
	}
}

func TestUploadSweeper_StartStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "stale.bin"), time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewUploadSweeper(dir, time.Minute).Start(ctx, time.Hour)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(filepath.Join(dir, "stale.bin")); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected initial sweep to remove the stale file")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected sweeper to stop after cancel")
	}
}

func TestInitWorkers_DisabledWhenZero(t *testing.T) {
	cfg := &config.Config{Upload: config.UploadConfig{Dir: t.TempDir()}}

	if c := InitWorkers(context.Background(), cfg); c.Sweeper != nil {
		t.Error("Expected no sweeper when interval is zero")
	}
}

func TestInitWorkers_StartsSweeperFromConfig(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "orphan.bin"), time.Now().Add(-2*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{Upload: config.UploadConfig{Dir: dir, SweepInterval: time.Hour, MaxAge: time.Hour}}
	if c := InitWorkers(ctx, cfg); c.Sweeper == nil {
		t.Fatal("Expected sweeper to start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(filepath.Join(dir, "orphan.bin")); os.IsNotExist(err) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected orphaned upload to be removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
