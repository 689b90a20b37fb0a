package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherReportsSettledWrite(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var got []string
	w, err := New(dir, func(path string) {
		mu.Lock()
		got = append(got, filepath.Base(path))
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "flow.vtk")
	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no callback within 5s")
		case <-time.After(20 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "flow.vtk" {
		t.Errorf("callback path = %s, want flow.vtk", got[0])
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	count := 0
	w, err := New(dir, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	// A burst of writes well inside the debounce window.
	path := filepath.Join(dir, "flow.vtk")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(DebounceDelay * 4)
	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("callback fired %d times for one burst, want 1", count)
	}
}

func TestWatcherCloseStopsCallbacks(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, func(string) { t.Error("callback after Close") })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Closing twice must be safe.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	os.WriteFile(filepath.Join(dir, "late.vtk"), []byte("x"), 0o644)
	time.Sleep(DebounceDelay * 2)
}
