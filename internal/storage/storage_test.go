package storage

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStartAndWriteLine(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := s.WriteLine([]byte(`{"flight_id":"flight-1","lat":55.95}`)); err != nil {
		t.Fatalf("WriteLine() failed: %v", err)
	}
	// A line that already ends in a newline is not doubled.
	if err := s.WriteLine([]byte("second line\n")); err != nil {
		t.Fatalf("WriteLine() failed: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	path := filepath.Join(dir, archiveName(time.Now().UTC()))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read archive file: %v", err)
	}

	want := "{\"flight_id\":\"flight-1\",\"lat\":55.95}\nsecond line\n"
	if string(data) != want {
		t.Errorf("Archive content mismatch:\ngot  %q\nwant %q", string(data), want)
	}
}

func TestWriteLine_OpensFileLazily(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.WriteLine([]byte("lazy")); err != nil {
		t.Fatalf("WriteLine() failed: %v", err)
	}

	path := filepath.Join(dir, archiveName(time.Now().UTC()))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected archive file to exist: %v", err)
	}

	s.mu.Lock()
	if s.file != nil {
		s.file.Close()
	}
	s.mu.Unlock()
}

func TestArchiveName(t *testing.T) {
	day := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	if got := archiveName(day); got != "positions_2026-03-14.log" {
		t.Errorf("archiveName() = %q", got)
	}
}

func TestCompressFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	path := filepath.Join(dir, "positions_2026-03-13.log")
	content := strings.Repeat("a position line\n", 100)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	if err := s.compressFile(path); err != nil {
		t.Fatalf("compressFile() failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected original file to be removed")
	}

	gz, err := os.Open(path + ".gz")
	if err != nil {
		t.Fatalf("Failed to open compressed file: %v", err)
	}
	defer gz.Close()

	reader, err := gzip.NewReader(gz)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	if string(decompressed) != content {
		t.Error("Decompressed content does not match original")
	}
}
