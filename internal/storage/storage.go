// Package storage archives position reports to rotated daily files.
package storage

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Storage appends position report lines to a daily log file, rotating
// at midnight UTC and gzip-compressing the previous day's file.
type Storage struct {
	outputDir string
	file      *os.File
	mu        sync.Mutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates a new Storage instance
func New(outputDir string) *Storage {
	return &Storage{
		outputDir: outputDir,
		stopChan:  make(chan struct{}),
	}
}

// Start opens the current archive file and starts the rotation timer
func (s *Storage) Start() error {
	if err := s.rotateFile(); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.rotationTimer()

	return nil
}

// Stop closes the current file and stops the rotation timer
func (s *Storage) Stop() error {
	close(s.stopChan)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// WriteLine appends one report line to the current archive file
func (s *Storage) WriteLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		if err := s.rotateFile(); err != nil {
			return err
		}
	}

	if len(line) > 0 && line[len(line)-1] == '\n' {
		_, err := s.file.Write(line)
		return err
	}

	_, err := s.file.Write(append(line, '\n'))
	return err
}

// rotationTimer handles daily rotation at midnight UTC
func (s *Storage) rotationTimer() {
	defer s.wg.Done()

	for {
		now := time.Now().UTC()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
		waitTime := nextMidnight.Sub(now)

		select {
		case <-time.After(waitTime):
			if err := s.rotateAndCompress(); err != nil {
				log.Printf("Error during rotation: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// rotateAndCompress rotates the current file and compresses the previous day's file
func (s *Storage) rotateAndCompress() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		s.file.Close()
		s.file = nil
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	yesterdayFile := filepath.Join(s.outputDir, archiveName(yesterday))

	if _, err := os.Stat(yesterdayFile); err == nil {
		if err := s.compressFile(yesterdayFile); err != nil {
			return fmt.Errorf("failed to compress file: %w", err)
		}
	}

	return s.rotateFile()
}

// compressFile gzips a file in place and removes the original
func (s *Storage) compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer target.Close()

	gzipWriter := gzip.NewWriter(target)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		gzipWriter.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}

// rotateFile opens the archive file for the current UTC day
func (s *Storage) rotateFile() error {
	filename := filepath.Join(s.outputDir, archiveName(time.Now().UTC()))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	s.file = file
	return nil
}

func archiveName(day time.Time) string {
	return fmt.Sprintf("positions_%s.log", day.Format("2006-01-02"))
}
