package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vtarasov/url-shortener/internal/model"
	"github.com/vtarasov/url-shortener/internal/storage"
)

// Storage implements MappingStore backed by an append-only JSONL journal.
// A mapping is published to the in-memory index only after its record has
// been written to the journal, so lookups never observe a mapping that
// would not survive a restart.
type Storage struct {
	filePath  string
	urlMap    map[string]string
	idCounter int
	mu        sync.Mutex
}

// NewStorage creates a file-backed storage at the provided path and
// replays the existing journal.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		urlMap:   make(map[string]string),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	return s, nil
}

// InsertIfAbsent appends the mapping to the journal unless the code is
// already taken. The lock is held across the journal write so concurrent
// inserts for the same code cannot both succeed.
func (s *Storage) InsertIfAbsent(ctx context.Context, code, originalURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.urlMap[code]; exists {
		return storage.ErrCodeExists
	}

	s.idCounter++
	record := model.MappingRecord{
		UUID: strconv.Itoa(s.idCounter),
		Mapping: model.Mapping{
			ShortCode:   code,
			OriginalURL: originalURL,
			CreatedAt:   time.Now().UTC(),
		},
	}

	if err := s.appendRecord(record); err != nil {
		s.idCounter--
		return err
	}

	s.urlMap[code] = originalURL
	return nil
}

// Get retrieves the original URL for a given short code.
func (s *Storage) Get(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	originalURL, found := s.urlMap[code]
	if !found {
		return "", storage.ErrNotFound
	}

	return originalURL, nil
}

// Ping verifies that the journal file is still reachable.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := os.Stat(s.filePath)
	return err
}

func (s *Storage) loadFromFile() error {
	file, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	maxID := 0

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var record model.MappingRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		s.urlMap[record.ShortCode] = record.OriginalURL

		if id, err := strconv.Atoi(record.UUID); err == nil && id > maxID {
			maxID = id
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	s.idCounter = maxID
	return nil
}

func (s *Storage) appendRecord(record model.MappingRecord) error {
	file, err := os.OpenFile(s.filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return file.Sync()
}
