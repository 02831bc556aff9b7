package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// SheetURLPrefix is the shape every destination link must have.
const SheetURLPrefix = "https://docs.google.com/spreadsheets/"

// ErrInvalidDestination is returned by Set when the link is not a Google Sheets URL.
var ErrInvalidDestination = errors.New("destination must be a Google Sheets link")

// Persister stores the whole user → sheet mapping as one snapshot.
type Persister interface {
	Load(ctx context.Context) (map[int64]string, error)
	Save(ctx context.Context, snapshot map[int64]string) error
}

// DestinationStore keeps the configured spreadsheet of every user.
// Every successful Set is durable before it returns.
type DestinationStore struct {
	persister Persister
	mu        sync.RWMutex
	sheets    map[int64]string
}

func NewDestinationStore(persister Persister) *DestinationStore {
	return &DestinationStore{persister: persister, sheets: make(map[int64]string)}
}

// Load replaces the in-memory mapping with the persisted one.
func (s *DestinationStore) Load(ctx context.Context) error {
	snapshot, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load destinations: %w", err)
	}
	if snapshot == nil {
		snapshot = make(map[int64]string)
	}
	s.mu.Lock()
	s.sheets = snapshot
	s.mu.Unlock()
	return nil
}

func (s *DestinationStore) Get(userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	url, ok := s.sheets[userID]
	return url, ok
}

// Set validates url and stores it for userID. On a persistence failure the
// previous value is restored and the error is returned.
func (s *DestinationStore) Set(ctx context.Context, userID int64, url string) error {
	url = strings.TrimSpace(url)
	if !ValidSheetURL(url) {
		return ErrInvalidDestination
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.sheets[userID]
	s.sheets[userID] = url
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		if existed {
			s.sheets[userID] = previous
		} else {
			delete(s.sheets, userID)
		}
		return fmt.Errorf("save destinations: %w", err)
	}
	return nil
}

// Len returns the number of users with a configured sheet.
func (s *DestinationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sheets)
}

func (s *DestinationStore) snapshotLocked() map[int64]string {
	out := make(map[int64]string, len(s.sheets))
	for id, url := range s.sheets {
		out[id] = url
	}
	return out
}

// ValidSheetURL reports whether url looks like a Google Sheets link.
func ValidSheetURL(url string) bool {
	return strings.HasPrefix(url, SheetURLPrefix) && len(url) > len(SheetURLPrefix)
}
