package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// SelfPlayStats aggregates self-play results for one board size.
type SelfPlayStats struct {
	Size       int            `json:"size"`
	Matches    int            `json:"matches"`
	Wins       map[string]int `json:"wins"`
	Draws      int            `json:"draws"`
	Unfinished int            `json:"unfinished"`
	Failures   int            `json:"failures"`
	TotalPlies int            `json:"total_plies"`
	Captures   map[string]int `json:"captures"`
}

func NewSelfPlayStats(size int) *SelfPlayStats {
	return &SelfPlayStats{
		Size:     size,
		Wins:     make(map[string]int),
		Captures: make(map[string]int),
	}
}

// AveragePlies is zero before the first match.
func (s *SelfPlayStats) AveragePlies() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.TotalPlies) / float64(s.Matches)
}

// MatchResult is the outcome of one self-play match. Winner is empty for a
// draw; Finished is false when the ply limit cut the match short.
type MatchResult struct {
	Size     int
	Finished bool
	Failed   bool
	Winner   string
	Plies    int
	Captures map[string]int
}

// Storage keeps self-play statistics in BadgerDB. Writers are serialised
// since every result of a size updates the same key.
type Storage struct {
	db *badger.DB
	mu sync.Mutex
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory keeps everything in memory; nothing survives Close.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open stats store: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func statsKey(size int) []byte {
	return []byte(fmt.Sprintf("selfplay:stats:%d", size))
}

// LoadStats returns the statistics for size, empty if none were recorded.
func (s *Storage) LoadStats(size int) (*SelfPlayStats, error) {
	stats := NewSelfPlayStats(size)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statsKey(size))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordMatch folds one result into the stored statistics. It is safe for
// concurrent use; a conflict with a writer from another process is retried.
func (s *Storage) RecordMatch(result MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.recordMatch(result)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("record match after %d attempts: %w", maxConflictRetries, err)
}

const maxConflictRetries = 8

func (s *Storage) recordMatch(result MatchResult) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stats := NewSelfPlayStats(result.Size)

		item, err := txn.Get(statsKey(result.Size))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		}

		stats.Matches++
		stats.TotalPlies += result.Plies
		for side, n := range result.Captures {
			stats.Captures[side] += n
		}
		switch {
		case result.Failed:
			stats.Failures++
		case !result.Finished:
			stats.Unfinished++
		case result.Winner == "":
			stats.Draws++
		default:
			stats.Wins[result.Winner]++
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set(statsKey(result.Size), data)
	})
}
