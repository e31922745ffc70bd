// Package journal provides persistent storage for per-account trade
// journals. Each (user, account) pair maps to one JSON snapshot on disk
// that is loaded lazily and rewritten on every mutation.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/internal/metrics"
	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a trade id does not exist in a journal.
var ErrNotFound = fmt.Errorf("trade not found")

// snapshot is the on-disk shape of one journal.
type snapshot struct {
	Trades       []*types.Trade `json:"trades"`
	NextID       int64          `json:"next_id"`
	Achievements []string       `json:"achievements,omitempty"`
	TotalXP      int            `json:"total_xp,omitempty"`
}

// Store keeps journals keyed by (user, account).
type Store struct {
	mu          sync.RWMutex
	logger      *zap.Logger
	dataDir     string
	accountSize float64
	journals    map[string]*snapshot
}

// NewStore creates the store and its data directory.
func NewStore(logger *zap.Logger, dataDir string, accountSize float64) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		logger:      logger,
		dataDir:     dataDir,
		accountSize: accountSize,
		journals:    make(map[string]*snapshot),
	}, nil
}

// AccountSize returns the configured account size used for r-multiples.
func (s *Store) AccountSize() float64 {
	return s.accountSize
}

// Add inserts a trade, assigning the next sequential id. A zero PnL is
// derived from entry, exit, quantity and side; the r-multiple is filled
// from the configured account size.
func (s *Store) Add(user, account string, trade *types.Trade) (*types.Trade, error) {
	if trade == nil {
		return nil, fmt.Errorf("nil trade")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return nil, err
	}

	trade.ID = journal.NextID
	journal.NextID++
	if trade.PnL.IsZero() && !trade.Entry.IsZero() && !trade.Exit.IsZero() {
		trade.PnL = metrics.CalculatePnL(trade.Entry, trade.Exit, trade.Quantity, trade.Side)
	}
	trade.RMultiple = metrics.CalculateRMultiple(trade.PnL, s.accountSize)
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}

	journal.Trades = append(journal.Trades, trade)
	if err := s.save(user, account, journal); err != nil {
		return nil, err
	}

	s.logger.Info("Trade added",
		zap.String("user", user),
		zap.String("account", account),
		zap.Int64("id", trade.ID),
		zap.String("symbol", trade.Symbol))
	return trade, nil
}

// List returns a chronologically sorted copy of the journal.
func (s *Store) List(user, account string) ([]*types.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return nil, err
	}

	trades := make([]*types.Trade, len(journal.Trades))
	copy(trades, journal.Trades)
	types.SortChronological(trades)
	return trades, nil
}

// Get returns one trade by id.
func (s *Store) Get(user, account string, id int64) (*types.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return nil, err
	}
	for _, t := range journal.Trades {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// Update replaces the trade with the given id, rederiving pnl and
// r-multiple the same way Add does.
func (s *Store) Update(user, account string, id int64, trade *types.Trade) (*types.Trade, error) {
	if trade == nil {
		return nil, fmt.Errorf("nil trade")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return nil, err
	}

	for i, existing := range journal.Trades {
		if existing.ID != id {
			continue
		}
		trade.ID = id
		trade.CreatedAt = existing.CreatedAt
		if trade.PnL.IsZero() && !trade.Entry.IsZero() && !trade.Exit.IsZero() {
			trade.PnL = metrics.CalculatePnL(trade.Entry, trade.Exit, trade.Quantity, trade.Side)
		}
		trade.RMultiple = metrics.CalculateRMultiple(trade.PnL, s.accountSize)
		journal.Trades[i] = trade
		if err := s.save(user, account, journal); err != nil {
			return nil, err
		}
		return trade, nil
	}
	return nil, ErrNotFound
}

// Delete removes one trade by id.
func (s *Store) Delete(user, account string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return err
	}

	for i, t := range journal.Trades {
		if t.ID != id {
			continue
		}
		journal.Trades = append(journal.Trades[:i], journal.Trades[i+1:]...)
		if err := s.save(user, account, journal); err != nil {
			return err
		}
		s.logger.Info("Trade deleted",
			zap.String("user", user),
			zap.String("account", account),
			zap.Int64("id", id))
		return nil
	}
	return ErrNotFound
}

// Wipe clears the journal and restarts the id sequence at 1.
// Achievements and XP are cleared with it.
func (s *Store) Wipe(user, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal := &snapshot{NextID: 1}
	s.journals[key(user, account)] = journal
	if err := s.save(user, account, journal); err != nil {
		return err
	}

	s.logger.Info("Journal wiped",
		zap.String("user", user),
		zap.String("account", account))
	return nil
}

// Achievements returns the unlocked achievement ids and accumulated XP.
func (s *Store) Achievements(user, account string) ([]string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, len(journal.Achievements))
	copy(ids, journal.Achievements)
	return ids, journal.TotalXP, nil
}

// RecordUnlocks appends newly unlocked achievement ids and credits XP.
func (s *Store) RecordUnlocks(user, account string, ids []string, xp int) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	journal, err := s.load(user, account)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(journal.Achievements))
	for _, id := range journal.Achievements {
		have[id] = true
	}
	for _, id := range ids {
		if !have[id] {
			journal.Achievements = append(journal.Achievements, id)
		}
	}
	journal.TotalXP += xp
	return s.save(user, account, journal)
}

// load returns the cached journal or reads it from disk. Callers must
// hold the write lock.
func (s *Store) load(user, account string) (*snapshot, error) {
	k := key(user, account)
	if journal, ok := s.journals[k]; ok {
		return journal, nil
	}

	journal := &snapshot{NextID: 1}
	data, err := os.ReadFile(s.path(user, account))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read journal: %w", err)
		}
	} else if err := json.Unmarshal(data, journal); err != nil {
		return nil, fmt.Errorf("failed to parse journal: %w", err)
	}
	if journal.NextID < 1 {
		journal.NextID = 1
	}

	s.journals[k] = journal
	return journal, nil
}

func (s *Store) save(user, account string, journal *snapshot) error {
	data, err := json.MarshalIndent(journal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	path := s.path(user, account)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// path places each user's journals in their own subdirectory. Joining
// the two names into one filename would let identifiers containing the
// separator collide.
func (s *Store) path(user, account string) string {
	return filepath.Join(s.dataDir, sanitize(user), sanitize(account)+".json")
}

func key(user, account string) string {
	return user + "/" + account
}

// sanitize keeps identifiers filesystem safe.
func sanitize(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
