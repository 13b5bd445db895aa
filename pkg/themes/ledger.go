package themes

import (
	"sync"

	"whatsup/pkg/artifact"
	"whatsup/pkg/types"
)

// Ledger is the persisted theme-summaries collection. Entries are keyed by
// theme name: an upsert replaces the matching entry or appends a new one,
// and always writes the whole collection back so a later failure cannot
// lose summaries already computed for other themes.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// NewLedger opens the ledger backed by the file at path. A missing file is
// an empty ledger.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string { return l.path }

// Load returns the current collection in persisted order.
func (l *Ledger) Load() ([]types.ThemeSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *Ledger) loadLocked() ([]types.ThemeSummary, error) {
	var entries []types.ThemeSummary
	if err := artifact.ReadJSONOrEmpty(l.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Upsert applies fn to the entry named theme, creating it if absent, and
// atomically rewrites the full collection. The updated entry is returned.
func (l *Ledger) Upsert(theme string, fn func(*types.ThemeSummary)) (types.ThemeSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.loadLocked()
	if err != nil {
		return types.ThemeSummary{}, err
	}

	idx := -1
	for i := range entries {
		if entries[i].Theme == theme {
			idx = i
			break
		}
	}
	if idx < 0 {
		entries = append(entries, types.ThemeSummary{Theme: theme})
		idx = len(entries) - 1
	}
	fn(&entries[idx])
	entries[idx].Theme = theme

	if err := artifact.WriteJSON(l.path, entries); err != nil {
		return types.ThemeSummary{}, err
	}
	return entries[idx], nil
}
