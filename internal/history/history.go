package history

import (
	"context"
	"log/slog"
	"slices"

	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/metrics"
	"github.com/lox/weatherdesk/internal/models"
)

// LoadErrorMessage is the only failure text the history panel shows. There
// is nothing the user can do about a failed list fetch, so the underlying
// error is logged rather than displayed.
const LoadErrorMessage = "Could not load city history"

// Lister is the subset of the weather client the history panel needs.
type Lister interface {
	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)
}

// Model loads the submission history and presents it newest first. It does
// not track a selection; Select hands the entry to the OnSelect callback.
type Model struct {
	lister   Lister
	logger   *slog.Logger
	ctrl     *fetchstate.Controller[[]models.HistoryEntry]
	onSelect func(models.HistoryEntry)
}

func New(lister Lister, logger *slog.Logger, onSelect func(models.HistoryEntry)) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		lister:   lister,
		logger:   logger,
		onSelect: onSelect,
	}
	m.ctrl = fetchstate.New[[]models.HistoryEntry](func(err error) string {
		m.logger.Warn("load city history", "error", err)
		return LoadErrorMessage
	})
	m.ctrl.OnStale(func(uint64) {
		metrics.StaleResponsesDiscarded.WithLabelValues("history").Inc()
	})
	return m
}

// Load fetches the history and waits for it to settle.
func (m *Model) Load(ctx context.Context) fetchstate.State[[]models.HistoryEntry] {
	return m.ctrl.Do(ctx, m.fetch)
}

// Reload starts a fresh fetch without waiting, e.g. after a new submission.
func (m *Model) Reload(ctx context.Context) <-chan struct{} {
	return m.ctrl.Fetch(ctx, m.fetch)
}

func (m *Model) fetch(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := m.lister.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	return Newest(entries), nil
}

func (m *Model) State() fetchstate.State[[]models.HistoryEntry] {
	return m.ctrl.State()
}

// OnChange forwards to the underlying controller.
func (m *Model) OnChange(fn func(fetchstate.State[[]models.HistoryEntry])) {
	m.ctrl.OnChange(fn)
}

// Entries returns the display list, or nil unless the last load succeeded.
func (m *Model) Entries() []models.HistoryEntry {
	st := m.ctrl.State()
	if st.Status != fetchstate.Success {
		return nil
	}
	return slices.Clone(st.Data)
}

// Empty reports a successful load that returned no entries.
func (m *Model) Empty() bool {
	st := m.ctrl.State()
	return st.Status == fetchstate.Success && len(st.Data) == 0
}

// Select invokes the OnSelect callback with the i-th displayed entry.
func (m *Model) Select(i int) bool {
	entries := m.Entries()
	if i < 0 || i >= len(entries) {
		return false
	}
	if m.onSelect != nil {
		m.onSelect(entries[i])
	}
	return true
}

// SelectID invokes the OnSelect callback with the displayed entry for id.
func (m *Model) SelectID(id string) bool {
	for i, e := range m.Entries() {
		if e.ID == id {
			return m.Select(i)
		}
	}
	return false
}

// Newest returns a copy of entries reversed from server order (oldest first)
// into display order (newest first).
func Newest(entries []models.HistoryEntry) []models.HistoryEntry {
	out := slices.Clone(entries)
	slices.Reverse(out)
	if out == nil {
		out = []models.HistoryEntry{}
	}
	return out
}
