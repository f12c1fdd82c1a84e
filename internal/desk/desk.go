// Package desk is the composition root for the weather panels. It owns the
// selected history entry; panels only see it through read accessors and
// change it through callbacks.
package desk

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lox/weatherdesk/internal/detail"
	"github.com/lox/weatherdesk/internal/history"
	"github.com/lox/weatherdesk/internal/lookup"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/submit"
)

// Backend is everything the panels need from the weather API.
type Backend interface {
	history.Lister
	detail.Getter
	submit.Submitter
}

type Desk struct {
	History *history.Model
	Detail  *detail.Model
	Lookup  *lookup.Form
	Submit  *submit.Form

	// ctx scopes fetches triggered from callbacks, which carry no context.
	ctx    context.Context
	logger *slog.Logger

	mu         sync.RWMutex
	selected   *models.HistoryEntry
	detailDone <-chan struct{}
	reloadDone <-chan struct{}
}

func New(ctx context.Context, backend Backend, logger *slog.Logger) *Desk {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Desk{ctx: ctx, logger: logger}
	d.History = history.New(backend, logger, d.selectEntry)
	d.Detail = detail.New(backend, d.clearSelection)
	d.Lookup = lookup.New(backend)
	d.Submit = submit.New(backend, d.submitted)
	return d
}

// Open loads the history panel.
func (d *Desk) Open(ctx context.Context) {
	d.History.Load(ctx)
}

// Selected returns the entry whose detail panel is open.
func (d *Desk) Selected() (models.HistoryEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.selected == nil {
		return models.HistoryEntry{}, false
	}
	return *d.selected, true
}

// Select clicks the i-th history entry and returns a channel that closes when
// the detail panel has settled. ok is false for an out-of-range index.
func (d *Desk) Select(i int) (done <-chan struct{}, ok bool) {
	if !d.History.Select(i) {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.detailDone, true
}

// SelectID is Select by record id.
func (d *Desk) SelectID(id string) (done <-chan struct{}, ok bool) {
	if !d.History.SelectID(id) {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.detailDone, true
}

// CloseDetail is the detail panel's dismiss action.
func (d *Desk) CloseDetail() {
	d.Detail.Close()
}

// Reloaded returns the channel of the most recent history reload, or nil.
func (d *Desk) Reloaded() <-chan struct{} {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reloadDone
}

func (d *Desk) selectEntry(e models.HistoryEntry) {
	d.logger.Debug("history entry selected", "city", e.City, "id", e.ID)
	d.mu.Lock()
	d.selected = &e
	d.mu.Unlock()

	done := d.Detail.SetID(d.ctx, e.ID)

	d.mu.Lock()
	d.detailDone = done
	d.mu.Unlock()
}

func (d *Desk) clearSelection() {
	d.mu.Lock()
	d.selected = nil
	d.detailDone = nil
	d.mu.Unlock()
	d.Detail.Reset()
}

func (d *Desk) submitted(id string) {
	d.logger.Info("weather request submitted", "id", id)
	done := d.History.Reload(d.ctx)
	d.mu.Lock()
	d.reloadDone = done
	d.mu.Unlock()
}
