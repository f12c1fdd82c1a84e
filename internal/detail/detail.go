package detail

import (
	"context"
	"sync"

	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/metrics"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/weatherapi"
)

const (
	FetchErrorMessage   = "Failed to fetch weather"
	UnknownErrorMessage = "Unknown error"
)

// Getter is the subset of the weather client the detail panel needs.
type Getter interface {
	Get(ctx context.Context, id string) (*models.WeatherRecord, error)
}

// View is what the detail panel renders for the current id.
type View struct {
	ID      string
	Status  fetchstate.Status
	Message string
	Record  *Reconciled
}

// Loading and Failed are convenience predicates for renderers.
func (v View) Loading() bool { return v.Status == fetchstate.Loading }
func (v View) Failed() bool  { return v.Status == fetchstate.Failed }

// Model fetches the record for the id it is given and reconciles it. It does
// not own its visibility: Close only tells the caller the user dismissed it.
type Model struct {
	getter  Getter
	ctrl    *fetchstate.Controller[*Reconciled]
	onClose func()

	setMu sync.Mutex // serialises SetID so fetches start in call order
	mu    sync.Mutex
	id    string
}

func New(getter Getter, onClose func()) *Model {
	ctrl := fetchstate.New[*Reconciled](func(err error) string {
		return weatherapi.Message(err, FetchErrorMessage)
	})
	ctrl.OnStale(func(uint64) {
		metrics.StaleResponsesDiscarded.WithLabelValues("detail").Inc()
	})
	return &Model{getter: getter, ctrl: ctrl, onClose: onClose}
}

// SetID fetches the record for id if it differs from the current one. The
// returned channel closes when the fetch settles; it is already closed when
// nothing needed fetching.
func (m *Model) SetID(ctx context.Context, id string) <-chan struct{} {
	m.setMu.Lock()
	defer m.setMu.Unlock()

	m.mu.Lock()
	if id == m.id && m.ctrl.State().Status != fetchstate.Idle {
		m.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}
	m.id = id
	m.mu.Unlock()

	return m.ctrl.Fetch(ctx, func(ctx context.Context) (*Reconciled, error) {
		rec, err := m.getter.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return Reconcile(rec), nil
	})
}

// Show is SetID followed by waiting for the result.
func (m *Model) Show(ctx context.Context, id string) View {
	<-m.SetID(ctx, id)
	return m.View()
}

func (m *Model) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *Model) View() View {
	st := m.ctrl.State()
	v := View{ID: m.ID(), Status: st.Status, Message: st.Message, Record: st.Data}
	if st.Status == fetchstate.Success && st.Data == nil {
		v.Status = fetchstate.Failed
		v.Message = UnknownErrorMessage
	}
	if v.Status == fetchstate.Failed && v.Message == "" {
		v.Message = UnknownErrorMessage
	}
	return v
}

// OnChange forwards to the underlying controller.
func (m *Model) OnChange(fn func(fetchstate.State[*Reconciled])) {
	m.ctrl.OnChange(fn)
}

// Close is the dismiss action; it invokes the caller's close callback.
func (m *Model) Close() {
	if m.onClose != nil {
		m.onClose()
	}
}

// Reset forgets the current id and any in-flight fetch, so the next SetID
// always fetches.
func (m *Model) Reset() {
	m.setMu.Lock()
	defer m.setMu.Unlock()

	m.mu.Lock()
	m.id = ""
	m.mu.Unlock()
	m.ctrl.Reset()
}
