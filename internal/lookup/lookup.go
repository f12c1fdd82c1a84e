package lookup

import (
	"context"
	"strconv"
	"strings"

	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/weatherapi"
)

const (
	FoundMessage     = "Weather data found!"
	FallbackMessage  = "Failed to submit weather request"
	MissingIDMessage = "Weather ID is required"
)

type Getter interface {
	Get(ctx context.Context, id string) (*models.WeatherRecord, error)
}

// Summary is the reduced record the lookup form shows. It deliberately has
// no location coordinates; those belong to the detail panel.
type Summary struct {
	ID          string
	Date        string
	Location    string
	Notes       string
	Temperature string
	Description string
	Humidity    string
	WindSpeed   string
	UVIndex     string
	Icon        string
}

// Result is the banner shown under the form. Data is only set on success.
type Result struct {
	Success bool
	Message string
	Data    *Summary
}

// Form looks records up by id through its own fetch controller.
type Form struct {
	getter Getter
	ctrl   *fetchstate.Controller[*Summary]
}

func New(getter Getter) *Form {
	return &Form{
		getter: getter,
		ctrl: fetchstate.New[*Summary](func(err error) string {
			return weatherapi.Message(err, FallbackMessage)
		}),
	}
}

// Lookup fetches id and returns the resulting banner.
func (f *Form) Lookup(ctx context.Context, id string) Result {
	id = strings.TrimSpace(id)
	if id == "" {
		ticket := f.ctrl.Begin()
		f.ctrl.Fail(ticket, MissingIDMessage)
		return f.Result()
	}

	f.ctrl.Do(ctx, func(ctx context.Context) (*Summary, error) {
		rec, err := f.getter.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return Summarize(rec), nil
	})
	return f.Result()
}

// Submitting reports whether a lookup is in flight.
func (f *Form) Submitting() bool {
	return f.ctrl.State().Status == fetchstate.Loading
}

// Result returns the current banner; the zero Result while idle or loading.
func (f *Form) Result() Result {
	st := f.ctrl.State()
	switch st.Status {
	case fetchstate.Success:
		return Result{Success: true, Message: FoundMessage, Data: st.Data}
	case fetchstate.Failed:
		return Result{Message: st.Message}
	default:
		return Result{}
	}
}

// Summarize projects a record onto the lookup view.
func Summarize(rec *models.WeatherRecord) *Summary {
	notes := rec.Notes
	if strings.TrimSpace(notes) == "" {
		notes = "None"
	}
	return &Summary{
		ID:          rec.ID,
		Date:        rec.Date,
		Location:    rec.Location,
		Notes:       notes,
		Temperature: strconv.FormatFloat(rec.Weather.Temperature, 'f', -1, 64),
		Description: strings.Join(rec.Weather.Description, ", "),
		Humidity:    strconv.FormatFloat(rec.Weather.Humidity, 'f', -1, 64),
		WindSpeed:   strconv.FormatFloat(rec.Weather.WindSpeed, 'f', -1, 64),
		UVIndex:     strconv.FormatFloat(rec.Weather.UVIndex, 'f', -1, 64),
		Icon:        rec.Weather.Icon,
	}
}
