package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/weatherapi"
)

const (
	SuccessMessage  = "Weather request submitted successfully!"
	FallbackMessage = "Failed to submit weather request"
)

type Submitter interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error)
}

// Result is the banner shown under the form. ID is only set on success.
type Result struct {
	Success bool
	Message string
	ID      string
}

// Form validates and posts new weather requests. OnSuccess runs after every
// accepted submission with the id the backend assigned.
type Form struct {
	submitter Submitter
	validate  *validator.Validate
	ctrl      *fetchstate.Controller[string]
	onSuccess func(id string)
}

func New(submitter Submitter, onSuccess func(id string)) *Form {
	return &Form{
		submitter: submitter,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		ctrl: fetchstate.New[string](func(err error) string {
			return weatherapi.Message(err, FallbackMessage)
		}),
		onSuccess: onSuccess,
	}
}

// Submit validates req, posts it and returns the resulting banner.
func (f *Form) Submit(ctx context.Context, req models.SubmitRequest) Result {
	req.Date = strings.TrimSpace(req.Date)
	req.Location = strings.TrimSpace(req.Location)

	if err := f.Validate(req); err != nil {
		ticket := f.ctrl.Begin()
		f.ctrl.Fail(ticket, err.Error())
		return f.Result()
	}

	st := f.ctrl.Do(ctx, func(ctx context.Context) (string, error) {
		resp, err := f.submitter.Submit(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.ID, nil
	})
	if st.Status == fetchstate.Success && f.onSuccess != nil {
		f.onSuccess(st.Data)
	}
	return f.Result()
}

// Validate checks the required fields and the date format.
func (f *Form) Validate(req models.SubmitRequest) error {
	err := f.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "datetime":
		return fmt.Errorf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func (f *Form) Submitting() bool {
	return f.ctrl.State().Status == fetchstate.Loading
}

// Result returns the current banner; the zero Result while idle or loading.
func (f *Form) Result() Result {
	st := f.ctrl.State()
	switch st.Status {
	case fetchstate.Success:
		return Result{Success: true, Message: SuccessMessage, ID: st.Data}
	case fetchstate.Failed:
		return Result{Message: st.Message}
	default:
		return Result{}
	}
}
