package services

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// Registration is the raw sign-up form.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration checks the sign-up rules that need no storage, in
// order: username, email, password, confirmation. It returns the first
// violation as a *common.ValidationError.
func ValidateRegistration(r Registration) error {
	switch {
	case strings.TrimSpace(r.Username) == "":
		return common.NewValidationError(common.MissingUsername)
	case strings.TrimSpace(r.Email) == "":
		return common.NewValidationError(common.MissingEmail)
	case r.Password == "":
		return common.NewValidationError(common.MissingPassword)
	case r.Password != r.ConfirmPassword:
		return common.NewValidationError(common.PasswordMismatch)
	}
	return nil
}

// TaskInput is the raw create/edit form. DueDate uses common.DueDateLayout
// or is empty for "no deadline".
type TaskInput struct {
	Title       string
	Description string
	DueDate     string
}

// ValidTask is a TaskInput that passed ValidateTaskInput.
type ValidTask struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// ValidateTaskInput trims the title and parses the due date in loc. Checks
// run in order: empty title, unparsable due date, due date before now.
func ValidateTaskInput(in TaskInput, now time.Time, loc *time.Location) (ValidTask, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ValidTask{}, common.NewValidationError(common.EmptyTitle)
	}

	out := ValidTask{Title: title, Description: in.Description}

	raw := strings.TrimSpace(in.DueDate)
	if raw == "" {
		return out, nil
	}

	due, err := time.ParseInLocation(common.DueDateLayout, raw, loc)
	if err != nil {
		return ValidTask{}, common.NewValidationError(common.InvalidDueDate)
	}
	if due.Before(now) {
		return ValidTask{}, common.NewValidationError(common.PastDueDate)
	}

	out.DueDate = &due
	return out, nil
}
