package classifier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gazette/internal/models"
)

// Validation errors.
var (
	ErrMissingEntryID = errors.New("entry id is required")
	ErrInvalidEntryID = errors.New("entry id does not match the published identifier format")
	ErrMissingTitle   = errors.New("entry title is required")
	ErrMissingDate    = errors.New("entry publication date is required")
)

var entryIDPattern = regexp.MustCompile(`^[A-Z]{2,5}-[A-Z]-\d{4}-\d+$`)

// ValidationError describes one invalid field of an index entry.
type ValidationError struct {
	Err   error
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}

	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate reports every reason entry cannot be classified, joined, or nil.
func Validate(entry models.BulletinIndexEntry) error {
	var errs []error

	id := strings.TrimSpace(entry.ID)

	switch {
	case id == "":
		errs = append(errs, &ValidationError{Field: "id", Err: ErrMissingEntryID})
	case !entryIDPattern.MatchString(id):
		errs = append(errs, &ValidationError{Field: "id", Value: id, Err: ErrInvalidEntryID})
	}

	if strings.TrimSpace(entry.Title) == "" {
		errs = append(errs, &ValidationError{Field: "title", Err: ErrMissingTitle})
	}

	if entry.PublishedOn.IsZero() {
		errs = append(errs, &ValidationError{Field: "published_on", Err: ErrMissingDate})
	}

	return errors.Join(errs...)
}
