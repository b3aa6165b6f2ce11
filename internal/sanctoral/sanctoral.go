// Package sanctoral models the fixed cycle: commemorations pinned to a month
// and day, plus the few observances that move within their month.
package sanctoral

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/zapponejosh/churchyear/internal/calendar"
)

// Day is one fixed-cycle candidate.
type Day struct {
	ID    string `json:"id" yaml:"id,omitempty"`
	Month int    `json:"month" yaml:"month" validate:"required,min=1,max=12"`
	// Day is the day of month. For moveable entries it is a placeholder and
	// MoveableRule decides the actual date.
	Day          int            `json:"day" yaml:"day" validate:"required,min=1,max=31"`
	Name         string         `json:"name" yaml:"name" validate:"required,max=200"`
	Rank         calendar.Rank  `json:"rank" yaml:"rank" validate:"required"`
	Color        calendar.Color `json:"color" yaml:"color" validate:"required"`
	MoveableRule string         `json:"moveable_rule,omitempty" yaml:"moveable_rule,omitempty" validate:"max=200"`
	ProperID     string         `json:"proper_id,omitempty" yaml:"proper_id,omitempty" validate:"max=100"`
	IsCustom     bool           `json:"is_custom" yaml:"is_custom,omitempty"`
	Notes        string         `json:"notes,omitempty" yaml:"notes,omitempty" validate:"max=500"`
}

// IsMoveable reports whether the entry's date comes from a rule.
func (d Day) IsMoveable() bool {
	return strings.TrimSpace(d.MoveableRule) != ""
}

// ErrInvalidDay wraps every validation failure.
var ErrInvalidDay = errors.New("invalid sanctoral day")

var validate = validator.New()

// Validate checks field constraints, that the month/day exists in a leap
// year, and that any moveable rule parses and lands in the entry's month.
func (d Day) Validate() error {
	if err := validate.Struct(d); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidDay, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}

	if d.Rank.Tier() == 0 {
		return fmt.Errorf("%w: unknown rank %d", ErrInvalidDay, int(d.Rank))
	}
	if !d.Color.Valid() {
		return fmt.Errorf("%w: unknown color %d", ErrInvalidDay, int(d.Color))
	}

	// 2024 is a leap year, so February 29 passes.
	if probe := calendar.Date(2024, time.Month(d.Month), d.Day); probe.Day() != d.Day {
		return fmt.Errorf("%w: %s %d does not exist", ErrInvalidDay, time.Month(d.Month), d.Day)
	}

	if d.IsMoveable() {
		rule, err := ParseRule(d.MoveableRule)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDay, err)
		}
		if months := rule.Months(); len(months) > 0 && !containsMonth(months, time.Month(d.Month)) {
			return fmt.Errorf("%w: rule %q never falls in %s", ErrInvalidDay, d.MoveableRule, time.Month(d.Month))
		}
	}
	return nil
}

func containsMonth(months []time.Month, m time.Month) bool {
	for _, v := range months {
		if v == m {
			return true
		}
	}
	return false
}

// NewID returns a fresh identifier for a sanctoral day.
func NewID() string {
	return uuid.NewString()
}

// Date returns the entry's date in year, applying the moveable rule when
// there is one. The second result is false when the entry does not occur in
// that year, e.g. February 29 in a common year.
func (d Day) Date(year int) (time.Time, bool) {
	if d.IsMoveable() {
		rule, err := ParseRule(d.MoveableRule)
		if err != nil {
			return time.Time{}, false
		}
		return rule.First(year)
	}

	date := calendar.Date(year, time.Month(d.Month), d.Day)
	if date.Day() != d.Day {
		return time.Time{}, false
	}
	return date, true
}
