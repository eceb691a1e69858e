package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// RequiredString fails when value is empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
			Code:    "validation.required",
		},
	}
}

// MaxRunes limits the length of value counted in characters, not bytes.
func MaxRunes(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
			Code:    "validation.max_length",
			Params:  map[string]any{"max": max},
		},
	}
}

func Positive[T Numeric](field string, value T) Rule {
	return Rule{
		Check: func() bool {
			return value > 0
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be greater than zero",
			Code:    "validation.positive",
		},
	}
}

func MinNum[T Numeric](field string, value, min T) Rule {
	return Rule{
		Check: func() bool {
			return value >= min
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %v", min),
			Code:    "validation.min",
			Params:  map[string]any{"min": min},
		},
	}
}

// NumRange checks min <= value <= max.
func NumRange[T Numeric](field string, value, min, max T) Rule {
	return Rule{
		Check: func() bool {
			return value >= min && value <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %v and %v", min, max),
			Code:    "validation.range",
			Params:  map[string]any{"min": min, "max": max},
		},
	}
}

// OneOf fails when value is not one of allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowed, value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be one of %v", allowed),
			Code:    "validation.one_of",
			Params:  map[string]any{"allowed": allowed},
		},
	}
}

// EachInRange checks every element of values is within [min, max].
func EachInRange[T Numeric](field string, values []T, min, max T) Rule {
	return Rule{
		Check: func() bool {
			for _, v := range values {
				if v < min || v > max {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("every value must be between %v and %v", min, max),
			Code:    "validation.each_range",
			Params:  map[string]any{"min": min, "max": max},
		},
	}
}

var clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ClockTime accepts 24-hour "HH:MM" strings.
func ClockTime(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return clockTimeRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a 24-hour time in HH:MM format",
			Code:    "validation.clock_time",
		},
	}
}

// Together fails when exactly one of the two values is set.
func Together(field string, a, b bool) Rule {
	return Rule{
		Check: func() bool {
			return a == b
		},
		Error: ValidationError{
			Field:   field,
			Message: "both ends must be set together",
			Code:    "validation.together",
		},
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func Email(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return emailRegex.MatchString(strings.TrimSpace(value))
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
			Code:    "validation.email",
		},
	}
}
