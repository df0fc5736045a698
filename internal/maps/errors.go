package maps

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoResults is returned when the provider does not recognise a location
	// or cannot find a route between the given points.
	ErrNoResults = errors.New("no results")
	// ErrRequestDenied is returned when the API key is rejected or restricted.
	ErrRequestDenied = errors.New("request denied")
)

// classify maps a Google Maps client error onto the package sentinels.
// The client reports non-OK statuses as "maps: STATUS - message".
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%s: %w: %w", op, ErrNoResults, err)
	case strings.Contains(msg, "REQUEST_DENIED"):
		return fmt.Errorf("%s: %w: %w", op, ErrRequestDenied, err)
	}
	return fmt.Errorf("%s: maps api error: %w", op, err)
}
