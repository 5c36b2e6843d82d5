package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var validNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateDatasetName checks that a dataset name is a short identifier.
func ValidateDatasetName(name string) error {
	if name == "" {
		return errors.New("dataset name cannot be empty")
	}

	if len(name) > 100 {
		return errors.New("dataset name too long (max 100 characters)")
	}

	if !validNamePattern.MatchString(name) {
		return errors.New("dataset name contains invalid characters")
	}

	return nil
}

// ParseYear parses the year parameter as an integer.
func ParseYear(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("year is required")
	}

	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("year must be an integer")
	}

	return year, nil
}
