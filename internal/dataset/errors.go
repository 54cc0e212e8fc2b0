package dataset

import (
	"errors"
	"fmt"
)

// ErrDatasetNotFound is matched with errors.Is when the input file is absent.
var ErrDatasetNotFound = errors.New("dataset not found")

// NotFoundError reports the path that was expected to hold the dataset.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset '%s' not found; check that the file is in the working directory", e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrDatasetNotFound }

// ConfigurationError indicates a required column is absent or has the wrong type.
type ConfigurationError struct {
	Column string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "configuration error"
	}
	return fmt.Sprintf("column '%s': %s", e.Column, e.Reason)
}
