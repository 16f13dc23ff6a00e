package main

import (
	"errors"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/pdf"
	"github.com/matsen/refsplit/internal/section"
)

const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, invalid option)
	ExitDataError   = 3 // Data error (no references heading, no extractable text)
)

// exitCodeFor maps an error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalid), errors.Is(err, errConfigFile):
		return ExitConfigError
	case section.IsMissingHeading(err), pdf.IsExtractionError(err):
		return ExitDataError
	default:
		return ExitError
	}
}
