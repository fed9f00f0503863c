package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateSampleSize checks the number of sampled individuals.
// A sample of one has nothing to coalesce.
func ValidateSampleSize(n int) error {
	if n < 2 {
		return New(ErrCodeInvalidConfig, "sample size must be at least 2, got %d", n)
	}
	return nil
}

// ValidateTheta checks a scaled mutation rate. A nil theta means the
// mutation model is disabled and is always valid.
func ValidateTheta(theta *float64) error {
	if theta == nil {
		return nil
	}
	if math.IsNaN(*theta) || math.IsInf(*theta, 0) {
		return New(ErrCodeInvalidConfig, "theta must be a finite number")
	}
	if *theta <= 0 {
		return New(ErrCodeInvalidConfig, "theta must be positive, got %g", *theta)
	}
	return nil
}

// ValidateChangepoint checks a population-size changepoint time.
// A nil changepoint means constant population size.
func ValidateChangepoint(t0 *float64) error {
	if t0 == nil {
		return nil
	}
	if math.IsNaN(*t0) || math.IsInf(*t0, 0) {
		return New(ErrCodeInvalidConfig, "t0 must be a finite number")
	}
	if *t0 < 0 {
		return New(ErrCodeInvalidConfig, "t0 must not be negative, got %g", *t0)
	}
	return nil
}

// ValidateReplicates checks batch sizing parameters.
func ValidateReplicates(replicates, workers int) error {
	if replicates < 1 {
		return New(ErrCodeInvalidConfig, "replicates must be at least 1, got %d", replicates)
	}
	if workers < 0 {
		return New(ErrCodeInvalidConfig, "workers must not be negative, got %d", workers)
	}
	return nil
}

// ValidateOutputPath validates a file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
