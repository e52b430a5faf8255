// Package validate provides shared validation functions.
package validate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
)

// NotEmpty rejects empty or whitespace-only values.
func NotEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

// Directory requires path to be an existing directory.
func Directory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return errors.New("exists but is not a directory")
	}
	return nil
}

// FileOrNotExist accepts a regular file or a path that does not exist yet.
func FileOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return errors.New("exists but is a directory")
	}
	return nil
}

// Field wraps a non-nil err as a criterio field error.
func Field(field string, err error) error {
	if err == nil {
		return nil
	}
	return criterio.NewFieldErrors(field, err)
}
