// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
)

// TaskName validates a task name is non-empty after trimming whitespace.
func TaskName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// TaskNameField returns a criterio validator for task names.
func TaskNameField(field, name string) error {
	return criterio.Run(field, name, TaskName)
}

// TaskUUID validates an optional task uuid. Empty values are allowed; the
// store assigns one on backfill.
func TaskUUID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%q is not a uuid", id)
	}
	return nil
}

// TaskUUIDField returns a criterio validator for task uuids.
func TaskUUIDField(field, id string) error {
	return criterio.Run(field, id, TaskUUID)
}
