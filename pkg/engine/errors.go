package engine

import (
	"fmt"

	"github.com/oneconcern/crane/pkg/model"
)

// ComponentError is the failure of a component visit
type ComponentError struct {
	ID   model.ComponentID
	Name string
	Dir  string
	Err  error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %q (%s): %v", e.Name, e.Dir, e.Err)
}

// Unwrap the cause
func (e *ComponentError) Unwrap() error {
	return e.Err
}
