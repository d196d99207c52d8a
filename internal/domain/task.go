package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SourceTypeLocalFile   = "local_file"
	SourceTypeObjectStore = "object_store"
)

// Task is one input file scheduled for processing.
type Task struct {
	// Name is the input file name as found in the source directory.
	Name string `json:"name"`
	// OutputName is the sanitized base name used for every output of the task.
	OutputName string `json:"output_name"`
	SourceType string `json:"source_type"`
	// SourceKey is a filesystem path for local_file or an object key otherwise.
	SourceKey string `json:"source_key"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task name is required")
	}
	if strings.TrimSpace(t.OutputName) == "" {
		return fmt.Errorf("task %s: output name is required", t.Name)
	}
	if strings.TrimSpace(t.SourceKey) == "" {
		return fmt.Errorf("task %s: source key is required", t.Name)
	}
	switch t.SourceType {
	case SourceTypeLocalFile, SourceTypeObjectStore:
		return nil
	default:
		return fmt.Errorf("task %s: unsupported source_type: %s", t.Name, t.SourceType)
	}
}
