// Package errors collects per-template processing failures so batch runs can
// keep going and report everything at the end.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// ProcessError represents a failure while processing one template
type ProcessError struct {
	File      string
	Stage     string // "read", "transform", "write"
	Message   string
	Timestamp time.Time
}

// Error implements the error interface
func (pe *ProcessError) Error() string {
	return fmt.Sprintf("%s: %s: %s", pe.File, pe.Stage, pe.Message)
}

// Collector accumulates processing errors across goroutines
type Collector struct {
	errors []ProcessError
	mutex  sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		errors: make([]ProcessError, 0),
	}
}

// Add records a failure for a file at a given stage
func (c *Collector) Add(file, stage string, err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, ProcessError{
		File:      file,
		Stage:     stage,
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

// HasErrors returns true if there are any errors
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// Count returns the number of collected errors
func (c *Collector) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors)
}

// All returns a copy of the collected errors
func (c *Collector) All() []ProcessError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]ProcessError, len(c.errors))
	copy(result, c.errors)
	return result
}

// ByFile returns errors for a specific file
func (c *Collector) ByFile(file string) []ProcessError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var fileErrors []ProcessError
	for _, err := range c.errors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// Clear clears all errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = c.errors[:0]
}
