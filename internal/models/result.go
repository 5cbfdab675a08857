// Package models defines the data structures for the award import engine.
package models

import "fmt"

// MaxResultMessages bounds the free-text message log of a run so a large
// import cannot grow the response without limit.
const MaxResultMessages = 100

// RowError describes one failed row.
type RowError struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportResult accumulates the outcome of one import run.
// Created + Updated + Skipped + Errors equals the number of non-empty data
// rows processed.
type ImportResult struct {
	RunID          string     `json:"run_id,omitempty"`
	Created        int        `json:"created"`
	Updated        int        `json:"updated"`
	Skipped        int        `json:"skipped"`
	Errors         int        `json:"errors"`
	PhotosAttached int        `json:"photos_attached"`
	Messages       []string   `json:"messages,omitempty"`
	ErrorDetails   []RowError `json:"error_details,omitempty"`

	suppressed int
}

// AddMessage appends a human-readable message, keeping the log bounded.
func (r *ImportResult) AddMessage(format string, args ...interface{}) {
	if len(r.Messages) >= MaxResultMessages {
		r.suppressed++
		return
	}
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// AddRowError records a failed row and its detail entry.
func (r *ImportResult) AddRowError(row int, name string, err error) {
	r.Errors++
	if name == "" {
		name = "Unknown"
	}
	r.ErrorDetails = append(r.ErrorDetails, RowError{
		Row:   row,
		Name:  name,
		Error: err.Error(),
	})
	r.AddMessage("Row %d (%s): %v", row, name, err)
}

// Finalize appends the summary line and a note about suppressed messages.
func (r *ImportResult) Finalize() {
	if r.suppressed > 0 {
		r.Messages = append(r.Messages, fmt.Sprintf("... and %d more messages", r.suppressed))
	}
	r.Messages = append(r.Messages, fmt.Sprintf(
		"Import complete: %d created, %d updated, %d skipped, %d errors",
		r.Created, r.Updated, r.Skipped, r.Errors,
	))
}

// Processed returns the number of data rows accounted for.
func (r *ImportResult) Processed() int {
	return r.Created + r.Updated + r.Skipped + r.Errors
}
