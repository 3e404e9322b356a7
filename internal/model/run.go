package model

import "time"

// Run is the audit record of one pipeline execution.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Pages       int
	Extracted   int
	Transformed int
	Partial     bool
	Sinks       map[string]string // sink name -> OK/SKIP/FAIL
	Error       string
}
