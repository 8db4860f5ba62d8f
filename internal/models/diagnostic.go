package models

import "time"

// ErrorClass buckets a runtime failure into one of four mutually exclusive
// diagnostic categories.
type ErrorClass string

const (
	ClassConnection    ErrorClass = "connection"
	ClassConfiguration ErrorClass = "configuration"
	ClassData          ErrorClass = "data"
	ClassLogic         ErrorClass = "logic"
)

// DiagnosticReport is the structured analysis of a single failed external
// operation. Reports are advisory: producing one never retries the
// operation or mutates any state.
type DiagnosticReport struct {
	Classification  ErrorClass `json:"classification"`
	LowConfidence   bool       `json:"low_confidence,omitempty"`
	RootCauses      []string   `json:"root_causes"`
	Impact          string     `json:"impact"`
	ResolutionSteps []string   `json:"resolution_steps"`
	Prevention      []string   `json:"prevention"`
	Operation       string     `json:"operation"`
	Timestamp       time.Time  `json:"timestamp"`
}
