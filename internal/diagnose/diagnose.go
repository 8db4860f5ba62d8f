// Package diagnose turns a runtime error signal into a structured, purely
// advisory report. It never retries the failed operation and never mutates
// any state; a nil-safe Diagnose call is the whole surface.
package diagnose

import (
	"strings"
	"time"

	"github.com/bbookman/mom0mind/internal/models"
)

// Signal is one failed external operation as observed by the caller.
type Signal struct {
	ErrorMessage string
	SystemState  string // opaque snapshot, echoed into the report context
	Operation    string
	Timestamp    time.Time
}

// keyword tables per category, matched against message + operation.
// First matching category wins; the categories are mutually exclusive.
var (
	connectionKeywords = []string{
		"connection refused", "connection reset", "timeout", "timed out",
		"unreachable", "no such host", "dial tcp", "broken pipe", "eof",
		"refused", "unavailable",
	}
	configurationKeywords = []string{
		"config", "configuration", "missing key", "invalid value",
		"unauthorized", "forbidden", "api key", "credential", "permission",
		"not configured", "unsupported provider",
	}
	dataKeywords = []string{
		"unmarshal", "marshal", "parse", "decode", "invalid json",
		"schema", "dimension mismatch", "not found", "empty", "malformed",
		"unexpected format",
	}
)

// Diagnose classifies the failure and builds the report. Unmatched errors
// default to the logic category with the low-confidence flag set.
func Diagnose(sig Signal) models.DiagnosticReport {
	haystack := strings.ToLower(sig.ErrorMessage + " " + sig.Operation)

	report := models.DiagnosticReport{
		Operation: sig.Operation,
		Timestamp: sig.Timestamp,
	}

	switch {
	case matchesAny(haystack, connectionKeywords):
		report.Classification = models.ClassConnection
		report.RootCauses = []string{
			"the external service (vector store, embedder, or LLM) is down or unreachable",
			"network path or port is blocked between this process and the service",
			"the service address in the configuration points to the wrong host or port",
		}
		report.Impact = "the operation \"" + sig.Operation + "\" could not reach its backing service; no data was written"
		report.ResolutionSteps = []string{
			"check that the backing service is running and listening on the configured address",
			"verify host and port in memory_config against the running service",
			"retry the operation once connectivity is restored",
		}
		report.Prevention = []string{
			"add a startup health check for each configured service",
			"alert on repeated connection failures instead of silent retries",
		}
	case matchesAny(haystack, configurationKeywords):
		report.Classification = models.ClassConfiguration
		report.RootCauses = []string{
			"a required configuration key is missing or carries an invalid value",
			"credentials are absent, expired, or lack the needed permissions",
		}
		report.Impact = "the operation \"" + sig.Operation + "\" was rejected before any work happened"
		report.ResolutionSteps = []string{
			"compare the configuration file against the documented keys",
			"verify API keys and provider names for the llm and embedder sections",
			"reload the process after correcting the configuration",
		}
		report.Prevention = []string{
			"validate the configuration at startup and fail fast on missing keys",
		}
	case matchesAny(haystack, dataKeywords):
		report.Classification = models.ClassData
		report.RootCauses = []string{
			"the payload did not match the shape the operation expects",
			"upstream produced empty or truncated output",
		}
		report.Impact = "the operation \"" + sig.Operation + "\" received data it could not process; the input batch was skipped"
		report.ResolutionSteps = []string{
			"inspect the offending payload recorded in the system state snapshot",
			"re-run the operation with cleaned input",
		}
		report.Prevention = []string{
			"validate payload shape at the boundary before invoking the operation",
		}
	default:
		report.Classification = models.ClassLogic
		report.LowConfidence = true
		report.RootCauses = []string{
			"no known failure pattern matched; likely an internal logic error in the calling code",
		}
		report.Impact = "the operation \"" + sig.Operation + "\" failed for an unrecognized reason"
		report.ResolutionSteps = []string{
			"capture the full error message and system state for manual review",
			"reproduce the failure with the same input in a test",
		}
		report.Prevention = []string{
			"extend the diagnostic keyword tables once the root cause is understood",
		}
	}

	return report
}

func matchesAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
