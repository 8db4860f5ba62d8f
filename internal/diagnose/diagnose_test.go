package diagnose

import (
	"testing"
	"time"

	"github.com/bbookman/mom0mind/internal/models"
)

func TestDiagnoseClassification(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    models.ErrorClass
	}{
		{"refused", "dial tcp 127.0.0.1:19530: connection refused", models.ClassConnection},
		{"timeout", "request timed out after 60s", models.ClassConnection},
		{"missing key", "configuration missing key memory_config.embedder", models.ClassConfiguration},
		{"bad credential", "401 unauthorized: invalid api key", models.ClassConfiguration},
		{"bad json", "failed to unmarshal extraction response", models.ClassData},
		{"dims", "dimension mismatch: expected 768, got 384", models.ClassData},
		{"unknown", "index out of range [5] with length 3", models.ClassLogic},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := Diagnose(Signal{ErrorMessage: tc.message, Timestamp: time.Now()})
			if report.Classification != tc.want {
				t.Errorf("Diagnose(%q) = %s, want %s", tc.message, report.Classification, tc.want)
			}
		})
	}
}

func TestDiagnoseDefaultIsLowConfidence(t *testing.T) {
	report := Diagnose(Signal{ErrorMessage: "index out of range [5] with length 3"})
	if report.Classification != models.ClassLogic {
		t.Fatalf("classification = %s, want logic", report.Classification)
	}
	if !report.LowConfidence {
		t.Error("default classification must carry the low-confidence flag")
	}
}

func TestDiagnoseMatchedClassIsConfident(t *testing.T) {
	report := Diagnose(Signal{ErrorMessage: "connection refused"})
	if report.LowConfidence {
		t.Error("keyword-matched classification must not be low confidence")
	}
}

func TestDiagnoseReportIsComplete(t *testing.T) {
	report := Diagnose(Signal{
		ErrorMessage: "connection refused",
		Operation:    "milvus insert",
		Timestamp:    time.Now(),
	})
	if len(report.RootCauses) == 0 || len(report.ResolutionSteps) == 0 || len(report.Prevention) == 0 {
		t.Errorf("report sections missing: %+v", report)
	}
	if report.Impact == "" {
		t.Error("report impact is empty")
	}
	if report.Operation != "milvus insert" {
		t.Errorf("operation = %q", report.Operation)
	}
}

func TestDiagnoseOperationContributesKeywords(t *testing.T) {
	// The message alone is unclassifiable; the operation name carries the
	// signal.
	report := Diagnose(Signal{ErrorMessage: "failed", Operation: "parse markdown front matter"})
	if report.Classification != models.ClassData {
		t.Errorf("classification = %s, want data", report.Classification)
	}
}
