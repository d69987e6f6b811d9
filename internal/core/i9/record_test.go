package i9

import (
	"testing"
	"time"
)

func TestForm_Record(t *testing.T) {
	t.Parallel()

	form := completeForm()
	form.ID = "form-1"
	form.Status = StatusCompleted
	completed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.FixedZone("PDT", -7*3600))
	form.CompletedAt = &completed

	rec := form.Record()
	if rec["id"] != "form-1" || rec["status"] != "completed" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec["completed_at"] != "2025-06-01T17:00:00Z" {
		t.Fatalf("expected UTC timestamp, got %v", rec["completed_at"])
	}
	if rec["employer_reviewed_at"] != nil || rec["employer_notes"] != nil {
		t.Fatalf("expected nil for unset workflow fields")
	}
	for _, f := range MutableFields() {
		if _, ok := rec[string(f)]; !ok {
			t.Fatalf("record is missing %s", f)
		}
	}
}

func TestProgress_Record(t *testing.T) {
	t.Parallel()

	rec := EvaluateProgress(nil).Record()
	if rec["exists"] != false || rec["status"] != "not_started" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, ok := rec["current_data"]; ok {
		t.Fatalf("current_data should be absent for a missing form")
	}

	form := completeForm()
	rec = EvaluateProgress(form).Record()
	if rec["completion_percentage"] != 100 || len(rec["missing_fields"].([]string)) != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
