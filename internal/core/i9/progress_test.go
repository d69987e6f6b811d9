package i9

import (
	"testing"
	"time"
)

func completeForm() *Form {
	return &Form{
		ID:                "form-1",
		EmployeeID:        "emp-1",
		LastName:          "Doe",
		FirstName:         "Jane",
		Address:           "123 Main St",
		City:              "Springfield",
		State:             "IL",
		ZipCode:           "62701",
		DateOfBirth:       "1992-08-15",
		Email:             "jane@example.com",
		Phone:             "+15551234567",
		CitizenshipStatus: CitizenshipUSCitizen,
		Status:            StatusInProgress,
		UpdatedAt:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"":           true,
		"   ":        true,
		"00000":      true,
		" 00000 ":    true,
		"1990-01-01": true,
		"Jane":       false,
		"90210":      false,
		"1990-01-02": false,
	}
	for input, want := range cases {
		if got := IsMissing(input); got != want {
			t.Errorf("IsMissing(%q) = %t, want %t", input, got, want)
		}
	}
}

func TestEvaluateProgress_NoForm(t *testing.T) {
	t.Parallel()

	p := EvaluateProgress(nil)
	if p.Exists || p.Percentage != 0 || p.Status != StatusNotStarted {
		t.Fatalf("unexpected progress: %+v", p)
	}
	if len(p.MissingFields) != 1 || p.MissingFields[0] != MissingEntireForm {
		t.Fatalf("unexpected missing fields: %v", p.MissingFields)
	}
}

func TestEvaluateProgress_Complete(t *testing.T) {
	t.Parallel()

	p := EvaluateProgress(completeForm())
	if !p.Exists || p.Percentage != 100 {
		t.Fatalf("expected 100%%, got %+v", p)
	}
	if len(p.MissingFields) != 0 {
		t.Fatalf("expected no missing fields, got %v", p.MissingFields)
	}
	if len(p.CompletedFields) != 10 {
		t.Fatalf("expected 10 completed fields, got %v", p.CompletedFields)
	}
}

func TestEvaluateProgress_SentinelsCountAsMissing(t *testing.T) {
	t.Parallel()

	form := completeForm()
	form.ZipCode = SentinelZipCode
	form.DateOfBirth = SentinelDateOfBirth
	form.City = "  "

	p := EvaluateProgress(form)
	if p.Percentage != 70 {
		t.Fatalf("expected 70%%, got %d", p.Percentage)
	}
	want := []string{"city", "zip_code", "date_of_birth"}
	if len(p.MissingFields) != len(want) {
		t.Fatalf("unexpected missing fields: %v", p.MissingFields)
	}
	for i := range want {
		if p.MissingFields[i] != want[i] {
			t.Fatalf("missing[%d] = %q, want %q", i, p.MissingFields[i], want[i])
		}
	}
}

func TestEvaluateProgress_SkeletonOnlyHasCitizenship(t *testing.T) {
	t.Parallel()

	p := EvaluateProgress(Skeleton("emp-1"))
	if p.Percentage != 10 || len(p.MissingFields) != 9 {
		t.Fatalf("unexpected skeleton progress: %+v", p)
	}
}

func TestEvaluateProgress_DoesNotAliasForm(t *testing.T) {
	t.Parallel()

	form := completeForm()
	p := EvaluateProgress(form)
	p.Form.FirstName = "changed"
	if form.FirstName != "Jane" {
		t.Fatal("progress snapshot must not alias the source form")
	}
}
