package voicetool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

type stubEmployees struct {
	res   *employee.FindOrCreateResult
	err   error
	calls []employee.FindOrCreateInput
}

func (s *stubEmployees) FindOrCreate(_ context.Context, in employee.FindOrCreateInput) (*employee.FindOrCreateResult, error) {
	s.calls = append(s.calls, in)
	return s.res, s.err
}

type stubForms struct {
	form       *i9.Form
	progress   *i9.Progress
	submission *i9.SubmitCompleteResult
	err        error

	saved     []i9.SaveFieldInput
	submitted []i9.Submission
}

func (s *stubForms) SaveField(_ context.Context, in i9.SaveFieldInput) (*i9.Form, error) {
	s.saved = append(s.saved, in)
	if s.err != nil {
		return nil, s.err
	}
	form := s.form.Clone()
	if field, err := i9.ParseField(in.FieldName); err == nil {
		form.Set(field, i9.NormalizeValue(field, in.Value))
	}
	return form, nil
}

func (s *stubForms) GetProgress(context.Context, i9.GetProgressInput) (*i9.Progress, error) {
	return s.progress, s.err
}

func (s *stubForms) CompleteSection1(context.Context, i9.CompleteSection1Input) (*i9.Form, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.form, nil
}

func (s *stubForms) SubmitComplete(_ context.Context, in i9.SubmitCompleteInput) (*i9.SubmitCompleteResult, error) {
	s.submitted = append(s.submitted, in.Submission)
	if s.err != nil {
		return nil, s.err
	}
	return s.submission, nil
}

type stubZips struct {
	place *zipcode.Place
	err   error
}

func (s *stubZips) Lookup(context.Context, string) (*zipcode.Place, error) {
	return s.place, s.err
}

func newDispatcher(t *testing.T, employees *stubEmployees, forms *stubForms, zips *stubZips) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(employees, forms, zips, nil)
	if err != nil {
		t.Fatalf("NewDispatcher returned error: %v", err)
	}
	return d
}

func sampleForm() *i9.Form {
	completed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &i9.Form{
		ID:                "form-1",
		EmployeeID:        "emp-1",
		LastName:          "Doe",
		Status:            i9.StatusCompleted,
		CitizenshipStatus: i9.CitizenshipUSCitizen,
		CompletedAt:       &completed,
	}
}

func dataOf(t *testing.T, res *Result) map[string]any {
	t.Helper()
	data, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	return data
}

func TestDefinitions(t *testing.T) {
	t.Parallel()

	defs := Definitions()
	if len(defs) != len(Names()) {
		t.Fatalf("expected %d definitions, got %d", len(Names()), len(defs))
	}
	for i, def := range defs {
		if def.Name != Names()[i] {
			t.Fatalf("definition %d is %s, want %s", i, def.Name, Names()[i])
		}
		if def.Description == "" {
			t.Fatalf("%s has no description", def.Name)
		}
		var schema struct {
			Type     string   `json:"type"`
			Required []string `json:"required"`
		}
		if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
			t.Fatalf("%s schema is not valid JSON: %v", def.Name, err)
		}
		if schema.Type != "object" || len(schema.Required) == 0 {
			t.Fatalf("%s schema = %+v", def.Name, schema)
		}
	}
}

func TestParseName(t *testing.T) {
	t.Parallel()

	if name, err := ParseName(" save_i9_field "); err != nil || name != NameSaveI9Field {
		t.Fatalf("ParseName = %q, %v", name, err)
	}
	if _, err := ParseName("drop_table"); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, &stubEmployees{}, &stubForms{}, &stubZips{})
	if _, err := d.Call(context.Background(), "delete_everything", nil); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDispatcher_ValidateSSN(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, &stubEmployees{}, &stubForms{}, &stubZips{})

	cases := []struct {
		ssn  string
		want bool
	}{
		{"123-45-6789", true},
		{"123456789", false},
		{"12-345-6789", false},
	}
	for _, tc := range cases {
		args, _ := json.Marshal(map[string]string{"ssn": tc.ssn})
		res, err := d.Call(context.Background(), string(NameValidateSSN), args)
		if err != nil {
			t.Fatalf("Call returned error: %v", err)
		}
		if !res.Success {
			t.Fatalf("expected success, got %+v", res)
		}
		data := dataOf(t, res)
		if data["valid"] != tc.want || data["format"] != "XXX-XX-XXXX" {
			t.Fatalf("validate_ssn(%q) = %+v", tc.ssn, data)
		}
	}
}

func TestDispatcher_ValidateCitizenshipStatus(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, &stubEmployees{}, &stubForms{}, &stubZips{})

	res, err := d.Call(context.Background(), string(NameValidateCitizenshipStatus), json.RawMessage(`{"status":"authorized_alien"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	data := dataOf(t, res)
	if data["valid"] != true || len(data["valid_options"].([]string)) != 4 {
		t.Fatalf("unexpected data: %+v", data)
	}

	res, err = d.Call(context.Background(), string(NameValidateCitizenshipStatus), json.RawMessage(`{"status":"tourist"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if dataOf(t, res)["valid"] != false {
		t.Fatalf("expected invalid status")
	}
}

func TestDispatcher_RejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	forms := &stubForms{form: sampleForm()}
	d := newDispatcher(t, &stubEmployees{}, forms, &stubZips{})

	for _, args := range []string{`{}`, `{"employee_id":"emp-1","field_name":"city"}`, `{"employee_id":42,"field_name":"city","value":"x"}`} {
		res, err := d.Call(context.Background(), string(NameSaveI9Field), json.RawMessage(args))
		if err != nil {
			t.Fatalf("Call(%s) returned error: %v", args, err)
		}
		if res.Success || !strings.HasPrefix(res.Error, "invalid arguments") {
			t.Fatalf("Call(%s) = %+v", args, res)
		}
	}
	if len(forms.saved) != 0 {
		t.Fatalf("expected no writes for invalid arguments")
	}
}

func TestDispatcher_SaveField(t *testing.T) {
	t.Parallel()

	forms := &stubForms{form: sampleForm()}
	d := newDispatcher(t, &stubEmployees{}, forms, &stubZips{})

	res, err := d.Call(context.Background(), string(NameSaveI9Field),
		json.RawMessage(`{"employee_id":"emp-1","field_name":"ssn","value":"123-45-6789"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	data := dataOf(t, res)
	if data["field_name"] != "ssn" || data["value"] != "123456789" {
		t.Fatalf("unexpected data: %+v", data)
	}
	if forms.saved[0].EmployeeID != "emp-1" {
		t.Fatalf("unexpected save input: %+v", forms.saved[0])
	}
}

func TestDispatcher_DomainErrorsBecomeFailedResults(t *testing.T) {
	t.Parallel()

	cases := []error{
		employee.ErrEmployeeNotFound,
		i9.ErrInvalidField,
		i9.ErrAlreadySubmitted,
		&i9.TransitionError{Action: i9.ActionCompleteSection1, Current: i9.StatusVerified},
	}
	for _, domainErr := range cases {
		forms := &stubForms{err: domainErr}
		d := newDispatcher(t, &stubEmployees{}, forms, &stubZips{})

		res, err := d.Call(context.Background(), string(NameSaveI9Field),
			json.RawMessage(`{"employee_id":"emp-1","field_name":"city","value":"Austin"}`))
		if err != nil {
			t.Fatalf("%v: Call returned error: %v", domainErr, err)
		}
		if res.Success || res.Error != domainErr.Error() {
			t.Fatalf("%v: unexpected result %+v", domainErr, res)
		}
	}
}

func TestDispatcher_CompleteSection1_MissingFields(t *testing.T) {
	t.Parallel()

	verr := validation.NewError("last_name", "required field is missing")
	verr.Add("city", "required field is missing")
	d := newDispatcher(t, &stubEmployees{}, &stubForms{err: verr}, &stubZips{})

	res, err := d.Call(context.Background(), string(NameCompleteI9Section1), json.RawMessage(`{"employee_id":"emp-1"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure")
	}
	violations := dataOf(t, res)["errors"].([]map[string]any)
	if len(violations) != 2 || violations[1]["field"] != "city" {
		t.Fatalf("unexpected violations: %+v", violations)
	}
}

func TestDispatcher_CompleteSection1(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, &stubEmployees{}, &stubForms{form: sampleForm()}, &stubZips{})

	res, err := d.Call(context.Background(), string(NameCompleteI9Section1), json.RawMessage(`{"employee_id":"emp-1"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	data := dataOf(t, res)
	if data["completed_at"] != "2025-06-01T10:00:00Z" {
		t.Fatalf("unexpected completed_at: %v", data["completed_at"])
	}
}

func TestDispatcher_InternalErrorIsReturned(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, &stubEmployees{}, &stubForms{err: errors.New("connection reset")}, &stubZips{})

	res, err := d.Call(context.Background(), string(NameGetI9Progress), json.RawMessage(`{"employee_id":"emp-1"}`))
	if err == nil || res != nil {
		t.Fatalf("expected internal error, got %+v, %v", res, err)
	}
}

func TestDispatcher_GetProgressNotStarted(t *testing.T) {
	t.Parallel()

	progress := i9.EvaluateProgress(nil)
	d := newDispatcher(t, &stubEmployees{}, &stubForms{progress: &progress}, &stubZips{})

	res, err := d.Call(context.Background(), string(NameGetI9Progress), json.RawMessage(`{"employee_id":"emp-1"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	data := dataOf(t, res)
	if data["exists"] != false || data["status"] != "not_started" || data["completion_percentage"] != 0 {
		t.Fatalf("unexpected data: %+v", data)
	}
	missing := data["missing_fields"].([]string)
	if len(missing) != 1 || missing[0] != i9.MissingEntireForm {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
}

func TestDispatcher_GetEmployeeByPhone(t *testing.T) {
	t.Parallel()

	employees := &stubEmployees{res: &employee.FindOrCreateResult{
		Employee: &employee.Employee{ID: "emp-1", Phone: "+15551234567"},
		Created:  true,
	}}
	d := newDispatcher(t, employees, &stubForms{}, &stubZips{})

	res, err := d.Call(context.Background(), string(NameGetEmployeeByPhone), json.RawMessage(`{"phone":"555-123-4567","email":"a@b.co"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	data := dataOf(t, res)
	if data["created"] != true || data["found"] != false {
		t.Fatalf("unexpected data: %+v", data)
	}
	if employees.calls[0].Email == nil || *employees.calls[0].Email != "a@b.co" {
		t.Fatalf("expected email to be forwarded")
	}
}

func TestDispatcher_SubmitComplete(t *testing.T) {
	t.Parallel()

	forms := &stubForms{submission: &i9.SubmitCompleteResult{
		Form:     sampleForm(),
		Employee: &employee.Employee{ID: "emp-1"},
		SMSSent:  true,
	}}
	d := newDispatcher(t, &stubEmployees{}, forms, &stubZips{})

	args := json.RawMessage(`{
		"last_name": "Doe", "first_name": "Jane", "address": "1 Main St", "city": "Austin",
		"state": "TX", "zip_code": "73301", "date_of_birth": "1990-05-15",
		"email": "jane@example.com", "phone": "5551234567", "citizenship_status": "us_citizen"
	}`)
	res, err := d.Call(context.Background(), string(NameSubmitCompleteI9Form), args)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if !res.Success || dataOf(t, res)["sms_sent"] != true {
		t.Fatalf("unexpected result: %+v", res)
	}
	if forms.submitted[0].City != "Austin" || forms.submitted[0].CitizenshipStatus != "us_citizen" {
		t.Fatalf("unexpected submission: %+v", forms.submitted[0])
	}

	res, err = d.Call(context.Background(), string(NameSubmitCompleteI9Form), json.RawMessage(`{"last_name":"Doe","citizenship_status":"tourist"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if res.Success || len(forms.submitted) != 1 {
		t.Fatalf("expected schema rejection, got %+v", res)
	}
}

func TestDispatcher_LookupZip(t *testing.T) {
	t.Parallel()

	zips := &stubZips{place: &zipcode.Place{ZipCode: "90210", City: "Beverly Hills", State: "CA", StateName: "California"}}
	d := newDispatcher(t, &stubEmployees{}, &stubForms{}, zips)

	res, err := d.Call(context.Background(), string(NameLookupCityStateFromZip), json.RawMessage(`{"zip_code":"90210"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	data := dataOf(t, res)
	if data["city"] != "Beverly Hills" || data["state"] != "CA" {
		t.Fatalf("unexpected data: %+v", data)
	}

	zips.err = zipcode.ErrNotFound
	res, err = d.Call(context.Background(), string(NameLookupCityStateFromZip), json.RawMessage(`{"zip_code":"00001"}`))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure for unknown zip")
	}
}

func TestDispatcher_LookupZipOutageIsToolFailure(t *testing.T) {
	t.Parallel()

	zips := &stubZips{err: zipcode.ErrUnavailable}
	d := newDispatcher(t, &stubEmployees{}, &stubForms{}, zips)

	res, err := d.Call(context.Background(), string(NameLookupCityStateFromZip), json.RawMessage(`{"zip_code":"90210"}`))
	if err != nil {
		t.Fatalf("outage must not be an internal error: %v", err)
	}
	if res.Success || !strings.Contains(res.Error, "city and state") {
		t.Fatalf("unexpected result: %+v", res)
	}
}
