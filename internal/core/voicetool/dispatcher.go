package voicetool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

// ErrUnknownTool は定義されていないツール名で呼ばれた場合のエラーです。
var ErrUnknownTool = errors.New("voicetool: unknown tool")

const ssnFormat = "XXX-XX-XXXX"

// Employees は電話番号による従業員の特定を提供します。
type Employees interface {
	FindOrCreate(ctx context.Context, in employee.FindOrCreateInput) (*employee.FindOrCreateResult, error)
}

// Forms は音声入力から使うフォーム操作を提供します。
type Forms interface {
	SaveField(ctx context.Context, in i9.SaveFieldInput) (*i9.Form, error)
	GetProgress(ctx context.Context, in i9.GetProgressInput) (*i9.Progress, error)
	CompleteSection1(ctx context.Context, in i9.CompleteSection1Input) (*i9.Form, error)
	SubmitComplete(ctx context.Context, in i9.SubmitCompleteInput) (*i9.SubmitCompleteResult, error)
}

// ZipLookup は郵便番号から地域を引きます。
type ZipLookup interface {
	Lookup(ctx context.Context, zip string) (*zipcode.Place, error)
}

// Result はツールの実行結果です。業務上の失敗は Success=false と Error で表します。
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher はツール名に応じて引数を検証し、対応する操作を実行します。
type Dispatcher struct {
	employees Employees
	forms     Forms
	zips      ZipLookup
	schemas   map[Name]*jsonschema.Schema
	logger    *zap.Logger
}

// NewDispatcher は Dispatcher を生成します。
func NewDispatcher(employees Employees, forms Forms, zips ZipLookup, logger *zap.Logger) (*Dispatcher, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		employees: employees,
		forms:     forms,
		zips:      zips,
		schemas:   schemas,
		logger:    logger,
	}, nil
}

// Call はツールを実行します。ツール名が不明な場合は ErrUnknownTool、
// 想定外の障害の場合はエラーを返し、それ以外の失敗は Result に載せて返します。
func (d *Dispatcher) Call(ctx context.Context, rawName string, args json.RawMessage) (*Result, error) {
	name, err := ParseName(rawName)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}
	if msg := d.checkArguments(ctx, name, args); msg != "" {
		return &Result{Error: msg}, nil
	}

	var data map[string]any
	switch name {
	case NameValidateSSN:
		data, err = d.validateSSN(args)
	case NameValidateCitizenshipStatus:
		data, err = d.validateCitizenship(args)
	case NameSaveI9Field:
		data, err = d.saveField(ctx, args)
	case NameGetI9Progress:
		data, err = d.getProgress(ctx, args)
	case NameGetEmployeeByPhone:
		data, err = d.getEmployeeByPhone(ctx, args)
	case NameCompleteI9Section1:
		data, err = d.completeSection1(ctx, args)
	case NameSubmitCompleteI9Form:
		data, err = d.submitComplete(ctx, args)
	case NameLookupCityStateFromZip:
		data, err = d.lookupZip(ctx, args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err != nil {
		return d.failure(name, err)
	}
	return &Result{Success: true, Data: data}, nil
}

func (d *Dispatcher) checkArguments(ctx context.Context, name Name, args json.RawMessage) string {
	keyErrs, err := d.schemas[name].ValidateBytes(ctx, args)
	if err != nil {
		return "invalid arguments: " + err.Error()
	}
	if len(keyErrs) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		msgs = append(msgs, strings.TrimSpace(ke.PropertyPath+" "+ke.Message))
	}
	return "invalid arguments: " + strings.Join(msgs, "; ")
}

func (d *Dispatcher) failure(name Name, err error) (*Result, error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		violations := make([]map[string]any, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			violations = append(violations, map[string]any{"field": v.Field, "message": v.Message})
		}
		return &Result{Error: err.Error(), Data: map[string]any{"errors": violations}}, nil
	case errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, i9.ErrInvalidField),
		errors.Is(err, i9.ErrInvalidID),
		errors.Is(err, i9.ErrFormNotFound),
		errors.Is(err, i9.ErrInvalidTransition),
		errors.Is(err, i9.ErrAlreadySubmitted),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, zipcode.ErrNotFound),
		errors.Is(err, zipcode.ErrUnavailable):
		return &Result{Error: err.Error()}, nil
	default:
		d.logger.Error("voice tool failed", zap.String("tool", string(name)), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", name, err)
	}
}

func decode(args json.RawMessage, dst any) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return validation.NewError("arguments", "arguments must be a JSON object")
	}
	return nil
}

func (d *Dispatcher) validateSSN(args json.RawMessage) (map[string]any, error) {
	var in struct {
		SSN string `json:"ssn"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	return map[string]any{
		"valid":  validation.ValidateSSN(in.SSN),
		"format": ssnFormat,
		"input":  in.SSN,
	}, nil
}

func (d *Dispatcher) validateCitizenship(args json.RawMessage) (map[string]any, error) {
	var in struct {
		Status string `json:"status"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	options := make([]string, 0, len(i9.CitizenshipStatuses()))
	for _, c := range i9.CitizenshipStatuses() {
		options = append(options, string(c))
	}
	return map[string]any{
		"valid":         i9.ValidateCitizenship(in.Status),
		"input":         in.Status,
		"valid_options": options,
	}, nil
}

func (d *Dispatcher) saveField(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		EmployeeID string `json:"employee_id"`
		FieldName  string `json:"field_name"`
		Value      string `json:"value"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	form, err := d.forms.SaveField(ctx, i9.SaveFieldInput{
		EmployeeID: in.EmployeeID,
		FieldName:  in.FieldName,
		Value:      in.Value,
	})
	if err != nil {
		return nil, err
	}
	field, _ := i9.ParseField(in.FieldName)
	return map[string]any{
		"field_name":   string(field),
		"value":        form.Value(field),
		"updated_form": form.Record(),
	}, nil
}

func (d *Dispatcher) getProgress(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	progress, err := d.forms.GetProgress(ctx, i9.GetProgressInput{EmployeeID: in.EmployeeID})
	if err != nil {
		return nil, err
	}
	return progress.Record(), nil
}

func (d *Dispatcher) getEmployeeByPhone(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		Phone string  `json:"phone"`
		Email *string `json:"email"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	res, err := d.employees.FindOrCreate(ctx, employee.FindOrCreateInput{Phone: in.Phone, Email: in.Email})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"found":    res.Found,
		"created":  res.Created,
		"employee": res.Employee.Record(),
	}, nil
}

func (d *Dispatcher) completeSection1(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	form, err := d.forms.CompleteSection1(ctx, i9.CompleteSection1Input{EmployeeID: in.EmployeeID})
	if err != nil {
		return nil, err
	}
	record := form.Record()
	return map[string]any{
		"message":      "I-9 Section 1 completed successfully",
		"completed_at": record["completed_at"],
		"form":         record,
	}, nil
}

type submissionArgs struct {
	LastName              string `json:"last_name"`
	FirstName             string `json:"first_name"`
	MiddleInitial         string `json:"middle_initial"`
	OtherLastNames        string `json:"other_last_names"`
	Address               string `json:"address"`
	AptNumber             string `json:"apt_number"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	ZipCode               string `json:"zip_code"`
	DateOfBirth           string `json:"date_of_birth"`
	SSN                   string `json:"ssn"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	CitizenshipStatus     string `json:"citizenship_status"`
	USCISANumber          string `json:"uscis_a_number"`
	AlienExpirationDate   string `json:"alien_expiration_date"`
	FormI94Number         string `json:"form_i94_number"`
	ForeignPassportNumber string `json:"foreign_passport_number"`
	CountryOfIssuance     string `json:"country_of_issuance"`
}

func (a submissionArgs) submission() i9.Submission {
	return i9.Submission{
		LastName:              a.LastName,
		FirstName:             a.FirstName,
		MiddleInitial:         a.MiddleInitial,
		OtherLastNames:        a.OtherLastNames,
		Address:               a.Address,
		AptNumber:             a.AptNumber,
		City:                  a.City,
		State:                 a.State,
		ZipCode:               a.ZipCode,
		DateOfBirth:           a.DateOfBirth,
		SSN:                   a.SSN,
		Email:                 a.Email,
		Phone:                 a.Phone,
		CitizenshipStatus:     a.CitizenshipStatus,
		USCISANumber:          a.USCISANumber,
		AlienExpirationDate:   a.AlienExpirationDate,
		FormI94Number:         a.FormI94Number,
		ForeignPassportNumber: a.ForeignPassportNumber,
		CountryOfIssuance:     a.CountryOfIssuance,
	}
}

func (d *Dispatcher) submitComplete(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var in submissionArgs
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	res, err := d.forms.SubmitComplete(ctx, i9.SubmitCompleteInput{Submission: in.submission()})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"message":          "I-9 form submitted successfully",
		"employee_id":      res.Employee.ID,
		"employee_created": res.EmployeeCreated,
		"sms_sent":         res.SMSSent,
		"form":             res.Form.Record(),
	}, nil
}

func (d *Dispatcher) lookupZip(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		ZipCode string `json:"zip_code"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	place, err := d.zips.Lookup(ctx, in.ZipCode)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"zip_code":   place.ZipCode,
		"city":       place.City,
		"state":      place.State,
		"state_name": place.StateName,
	}, nil
}
