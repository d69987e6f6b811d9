// Package voicetool は音声アシスタントから呼ばれるツールの一覧と実行を扱います。
package voicetool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Name はツール名です。ここに定義された名前以外は呼び出せません。
type Name string

const (
	NameValidateSSN               Name = "validate_ssn"
	NameValidateCitizenshipStatus Name = "validate_citizenship_status"
	NameSaveI9Field               Name = "save_i9_field"
	NameGetI9Progress             Name = "get_i9_progress"
	NameGetEmployeeByPhone        Name = "get_employee_by_phone"
	NameCompleteI9Section1        Name = "complete_i9_section1"
	NameSubmitCompleteI9Form      Name = "submit_complete_i9_form"
	NameLookupCityStateFromZip    Name = "lookup_city_state_from_zip"
)

// Names はツール名を一覧表示の順に返します。
func Names() []Name {
	return []Name{
		NameValidateSSN,
		NameValidateCitizenshipStatus,
		NameSaveI9Field,
		NameGetI9Progress,
		NameGetEmployeeByPhone,
		NameCompleteI9Section1,
		NameSubmitCompleteI9Form,
		NameLookupCityStateFromZip,
	}
}

// ParseName はツール名を検証して Name に変換します。
func ParseName(raw string) (Name, error) {
	candidate := Name(strings.TrimSpace(raw))
	for _, n := range Names() {
		if n == candidate {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTool, raw)
}

// Definition は tools/list で返すツールの定義です。
type Definition struct {
	Name        Name            `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

const employeeIDSchema = `{
  "type": "object",
  "properties": {
    "employee_id": {"type": "string", "minLength": 1, "description": "Employee UUID"}
  },
  "required": ["employee_id"]
}`

const submissionSchema = `{
  "type": "object",
  "properties": {
    "last_name": {"type": "string", "description": "Employee last name (family name)"},
    "first_name": {"type": "string", "description": "Employee first name (given name)"},
    "middle_initial": {"type": "string", "description": "Middle initial (optional)"},
    "other_last_names": {"type": "string", "description": "Other last names used (optional)"},
    "address": {"type": "string", "description": "Street number and name"},
    "apt_number": {"type": "string", "description": "Apartment number (optional)"},
    "city": {"type": "string", "description": "City or town"},
    "state": {"type": "string", "description": "Two-letter state code"},
    "zip_code": {"type": "string", "description": "ZIP code (XXXXX or XXXXX-XXXX)"},
    "date_of_birth": {"type": "string", "description": "Date of birth (YYYY-MM-DD)"},
    "ssn": {"type": "string", "description": "Social Security Number (optional)"},
    "email": {"type": "string", "description": "Email address"},
    "phone": {"type": "string", "description": "US phone number"},
    "citizenship_status": {
      "type": "string",
      "enum": ["us_citizen", "noncitizen_national", "lawful_permanent_resident", "authorized_alien"],
      "description": "Citizenship or immigration status"
    },
    "uscis_a_number": {"type": "string", "description": "USCIS A-Number (optional)"},
    "alien_expiration_date": {"type": "string", "description": "Work authorization expiration date (YYYY-MM-DD)"},
    "form_i94_number": {"type": "string", "description": "Form I-94 admission number (optional)"},
    "foreign_passport_number": {"type": "string", "description": "Foreign passport number (optional)"},
    "country_of_issuance": {"type": "string", "description": "Passport country of issuance (optional)"}
  },
  "required": ["last_name", "first_name", "address", "city", "state", "zip_code", "date_of_birth", "email", "phone", "citizenship_status"]
}`

var definitions = map[Name]Definition{
	NameValidateSSN: {
		Description: "Validate Social Security Number format (XXX-XX-XXXX)",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "ssn": {"type": "string", "description": "Social Security Number to validate"}
  },
  "required": ["ssn"]
}`),
	},
	NameValidateCitizenshipStatus: {
		Description: "Validate citizenship status value against allowed options",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "status": {"type": "string", "description": "Citizenship status to validate"}
  },
  "required": ["status"]
}`),
	},
	NameSaveI9Field: {
		Description: "Save a single field to the I-9 form in database",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "employee_id": {"type": "string", "minLength": 1, "description": "Employee UUID"},
    "field_name": {"type": "string", "description": "Name of the field to update"},
    "value": {"type": "string", "description": "Value to save for the field"}
  },
  "required": ["employee_id", "field_name", "value"]
}`),
	},
	NameGetI9Progress: {
		Description: "Get current I-9 form completion status and list missing required fields",
		InputSchema: json.RawMessage(employeeIDSchema),
	},
	NameGetEmployeeByPhone: {
		Description: "Find existing employee by phone number or create new one if not found",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "phone": {"type": "string", "description": "Phone number to search for"},
    "email": {"type": "string", "description": "Email address for new employee creation (optional)"}
  },
  "required": ["phone"]
}`),
	},
	NameCompleteI9Section1: {
		Description: "Mark I-9 Section 1 as completed and set completion timestamp",
		InputSchema: json.RawMessage(employeeIDSchema),
	},
	NameSubmitCompleteI9Form: {
		Description: "Validate and submit all I-9 Section 1 fields at once, then notify the employee by SMS",
		InputSchema: json.RawMessage(submissionSchema),
	},
	NameLookupCityStateFromZip: {
		Description: "Look up city and state for a US ZIP code",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "zip_code": {"type": "string", "description": "ZIP code (XXXXX or XXXXX-XXXX)"}
  },
  "required": ["zip_code"]
}`),
	},
}

// Definitions はツール定義を一覧表示の順に返します。
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, name := range Names() {
		def := definitions[name]
		def.Name = name
		out = append(out, def)
	}
	return out
}

// compileSchemas は引数検証用のスキーマを読み込みます。
func compileSchemas() (map[Name]*jsonschema.Schema, error) {
	out := make(map[Name]*jsonschema.Schema, len(definitions))
	for _, name := range Names() {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(definitions[name].InputSchema, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = rs
	}
	return out, nil
}
