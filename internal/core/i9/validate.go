package i9

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// Submission は一括提出時の入力です。Phone は従業員の特定にも使われます。
type Submission struct {
	LastName       string
	FirstName      string
	MiddleInitial  string
	OtherLastNames string

	Address   string
	AptNumber string
	City      string
	State     string
	ZipCode   string

	DateOfBirth string
	SSN         string
	Email       string
	Phone       string

	CitizenshipStatus     string
	USCISANumber          string
	AlienExpirationDate   string
	FormI94Number         string
	ForeignPassportNumber string
	CountryOfIssuance     string
}

var maxLengths = []struct {
	field Field
	max   int
	label string
}{
	{FieldLastName, 100, "Last name"},
	{FieldFirstName, 100, "First name"},
	{FieldMiddleInitial, 10, "Middle initial"},
	{FieldOtherLastNames, 255, "Other last names"},
	{FieldAddress, 255, "Address"},
	{FieldAptNumber, 20, "Apartment number"},
	{FieldCity, 100, "City"},
	{FieldEmail, 255, "Email"},
	{FieldUSCISANumber, 50, "USCIS A-Number"},
	{FieldFormI94Number, 50, "Form I-94 number"},
	{FieldForeignPassportNumber, 50, "Foreign passport number"},
	{FieldCountryOfIssuance, 100, "Country of issuance"},
}

// ToForm は提出内容をフォームの項目に写します。ワークフロー項目は設定しません。
func (s Submission) ToForm() *Form {
	f := &Form{}
	for _, field := range mutableFields {
		f.Set(field, NormalizeValue(field, strings.TrimSpace(s.value(field))))
	}
	f.State = strings.ToUpper(f.State)
	return f
}

func (s Submission) value(field Field) string {
	switch field {
	case FieldLastName:
		return s.LastName
	case FieldFirstName:
		return s.FirstName
	case FieldMiddleInitial:
		return s.MiddleInitial
	case FieldOtherLastNames:
		return s.OtherLastNames
	case FieldAddress:
		return s.Address
	case FieldAptNumber:
		return s.AptNumber
	case FieldCity:
		return s.City
	case FieldState:
		return s.State
	case FieldZipCode:
		return s.ZipCode
	case FieldDateOfBirth:
		return s.DateOfBirth
	case FieldSSN:
		return s.SSN
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldCitizenshipStatus:
		return s.CitizenshipStatus
	case FieldUSCISANumber:
		return s.USCISANumber
	case FieldAlienExpirationDate:
		return s.AlienExpirationDate
	case FieldFormI94Number:
		return s.FormI94Number
	case FieldForeignPassportNumber:
		return s.ForeignPassportNumber
	case FieldCountryOfIssuance:
		return s.CountryOfIssuance
	default:
		return ""
	}
}

// ValidateSubmission は提出内容全体を検証し、検出したすべての違反を *validation.Error で返します。
// now は生年月日が過去日であることの判定に使います。
func ValidateSubmission(s Submission, now time.Time) error {
	verr := &validation.Error{}

	for _, field := range requiredFields {
		if IsMissing(s.value(field)) {
			verr.Add(string(field), fmt.Sprintf("%s is required", field))
		}
	}

	for _, rule := range maxLengths {
		if utf8.RuneCountInString(strings.TrimSpace(s.value(rule.field))) > rule.max {
			verr.Add(string(rule.field), fmt.Sprintf("%s must be %d characters or less", rule.label, rule.max))
		}
	}

	if v := strings.TrimSpace(s.State); !IsMissing(v) && !validation.ValidateState(v) {
		verr.Add(string(FieldState), "Invalid US state code")
	}
	if v := strings.TrimSpace(s.ZipCode); !IsMissing(v) && !validation.ValidateZip(v) {
		verr.Add(string(FieldZipCode), "Invalid ZIP code format (must be 12345 or 12345-6789)")
	}
	if v := strings.TrimSpace(s.DateOfBirth); !IsMissing(v) {
		dob, ok := validation.ParseDate(v)
		if !ok || !dob.Before(now) {
			verr.Add(string(FieldDateOfBirth), "Invalid date of birth")
		}
	}
	if v := strings.TrimSpace(s.SSN); v != "" && !validation.ValidateSSN(v) {
		verr.Add(string(FieldSSN), "Invalid SSN format (must be XXX-XX-XXXX)")
	}
	if v := strings.TrimSpace(s.Email); !IsMissing(v) && !validation.ValidateEmail(v) {
		verr.Add(string(FieldEmail), "Invalid email format")
	}
	if v := strings.TrimSpace(s.Phone); !IsMissing(v) && !validation.ValidatePhone(v) {
		verr.Add(string(FieldPhone), "Invalid US phone number format")
	}

	citizenship := strings.TrimSpace(s.CitizenshipStatus)
	if !IsMissing(citizenship) && !ValidateCitizenship(citizenship) {
		verr.Add(string(FieldCitizenshipStatus), "Invalid citizenship status")
	}
	if v := strings.TrimSpace(s.AlienExpirationDate); v != "" {
		if _, ok := validation.ParseDate(v); !ok {
			verr.Add(string(FieldAlienExpirationDate), "Invalid expiration date")
		}
	}
	if !categoryDocumentsPresent(CitizenshipStatus(citizenship), s) {
		verr.Add(string(FieldCitizenshipStatus), "Additional documentation required for selected citizenship status")
	}

	return verr.OrNil()
}

// categoryDocumentsPresent は市民権区分ごとの追加書類要件を満たすかどうかを返します。
func categoryDocumentsPresent(status CitizenshipStatus, s Submission) bool {
	present := func(v string) bool { return strings.TrimSpace(v) != "" }

	switch status {
	case CitizenshipLawfulPermanentResident:
		return present(s.USCISANumber) || present(s.AlienExpirationDate)
	case CitizenshipAuthorizedAlien:
		return present(s.USCISANumber) || present(s.FormI94Number) || present(s.ForeignPassportNumber)
	default:
		return true
	}
}
