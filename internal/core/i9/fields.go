package i9

import (
	"fmt"
	"strings"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// Field は音声入力から 1 項目ずつ更新できるフォーム項目名です。
// 値はそのまま i9_forms の列名として使われます。
type Field string

const (
	FieldLastName              Field = "last_name"
	FieldFirstName             Field = "first_name"
	FieldMiddleInitial         Field = "middle_initial"
	FieldOtherLastNames        Field = "other_last_names"
	FieldAddress               Field = "address"
	FieldAptNumber             Field = "apt_number"
	FieldCity                  Field = "city"
	FieldState                 Field = "state"
	FieldZipCode               Field = "zip_code"
	FieldDateOfBirth           Field = "date_of_birth"
	FieldSSN                   Field = "ssn"
	FieldEmail                 Field = "email"
	FieldPhone                 Field = "phone"
	FieldCitizenshipStatus     Field = "citizenship_status"
	FieldUSCISANumber          Field = "uscis_a_number"
	FieldAlienExpirationDate   Field = "alien_expiration_date"
	FieldFormI94Number         Field = "form_i94_number"
	FieldForeignPassportNumber Field = "foreign_passport_number"
	FieldCountryOfIssuance     Field = "country_of_issuance"
)

var mutableFields = []Field{
	FieldLastName, FieldFirstName, FieldMiddleInitial, FieldOtherLastNames,
	FieldAddress, FieldAptNumber, FieldCity, FieldState, FieldZipCode,
	FieldDateOfBirth, FieldSSN, FieldEmail, FieldPhone, FieldCitizenshipStatus,
	FieldUSCISANumber, FieldAlienExpirationDate, FieldFormI94Number,
	FieldForeignPassportNumber, FieldCountryOfIssuance,
}

var requiredFields = []Field{
	FieldLastName, FieldFirstName, FieldAddress, FieldCity, FieldState,
	FieldZipCode, FieldDateOfBirth, FieldEmail, FieldPhone, FieldCitizenshipStatus,
}

// MutableFields は SaveField で更新できる項目の一覧を返します。
func MutableFields() []Field {
	out := make([]Field, len(mutableFields))
	copy(out, mutableFields)
	return out
}

// RequiredFields は Section 1 の完了に必要な 10 項目を返します。
func RequiredFields() []Field {
	out := make([]Field, len(requiredFields))
	copy(out, requiredFields)
	return out
}

// ParseField は項目名を検証して Field に変換します。
func ParseField(name string) (Field, error) {
	candidate := Field(strings.TrimSpace(name))
	for _, f := range mutableFields {
		if f == candidate {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidField, name)
}

// NormalizeValue は保存前に値を整形します。SSN は区切りなしの数字で保存します。
func NormalizeValue(field Field, value string) string {
	if field == FieldSSN {
		return validation.DigitsOnly(value)
	}
	return value
}

// Value は項目の現在値を返します。
func (f *Form) Value(field Field) string {
	switch field {
	case FieldLastName:
		return f.LastName
	case FieldFirstName:
		return f.FirstName
	case FieldMiddleInitial:
		return f.MiddleInitial
	case FieldOtherLastNames:
		return f.OtherLastNames
	case FieldAddress:
		return f.Address
	case FieldAptNumber:
		return f.AptNumber
	case FieldCity:
		return f.City
	case FieldState:
		return f.State
	case FieldZipCode:
		return f.ZipCode
	case FieldDateOfBirth:
		return f.DateOfBirth
	case FieldSSN:
		return f.SSN
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldCitizenshipStatus:
		return string(f.CitizenshipStatus)
	case FieldUSCISANumber:
		return f.USCISANumber
	case FieldAlienExpirationDate:
		return f.AlienExpirationDate
	case FieldFormI94Number:
		return f.FormI94Number
	case FieldForeignPassportNumber:
		return f.ForeignPassportNumber
	case FieldCountryOfIssuance:
		return f.CountryOfIssuance
	default:
		return ""
	}
}

// Set は項目に値を設定します。値の検証は行いません。
func (f *Form) Set(field Field, value string) {
	switch field {
	case FieldLastName:
		f.LastName = value
	case FieldFirstName:
		f.FirstName = value
	case FieldMiddleInitial:
		f.MiddleInitial = value
	case FieldOtherLastNames:
		f.OtherLastNames = value
	case FieldAddress:
		f.Address = value
	case FieldAptNumber:
		f.AptNumber = value
	case FieldCity:
		f.City = value
	case FieldState:
		f.State = value
	case FieldZipCode:
		f.ZipCode = value
	case FieldDateOfBirth:
		f.DateOfBirth = value
	case FieldSSN:
		f.SSN = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldCitizenshipStatus:
		f.CitizenshipStatus = CitizenshipStatus(value)
	case FieldUSCISANumber:
		f.USCISANumber = value
	case FieldAlienExpirationDate:
		f.AlienExpirationDate = value
	case FieldFormI94Number:
		f.FormI94Number = value
	case FieldForeignPassportNumber:
		f.ForeignPassportNumber = value
	case FieldCountryOfIssuance:
		f.CountryOfIssuance = value
	}
}

// Skeleton は最初の項目保存時に作成する既定値入りのフォームです。
// 郵便番号と生年月日の既定値は IsMissing で未入力として扱われます。
func Skeleton(employeeID string) *Form {
	return &Form{
		EmployeeID:        employeeID,
		ZipCode:           SentinelZipCode,
		DateOfBirth:       SentinelDateOfBirth,
		CitizenshipStatus: CitizenshipUSCitizen,
		Status:            StatusInProgress,
	}
}
