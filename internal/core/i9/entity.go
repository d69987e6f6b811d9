package i9

import "time"

// Status は I-9 フォームのワークフロー状態です。
type Status string

const (
	// StatusNotStarted はフォームがまだ存在しないことを表す仮想的な状態です。永続化されません。
	StatusNotStarted      Status = "not_started"
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusNeedsCorrection Status = "needs_correction"
	StatusDataApproved    Status = "data_approved"
	StatusVerified        Status = "verified"
)

// Statuses は永続化されうる状態の一覧です。
func Statuses() []Status {
	return []Status{StatusInProgress, StatusCompleted, StatusNeedsCorrection, StatusDataApproved, StatusVerified}
}

// Valid は永続化可能な状態かどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusNeedsCorrection, StatusDataApproved, StatusVerified:
		return true
	default:
		return false
	}
}

// Submitted は HR に引き渡し済みで従業員側から変更できない状態かどうかを返します。
func (s Status) Submitted() bool {
	switch s {
	case StatusCompleted, StatusDataApproved, StatusVerified:
		return true
	default:
		return false
	}
}

// CitizenshipStatus は Section 1 の市民権区分です。
type CitizenshipStatus string

const (
	CitizenshipUSCitizen               CitizenshipStatus = "us_citizen"
	CitizenshipNoncitizenNational      CitizenshipStatus = "noncitizen_national"
	CitizenshipLawfulPermanentResident CitizenshipStatus = "lawful_permanent_resident"
	CitizenshipAuthorizedAlien         CitizenshipStatus = "authorized_alien"
)

// CitizenshipStatuses は受け付ける市民権区分の一覧です。
func CitizenshipStatuses() []CitizenshipStatus {
	return []CitizenshipStatus{
		CitizenshipUSCitizen,
		CitizenshipNoncitizenNational,
		CitizenshipLawfulPermanentResident,
		CitizenshipAuthorizedAlien,
	}
}

// ValidateCitizenship は 4 区分のいずれかかどうかを判定します。
func ValidateCitizenship(s string) bool {
	for _, c := range CitizenshipStatuses() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// SignatureMethodVoice は音声通話による署名を表します。
const SignatureMethodVoice = "voice"

// Form は従業員 1 名分の I-9 Section 1 を表すエンティティです。
// 任意項目は空文字を未入力として扱います。
type Form struct {
	ID         string
	EmployeeID string

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

	CitizenshipStatus     CitizenshipStatus
	USCISANumber          string
	AlienExpirationDate   string
	FormI94Number         string
	ForeignPassportNumber string
	CountryOfIssuance     string

	Status                  Status
	CompletedAt             *time.Time
	EmployerNotes           string
	EmployerReviewedAt      *time.Time
	EmployerReviewedBy      string
	EmployeeSignatureDate   *time.Time
	EmployeeSignatureMethod string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone はフォームのディープコピーを返します。
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	c := *f
	c.CompletedAt = cloneTime(f.CompletedAt)
	c.EmployerReviewedAt = cloneTime(f.EmployerReviewedAt)
	c.EmployeeSignatureDate = cloneTime(f.EmployeeSignatureDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
