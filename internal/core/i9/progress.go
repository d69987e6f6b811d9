package i9

import (
	"math"
	"strings"
	"time"
)

const (
	// SentinelZipCode はスケルトン作成時の郵便番号の既定値です。
	SentinelZipCode = "00000"
	// SentinelDateOfBirth はスケルトン作成時の生年月日の既定値です。
	SentinelDateOfBirth = "1990-01-01"
	// MissingEntireForm はフォーム未作成時に不足項目として返す値です。
	MissingEntireForm = "All fields - form not started"
)

// IsMissing は値が未入力とみなされるかどうかを返します。
// 進捗計算、Section 1 完了判定、提出時検証のすべてがこの判定を使います。
func IsMissing(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || v == SentinelZipCode || v == SentinelDateOfBirth
}

// MissingRequired は未入力の必須項目を返します。
func (f *Form) MissingRequired() []Field {
	var missing []Field
	for _, field := range requiredFields {
		if IsMissing(f.Value(field)) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Progress はフォームの入力進捗です。
type Progress struct {
	Exists          bool
	Percentage      int
	MissingFields   []string
	CompletedFields []string
	Status          Status
	CompletedAt     *time.Time
	UpdatedAt       *time.Time
	Form            *Form
}

// EvaluateProgress はフォームの入力進捗を計算します。form が nil の場合は未着手として扱います。
func EvaluateProgress(form *Form) Progress {
	if form == nil {
		return Progress{
			Status:        StatusNotStarted,
			MissingFields: []string{MissingEntireForm},
		}
	}

	missing := form.MissingRequired()
	missingNames := make([]string, 0, len(missing))
	for _, f := range missing {
		missingNames = append(missingNames, string(f))
	}

	completed := make([]string, 0, len(mutableFields))
	for _, f := range mutableFields {
		if !IsMissing(form.Value(f)) {
			completed = append(completed, string(f))
		}
	}

	total := len(requiredFields)
	pct := int(math.Round(float64(total-len(missing)) / float64(total) * 100))

	updated := form.UpdatedAt
	return Progress{
		Exists:          true,
		Percentage:      pct,
		MissingFields:   missingNames,
		CompletedFields: completed,
		Status:          form.Status,
		CompletedAt:     cloneTime(form.CompletedAt),
		UpdatedAt:       &updated,
		Form:            form.Clone(),
	}
}
