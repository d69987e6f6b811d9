package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// DateLayout は日付項目の保存形式です。
const DateLayout = "2006-01-02"

var (
	ssnPattern   = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phonePattern = regexp.MustCompile(`^(\+1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})$`)
)

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"DC": {},
}

// ValidateSSN は SSN が DDD-DD-DDDD 形式かどうかを判定します。
func ValidateSSN(s string) bool {
	return ssnPattern.MatchString(s)
}

// ValidatePhone は米国形式の電話番号かどうかを判定します。
// 先頭の +1 と区切り文字は任意で、数字は 10 桁である必要があります。
func ValidatePhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidateZip は 5 桁または ZIP+4 形式かどうかを判定します。
func ValidateZip(s string) bool {
	return zipPattern.MatchString(s)
}

// ValidateState は 50 州 + DC の 2 文字コードかどうかを判定します。
func ValidateState(s string) bool {
	_, ok := usStates[strings.ToUpper(s)]
	return ok
}

// ValidateEmail はメールアドレスとして解釈できるかどうかを判定します。
func ValidateEmail(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return false
	}
	return addr.Address == trimmed
}

// ParseDate は YYYY-MM-DD 形式の日付を UTC で解釈します。
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CanonicalPhone は電話番号を E.164 (+1XXXXXXXXXX) に正規化します。
// 10 桁の米国番号として解釈できない場合は数字と + のみを残した値を返します。
func CanonicalPhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case !strings.HasPrefix(cleaned, "+") && len(cleaned) == 10:
		return "+1" + cleaned
	case !strings.HasPrefix(cleaned, "+") && len(cleaned) == 11 && cleaned[0] == '1':
		return "+" + cleaned
	default:
		return cleaned
	}
}

// DigitsOnly は数字以外を取り除きます。
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
