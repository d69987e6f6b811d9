package i9

import "time"

// Record はフォームを列名をキーとするマップに変換します。
// JSON や structpb にそのまま渡せるよう、値は string、nil のいずれかです。
func (f *Form) Record() map[string]any {
	if f == nil {
		return nil
	}
	out := map[string]any{
		"id":          f.ID,
		"employee_id": f.EmployeeID,
		"status":      string(f.Status),
		"created_at":  timeValue(&f.CreatedAt),
		"updated_at":  timeValue(&f.UpdatedAt),

		"completed_at":              timeValue(f.CompletedAt),
		"employer_notes":            optionalValue(f.EmployerNotes),
		"employer_reviewed_at":      timeValue(f.EmployerReviewedAt),
		"employer_reviewed_by":      optionalValue(f.EmployerReviewedBy),
		"employee_signature_date":   timeValue(f.EmployeeSignatureDate),
		"employee_signature_method": optionalValue(f.EmployeeSignatureMethod),
	}
	for _, field := range mutableFields {
		out[string(field)] = f.Value(field)
	}
	return out
}

func timeValue(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalValue(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Record は進捗を音声アシスタント向けのマップに変換します。
func (p Progress) Record() map[string]any {
	out := map[string]any{
		"exists":                p.Exists,
		"completion_percentage": p.Percentage,
		"missing_fields":        nonNil(p.MissingFields),
		"completed_fields":      nonNil(p.CompletedFields),
		"status":                string(p.Status),
	}
	if p.Exists {
		out["completed_at"] = timeValue(p.CompletedAt)
		out["last_updated"] = timeValue(p.UpdatedAt)
		out["current_data"] = p.Form.Record()
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
