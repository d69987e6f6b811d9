package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
)

const maxRequestBytes = 1 << 20

type saveFieldRequest struct {
	EmployeeID string          `json:"employee_id"`
	FieldName  string          `json:"field_name"`
	Value      json.RawMessage `json:"value"`
}

// SaveI9Field は 1 項目を保存します。値は文字列以外も文字列として受け付けます。
func (h *Handler) SaveI9Field(w http.ResponseWriter, r *http.Request) {
	var req saveFieldRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	value, ok := scalarString(req.Value)
	if strings.TrimSpace(req.EmployeeID) == "" || strings.TrimSpace(req.FieldName) == "" || !ok {
		writeFailure(w, http.StatusBadRequest, "Missing required fields: employee_id, field_name, value")
		return
	}

	if _, err := h.forms.SaveField(r.Context(), i9.SaveFieldInput{
		EmployeeID: req.EmployeeID,
		FieldName:  req.FieldName,
		Value:      value,
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Saved %s", strings.TrimSpace(req.FieldName)),
	})
}

// scalarString は JSON のスカラー値を文字列に変換します。値がない場合は false を返します。
func scalarString(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "", false
	}
	return trimmed, true
}

// GetEmployeeStatus は電話番号から従業員を特定し、フォームの状態を返します。
func (h *Handler) GetEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if strings.TrimSpace(phone) == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameter: phone")
		return
	}

	found, err := h.employees.FindOrCreate(r.Context(), employee.FindOrCreateInput{Phone: phone})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	progress, err := h.forms.GetProgress(r.Context(), i9.GetProgressInput{EmployeeID: found.Employee.ID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := map[string]any{
		"employee_id":       found.Employee.ID,
		"has_existing_form": progress.Exists,
		"form_status":       string(i9.StatusNotStarted),
		"missing_fields":    []string{},
	}
	if progress.Exists {
		resp["form_status"] = string(progress.Status)
		resp["missing_fields"] = nonNilStrings(progress.MissingFields)
	}
	writeJSON(w, http.StatusOK, resp)
}

// LookupCityState は郵便番号から市区町村と州を返します。
func (h *Handler) LookupCityState(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zip")
	if strings.TrimSpace(zip) == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameter: zip")
		return
	}

	place, err := h.zips.Lookup(r.Context(), zip)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"city": place.City, "state": place.State})
}

type callerContext struct {
	EmployeeID      *string  `json:"employee_id"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email,omitempty"`
	HasExistingForm bool     `json:"has_existing_form"`
	FormStatus      string   `json:"form_status,omitempty"`
	CompletedFields []string `json:"completed_fields,omitempty"`
	MissingFields   []string `json:"missing_fields,omitempty"`
	LastUpdated     string   `json:"last_updated,omitempty"`
	Message         string   `json:"message,omitempty"`
}

// CallerContext は着信時に音声エージェントへ渡す発信者の文脈を返します。
func (h *Handler) CallerContext(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if strings.TrimSpace(phone) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Phone parameter is required"})
		return
	}
	logger := h.logger.With(zap.String("call_control_id", r.URL.Query().Get("call_control_id")))

	found, err := h.employees.FindOrCreate(r.Context(), employee.FindOrCreateInput{Phone: phone})
	if err != nil {
		writeError(w, logger, err)
		return
	}

	emp := found.Employee
	resp := callerContext{EmployeeID: &emp.ID, Phone: emp.Phone}
	if emp.Email != nil {
		resp.Email = *emp.Email
	}
	if found.Created {
		resp.Message = "New caller - ready to start I-9 form"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	progress, err := h.forms.GetProgress(r.Context(), i9.GetProgressInput{EmployeeID: emp.ID})
	if err != nil {
		logger.Warn("caller context progress lookup failed", zap.String("employee_id", emp.ID), zap.Error(err))
		resp.Message = "Employee found but unable to load form data"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if !progress.Exists {
		resp.Message = "Returning caller - ready to start I-9 form"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.HasExistingForm = true
	resp.FormStatus = string(progress.Status)
	resp.CompletedFields = nonNilStrings(progress.CompletedFields)
	resp.MissingFields = nonNilStrings(progress.MissingFields)
	if progress.UpdatedAt != nil {
		resp.LastUpdated = progress.UpdatedAt.UTC().Format(time.RFC3339)
	}
	resp.Message = greeting(progress)
	writeJSON(w, http.StatusOK, resp)
}

func greeting(p *i9.Progress) string {
	switch {
	case p.Status.Submitted():
		return "Returning caller - I-9 form already submitted"
	case p.Status == i9.StatusNeedsCorrection:
		return "Returning caller - I-9 form needs corrections"
	case len(p.MissingFields) == 0:
		return "Returning caller - I-9 form ready to submit"
	default:
		return fmt.Sprintf("Returning caller - I-9 form %d%% complete", p.Percentage)
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
