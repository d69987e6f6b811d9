// Package pdf は I-9 テンプレートへの書き込みと生成物の保存を提供します。
package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/review"
)

// ErrEmptyTemplate はテンプレートが空の場合に返されます。
var ErrEmptyTemplate = errors.New("pdf: template is empty")

var disableConfigDir sync.Once

// Renderer は pdfcpu で AcroForm テンプレートを埋める review.Renderer 実装です。
type Renderer struct {
	template []byte
	// fields はテンプレートに存在する項目名です。読み取れなかった場合は nil です。
	fields map[string]struct{}
	lock   bool
	logger *zap.Logger
}

// RendererOption は Renderer の設定を変更します。
type RendererOption func(*Renderer)

// WithLockedFields は書き込んだ項目を編集不可にします。
func WithLockedFields(lock bool) RendererOption {
	return func(r *Renderer) {
		r.lock = lock
	}
}

// WithRendererLogger は Renderer にロガーを設定します。
func WithRendererLogger(logger *zap.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer はテンプレートのバイト列から Renderer を生成します。
func NewRenderer(template []byte, opts ...RendererOption) (*Renderer, error) {
	if len(template) == 0 {
		return nil, ErrEmptyTemplate
	}
	disableConfigDir.Do(api.DisableConfigDir)

	r := &Renderer{template: template, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	fields, err := templateFields(template)
	if err != nil {
		r.logger.Warn("could not list template form fields", zap.Error(err))
	} else {
		r.fields = fields
		r.logger.Debug("template form fields loaded", zap.Int("fields", len(fields)))
	}
	return r, nil
}

// NewRendererFromFile はファイルからテンプレートを読み込みます。
func NewRendererFromFile(path string, opts ...RendererOption) (*Renderer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf template: %w", err)
	}
	return NewRenderer(b, opts...)
}

// Render は書類の項目をテンプレートに書き込んだ PDF を返します。
func (r *Renderer) Render(ctx context.Context, doc review.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if missing := r.unmatchedFields(doc); len(missing) > 0 {
		r.logger.Warn("pdf fields not found in template", zap.Strings("fields", missing))
	}

	data, err := formJSON(doc, r.lock)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.FillForm(bytes.NewReader(r.template), bytes.NewReader(data), &out, conf); err != nil {
		return nil, fmt.Errorf("fill pdf form: %w", err)
	}

	r.logger.Debug("pdf rendered",
		zap.Int("text_fields", len(doc.Text)),
		zap.Int("checkboxes", len(doc.Checkboxes)),
		zap.Int("bytes", out.Len()),
	)
	return out.Bytes(), nil
}

// unmatchedFields はテンプレートに存在しない項目名を名前順で返します。
func (r *Renderer) unmatchedFields(doc review.Document) []string {
	if r.fields == nil {
		return nil
	}
	var missing []string
	for _, names := range [][]string{sortedKeys(doc.Text), sortedKeys(doc.Checkboxes), sortedKeys(doc.Choices)} {
		for _, name := range names {
			if _, ok := r.fields[name]; !ok {
				missing = append(missing, name)
			}
		}
	}
	sort.Strings(missing)
	return missing
}

type exportedForms struct {
	Forms []struct {
		TextFields  []exportedField `json:"textfield"`
		DateFields  []exportedField `json:"datefield"`
		CheckBoxes  []exportedField `json:"checkbox"`
		RadioGroups []exportedField `json:"radiobuttongroup"`
		ComboBoxes  []exportedField `json:"combobox"`
		ListBoxes   []exportedField `json:"listbox"`
	} `json:"forms"`
}

type exportedField struct {
	Name string `json:"name"`
}

// templateFields は pdfcpu のフォーム書き出しから項目名を集めます。
func templateFields(template []byte) (map[string]struct{}, error) {
	var buf bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.ExportFormJSON(bytes.NewReader(template), &buf, "template", conf); err != nil {
		return nil, fmt.Errorf("export pdf form: %w", err)
	}

	var exported exportedForms
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		return nil, fmt.Errorf("decode pdf form export: %w", err)
	}

	fields := make(map[string]struct{})
	for _, f := range exported.Forms {
		for _, group := range [][]exportedField{f.TextFields, f.DateFields, f.CheckBoxes, f.RadioGroups, f.ComboBoxes, f.ListBoxes} {
			for _, field := range group {
				fields[field.Name] = struct{}{}
			}
		}
	}
	return fields, nil
}

type formGroup struct {
	Forms []formFields `json:"forms"`
}

type formFields struct {
	TextFields []textField `json:"textfield,omitempty"`
	CheckBoxes []checkBox  `json:"checkbox,omitempty"`
	ComboBoxes []comboBox  `json:"combobox,omitempty"`
}

type textField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type checkBox struct {
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

type comboBox struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

// formJSON は pdfcpu のフォーム入力形式に変換します。項目は名前順に並べます。
func formJSON(doc review.Document, lock bool) ([]byte, error) {
	var f formFields
	for _, name := range sortedKeys(doc.Text) {
		f.TextFields = append(f.TextFields, textField{Name: name, Value: doc.Text[name], Locked: lock})
	}
	for _, name := range sortedKeys(doc.Checkboxes) {
		f.CheckBoxes = append(f.CheckBoxes, checkBox{Name: name, Value: doc.Checkboxes[name], Locked: lock})
	}
	for _, name := range sortedKeys(doc.Choices) {
		f.ComboBoxes = append(f.ComboBoxes, comboBox{Name: name, Value: doc.Choices[name], Locked: lock})
	}

	b, err := json.Marshal(formGroup{Forms: []formFields{f}})
	if err != nil {
		return nil, fmt.Errorf("encode pdf form data: %w", err)
	}
	return b, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
