package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
	pgdb "github.com/AshithaPGowda/code-challenge/internal/platform/db/postgres"
)

// formWritableColumns は INSERT と UPDATE で書き込む列です。並びは formValues と一致させます。
var formWritableColumns = []string{
	"last_name", "first_name", "middle_initial", "other_last_names",
	"address", "apt_number", "city", "state", "zip_code",
	"date_of_birth", "ssn", "email", "phone",
	"citizenship_status", "uscis_a_number", "alien_expiration_date",
	"form_i94_number", "foreign_passport_number", "country_of_issuance",
	"status", "completed_at", "employer_notes", "employer_reviewed_at",
	"employer_reviewed_by", "employee_signature_date", "employee_signature_method",
}

var (
	formColumns = "id, employee_id, " + strings.Join(formWritableColumns, ", ") + ", created_at, updated_at"

	insertFormSQL = buildInsertFormSQL()
	updateFormSQL = buildUpdateFormSQL()
)

func buildInsertFormSQL() string {
	columns := append([]string{"employee_id"}, formWritableColumns...)
	columns = append(columns, "created_at", "updated_at")
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return `
        INSERT INTO i9_forms (` + strings.Join(columns, ", ") + `)
        VALUES (` + strings.Join(placeholders, ", ") + `)
        ON CONFLICT (employee_id) DO NOTHING
        RETURNING ` + formColumns
}

func buildUpdateFormSQL() string {
	sets := make([]string, 0, len(formWritableColumns)+1)
	for i, column := range formWritableColumns {
		placeholder := "$" + strconv.Itoa(i+1)
		if column == "completed_at" {
			// 一度記録した完了日時は上書きしない
			sets = append(sets, column+" = COALESCE(completed_at, "+placeholder+")")
			continue
		}
		sets = append(sets, column+" = "+placeholder)
	}
	n := len(formWritableColumns)
	sets = append(sets, "updated_at = $"+strconv.Itoa(n+1))
	return `
        UPDATE i9_forms
           SET ` + strings.Join(sets, ",\n               ") + `
         WHERE id = $` + strconv.Itoa(n+2) + ` AND status = $` + strconv.Itoa(n+3) + `
        RETURNING ` + formColumns
}

// FormRepository は PostgreSQL を利用した I-9 フォーム永続化の実装です。
type FormRepository struct {
	pool pgdb.Queryer
}

// NewFormRepository は FormRepository を生成します。
func NewFormRepository(pool pgdb.Queryer) *FormRepository {
	return &FormRepository{pool: pool}
}

// Create はフォームを作成します。同じ従業員のフォームが既にあれば ErrFormAlreadyExists を返します。
func (r *FormRepository) Create(ctx context.Context, form *i9.Form) (*i9.Form, error) {
	args := make([]any, 0, len(formWritableColumns)+3)
	args = append(args, form.EmployeeID)
	args = append(args, formValues(form)...)
	args = append(args, form.CreatedAt, form.UpdatedAt)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	created, err := scanForm(exec.QueryRow(ctx, insertFormSQL, args...))
	if errors.Is(err, i9.ErrFormNotFound) {
		return nil, i9.ErrFormAlreadyExists
	}
	if err != nil {
		return nil, translateFormPgError(err)
	}
	return created, nil
}

// Update はフォーム全体を保存します。保存時点の状態が expected と異なる場合は ErrStatusConflict を返します。
func (r *FormRepository) Update(ctx context.Context, form *i9.Form, expected i9.Status) (*i9.Form, error) {
	if _, err := uuid.Parse(form.ID); err != nil {
		return nil, i9.ErrFormNotFound
	}

	args := make([]any, 0, len(formWritableColumns)+3)
	args = append(args, formValues(form)...)
	args = append(args, form.UpdatedAt, form.ID, string(expected))

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanForm(exec.QueryRow(ctx, updateFormSQL, args...))
	if errors.Is(err, i9.ErrFormNotFound) {
		return nil, i9.ErrStatusConflict
	}
	if err != nil {
		return nil, translateFormPgError(err)
	}
	return updated, nil
}

// UpdateField は 1 項目だけを更新します。HR に引き渡し済みのフォームは更新しません。
func (r *FormRepository) UpdateField(ctx context.Context, employeeID string, field i9.Field, value string, updatedAt time.Time) (*i9.Form, error) {
	// 列名は許可リストに含まれるものだけを SQL に埋め込む
	column, err := i9.ParseField(string(field))
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, i9.ErrFormNotFound
	}

	query := `
        UPDATE i9_forms
           SET ` + string(column) + ` = $1,
               updated_at = $2
         WHERE employee_id = $3
           AND status NOT IN ('completed', 'data_approved', 'verified')
        RETURNING ` + formColumns

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanForm(exec.QueryRow(ctx, query, fieldValue(column, value), updatedAt, employeeID))
	if errors.Is(err, i9.ErrFormNotFound) {
		if _, findErr := r.FindByEmployeeID(ctx, employeeID); findErr != nil {
			return nil, findErr
		}
		return nil, i9.ErrStatusConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == stringTooLongCode {
		return nil, validation.NewError(string(column), "value is too long for this field")
	}
	if err != nil {
		return nil, translateFormPgError(err)
	}
	return updated, nil
}

// FindByID は ID でフォームを取得します。
func (r *FormRepository) FindByID(ctx context.Context, id string) (*i9.Form, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, i9.ErrFormNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+formColumns+`
          FROM i9_forms
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanForm(row)
	if err != nil {
		return nil, translateFormPgError(err)
	}
	return found, nil
}

// FindByEmployeeID は従業員 ID でフォームを取得します。
func (r *FormRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*i9.Form, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, i9.ErrFormNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+formColumns+`
          FROM i9_forms
         WHERE employee_id = $1
         LIMIT 1
    `, employeeID)

	found, err := scanForm(row)
	if err != nil {
		return nil, translateFormPgError(err)
	}
	return found, nil
}

// List はフォームの一覧を取得します。
func (r *FormRepository) List(ctx context.Context, filter i9.ListFormsFilter) ([]*i9.Form, string, error) {
	if filter.Limit <= 0 {
		return nil, "", i9.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", i9.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		whereClause = " WHERE status = $" + strconv.Itoa(len(args))
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + formColumns + `
          FROM i9_forms` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateFormPgError(err)
	}
	defer rows.Close()

	forms := make([]*i9.Form, 0, filter.Limit)
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, "", translateFormPgError(err)
		}
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateFormPgError(err)
	}

	var nextToken string
	if len(forms) == limitWithBuffer {
		forms = forms[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}
	return forms, nextToken, nil
}

// CountByStatus は状態ごとのフォーム件数を返します。
func (r *FormRepository) CountByStatus(ctx context.Context) (map[i9.Status]int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT status, COUNT(*) FROM i9_forms GROUP BY status`)
	if err != nil {
		return nil, translateFormPgError(err)
	}
	defer rows.Close()

	counts := make(map[i9.Status]int)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[i9.Status(status)] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, translateFormPgError(err)
	}
	return counts, nil
}

// formValues は formWritableColumns の並びで値を返します。
func formValues(f *i9.Form) []any {
	values := make([]any, 0, len(formWritableColumns))
	for _, field := range i9.MutableFields() {
		values = append(values, fieldValue(field, f.Value(field)))
	}
	return append(values,
		string(f.Status),
		nullableTimePtr(f.CompletedAt),
		nullIfEmpty(f.EmployerNotes),
		nullableTimePtr(f.EmployerReviewedAt),
		nullIfEmpty(f.EmployerReviewedBy),
		nullableTimePtr(f.EmployeeSignatureDate),
		nullIfEmpty(f.EmployeeSignatureMethod),
	)
}

var requiredColumns = func() map[i9.Field]struct{} {
	out := make(map[i9.Field]struct{})
	for _, f := range i9.RequiredFields() {
		out[f] = struct{}{}
	}
	return out
}()

// fieldValue は任意項目の空文字を NULL として書き込みます。
func fieldValue(field i9.Field, value string) any {
	if _, ok := requiredColumns[field]; ok {
		return value
	}
	return nullIfEmpty(value)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTimePtr(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

func scanForm(row pgx.Row) (*i9.Form, error) {
	var (
		f        i9.Form
		optional = make(map[i9.Field]*sql.NullString)
		required = make(map[i9.Field]*string)

		status                  string
		completedAt             sql.NullTime
		employerNotes           sql.NullString
		employerReviewedAt      sql.NullTime
		employerReviewedBy      sql.NullString
		employeeSignatureDate   sql.NullTime
		employeeSignatureMethod sql.NullString
	)

	dest := make([]any, 0, len(formWritableColumns)+4)
	dest = append(dest, &f.ID, &f.EmployeeID)
	for _, field := range i9.MutableFields() {
		if _, ok := requiredColumns[field]; ok {
			v := new(string)
			required[field] = v
			dest = append(dest, v)
			continue
		}
		v := new(sql.NullString)
		optional[field] = v
		dest = append(dest, v)
	}
	dest = append(dest,
		&status,
		&completedAt,
		&employerNotes,
		&employerReviewedAt,
		&employerReviewedBy,
		&employeeSignatureDate,
		&employeeSignatureMethod,
		&f.CreatedAt,
		&f.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, i9.ErrFormNotFound
		}
		return nil, err
	}

	for field, v := range required {
		f.Set(field, *v)
	}
	for field, v := range optional {
		if v.Valid {
			f.Set(field, v.String)
		}
	}
	f.Status = i9.Status(status)
	f.CompletedAt = timePtr(completedAt)
	f.EmployerNotes = employerNotes.String
	f.EmployerReviewedAt = timePtr(employerReviewedAt)
	f.EmployerReviewedBy = employerReviewedBy.String
	f.EmployeeSignatureDate = timePtr(employeeSignatureDate)
	f.EmployeeSignatureMethod = employeeSignatureMethod.String
	return &f, nil
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func translateFormPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return i9.ErrFormNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return i9.ErrFormAlreadyExists
		case foreignKeyViolationCode:
			return fmt.Errorf("employee_id: %w", employee.ErrEmployeeNotFound)
		case checkViolationCode:
			return i9.ErrInvalidStatus
		case stringTooLongCode:
			return validation.NewError("form", "a value is too long to store")
		}
	}
	return err
}
