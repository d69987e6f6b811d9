package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
	pgdb "github.com/AshithaPGowda/code-challenge/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	stringTooLongCode       = "22001"
)

const employeeColumns = `id, phone, email, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。電話番号が登録済みの場合は ErrPhoneAlreadyRegistered を返し、
// トランザクションは中断しません。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (phone, email, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (phone) DO NOTHING
        RETURNING `+employeeColumns,
		e.Phone,
		nullableString(e.Email),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return nil, employee.ErrPhoneAlreadyRegistered
	}
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// FindByID は ID で従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByPhone は正規化済みの電話番号で従業員を取得します。
func (r *EmployeeRepository) FindByPhone(ctx context.Context, phone string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE phone = $1
         LIMIT 1
    `, phone)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// UpdateEmail はメールアドレスを更新し、更新後の行を返します。
func (r *EmployeeRepository) UpdateEmail(ctx context.Context, id string, email *string, updatedAt time.Time) (*employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET email = $1, updated_at = $2
         WHERE id = $3
        RETURNING `+employeeColumns,
		nullableString(email),
		updatedAt,
		id,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。紐づくフォームは外部キーにより削除されます。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id        string
		phone     string
		email     sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &phone, &email, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var emailPtr *string
	if email.Valid {
		v := email.String
		emailPtr = &v
	}

	return &employee.Employee{
		ID:        id,
		Phone:     phone,
		Email:     emailPtr,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrPhoneAlreadyRegistered
		case stringTooLongCode:
			return validation.NewError("employee", "a value is too long to store")
		}
	}
	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
