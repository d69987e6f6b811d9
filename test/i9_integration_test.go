//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap/zaptest"

	repo "github.com/AshithaPGowda/code-challenge/internal/adapters/repository/postgres"
	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/review"
	"github.com/AshithaPGowda/code-challenge/internal/platform/config"
	pg "github.com/AshithaPGowda/code-challenge/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func TestI9WorkflowIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	logger := zaptest.NewLogger(t)
	tx := pg.NewTransactionManager(pool, pg.WithTransactionLogger(logger))
	clock := stubClock{now: time.Now().UTC()}

	formRepo := repo.NewFormRepository(pool)
	employees := employee.NewService(repo.NewEmployeeRepository(pool), clock, tx)
	forms := i9.NewService(formRepo, employees, clock, tx, i9.WithLogger(logger))
	reviews := review.NewService(formRepo, clock, tx, review.WithEmployees(employees), review.WithLogger(logger))

	found, err := employees.FindOrCreate(ctx, employee.FindOrCreateInput{Phone: "(217) 555-0134"})
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	if !found.Created {
		t.Fatalf("expected a new employee, got %+v", found)
	}
	employeeID := found.Employee.ID

	email := "ada@example.com"
	again, err := employees.FindOrCreate(ctx, employee.FindOrCreateInput{Phone: "217-555-0134", Email: &email})
	if err != nil {
		t.Fatalf("FindOrCreate with email error: %v", err)
	}
	if again.Created || again.Employee.Email == nil || *again.Employee.Email != email {
		t.Fatalf("expected email on existing employee, got %+v", again.Employee)
	}
	cleared, err := employees.UpdateEmail(ctx, employee.UpdateEmailInput{ID: employeeID})
	if err != nil {
		t.Fatalf("UpdateEmail error: %v", err)
	}
	if cleared.Email != nil {
		t.Fatalf("expected email to be cleared, got %q", *cleared.Email)
	}

	progress, err := forms.GetProgress(ctx, i9.GetProgressInput{EmployeeID: employeeID})
	if err != nil {
		t.Fatalf("GetProgress error: %v", err)
	}
	if progress.Exists {
		t.Fatalf("expected no form yet, got %+v", progress)
	}

	if _, err := forms.SaveField(ctx, i9.SaveFieldInput{EmployeeID: employeeID, FieldName: "first_name", Value: "Ada"}); err != nil {
		t.Fatalf("SaveField error: %v", err)
	}

	sub := i9.Submission{
		LastName:          "Lovelace",
		FirstName:         "Ada",
		Address:           "1 Analytical Way",
		City:              "Springfield",
		State:             "il",
		ZipCode:           "62701",
		DateOfBirth:       "1990-12-10",
		Email:             "ada@example.com",
		Phone:             "(217) 555-0134",
		CitizenshipStatus: string(i9.CitizenshipUSCitizen),
	}
	submitted, err := forms.SubmitComplete(ctx, i9.SubmitCompleteInput{Submission: sub})
	if err != nil {
		t.Fatalf("SubmitComplete error: %v", err)
	}
	if submitted.Employee.ID != employeeID || submitted.EmployeeCreated {
		t.Fatalf("expected existing employee to be reused, got %+v", submitted)
	}
	if submitted.Form.Status != i9.StatusCompleted || submitted.Form.State != "IL" {
		t.Fatalf("unexpected submitted form: %+v", submitted.Form)
	}
	formID := submitted.Form.ID

	if _, err := forms.SaveField(ctx, i9.SaveFieldInput{EmployeeID: employeeID, FieldName: "city", Value: "Chicago"}); !errors.Is(err, i9.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	if _, err := reviews.VerifyFinal(ctx, review.VerifyFinalInput{ID: formID}); !errors.Is(err, i9.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	corrections, err := reviews.RequestCorrections(ctx, review.RequestCorrectionsInput{ID: formID, Notes: "Check ZIP"})
	if err != nil {
		t.Fatalf("RequestCorrections error: %v", err)
	}
	if corrections.Form.Status != i9.StatusNeedsCorrection {
		t.Fatalf("expected needs_correction, got %s", corrections.Form.Status)
	}

	sub.ZipCode = "62702"
	resubmitted, err := forms.SubmitComplete(ctx, i9.SubmitCompleteInput{Submission: sub})
	if err != nil {
		t.Fatalf("resubmit error: %v", err)
	}
	if resubmitted.Form.ID != formID || resubmitted.Form.Status != i9.StatusCompleted {
		t.Fatalf("unexpected resubmitted form: %+v", resubmitted.Form)
	}

	approved, err := reviews.ApproveData(ctx, review.ApproveDataInput{ID: formID, Reviewer: "Dana"})
	if err != nil {
		t.Fatalf("ApproveData error: %v", err)
	}
	if approved.Form.Status != i9.StatusDataApproved || approved.PDFGenerated {
		t.Fatalf("unexpected approval: %+v", approved)
	}

	verified, err := reviews.VerifyFinal(ctx, review.VerifyFinalInput{ID: formID, Reviewer: "Dana"})
	if err != nil {
		t.Fatalf("VerifyFinal error: %v", err)
	}
	if verified.Status != i9.StatusVerified {
		t.Fatalf("expected verified, got %s", verified.Status)
	}

	stats, err := forms.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Total != 1 || stats.ByStatus[i9.StatusVerified] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: employeeID}); err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
	if _, err := forms.GetForm(ctx, i9.GetFormInput{ID: formID}); !errors.Is(err, i9.ErrFormNotFound) {
		t.Fatalf("expected form to be deleted with employee, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
