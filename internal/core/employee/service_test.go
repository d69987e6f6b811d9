package employee

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	sequence  int

	emailUpdates int

	// raceWinner が設定されていると Create は一意制約違反を返し、その行を登録済みにする
	raceWinner *Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if r.raceWinner != nil {
		r.employees[r.raceWinner.ID] = cloneEmployee(r.raceWinner)
		r.raceWinner = nil
		return nil, ErrPhoneAlreadyRegistered
	}
	for _, existing := range r.employees {
		if existing.Phone == e.Phone {
			return nil, ErrPhoneAlreadyRegistered
		}
	}

	clone := cloneEmployee(e)
	r.sequence++
	clone.ID = fmt.Sprintf("emp-%d", r.sequence)
	r.employees[clone.ID] = clone
	return cloneEmployee(clone), nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) FindByPhone(_ context.Context, phone string) (*Employee, error) {
	for _, emp := range r.employees {
		if emp.Phone == phone {
			return cloneEmployee(emp), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) UpdateEmail(_ context.Context, id string, email *string, updatedAt time.Time) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	r.emailUpdates++
	emp.Email = email
	emp.UpdatedAt = updatedAt
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

func cloneEmployee(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	copy := *emp
	if emp.Email != nil {
		email := *emp.Email
		copy.Email = &email
	}
	return &copy
}

func TestService_FindOrCreate_CreatesWithCanonicalPhone(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	email := " Jane.Doe@Example.com "
	res, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{
		Phone: "(555) 123-4567",
		Email: &email,
	})
	if err != nil {
		t.Fatalf("FindOrCreate returned error: %v", err)
	}
	if !res.Created || res.Found {
		t.Fatalf("expected created result, got %+v", res)
	}
	if res.Employee.Phone != "+15551234567" {
		t.Fatalf("expected canonical phone, got %s", res.Employee.Phone)
	}
	if res.Employee.Email == nil || *res.Employee.Email != "jane.doe@example.com" {
		t.Fatalf("expected normalized email, got %+v", res.Employee.Email)
	}
	if !res.Employee.CreatedAt.Equal(now) || !res.Employee.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_FindOrCreate_ReturnsExistingForEquivalentFormats(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	first, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phone := range []string{"555-123-4567", "1 (555) 123-4567", "+1 555 123 4567"} {
		res, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: phone})
		if err != nil {
			t.Fatalf("FindOrCreate(%q) returned error: %v", phone, err)
		}
		if !res.Found || res.Created {
			t.Fatalf("FindOrCreate(%q) expected found result, got %+v", phone, res)
		}
		if res.Employee.ID != first.Employee.ID {
			t.Fatalf("FindOrCreate(%q) resolved to %s, want %s", phone, res.Employee.ID, first.Employee.ID)
		}
	}
	if len(repo.employees) != 1 {
		t.Fatalf("expected a single employee row, got %d", len(repo.employees))
	}
}

func TestService_FindOrCreate_InvalidPhone(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	for _, phone := range []string{"", "   ", "555-1234", "+44 20 7946 0958"} {
		_, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: phone})
		if !errors.Is(err, validation.ErrValidationFailed) {
			t.Fatalf("FindOrCreate(%q) expected validation error, got %v", phone, err)
		}
	}
	if len(repo.employees) != 0 {
		t.Fatalf("expected no employees to be created")
	}
}

func TestService_FindOrCreate_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	email := "not-an-email"
	_, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "5551234567", Email: &email})

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %v", err)
	}
	if verr.Fields()[0] != "email" {
		t.Fatalf("expected email violation, got %v", verr.Fields())
	}
}

func TestService_FindOrCreate_ConcurrentCreateResolvesToWinner(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.raceWinner = &Employee{ID: "emp-winner", Phone: "+15551234567"}
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	res, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "5551234567"})
	if err != nil {
		t.Fatalf("FindOrCreate returned error: %v", err)
	}
	if res.Employee.ID != "emp-winner" || !res.Found {
		t.Fatalf("expected winner row, got %+v", res)
	}
}

func TestService_GetEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "5551234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: " " + created.Employee.ID + " "})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if got.Phone != "+15551234567" {
		t.Fatalf("unexpected employee: %+v", got)
	}

	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: "missing"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "5551234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.Employee.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.Employee.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound on second delete, got %v", err)
	}
}

func TestService_FindOrCreate_FillsEmailOnExistingEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &stubClock{now: created}
	svc := NewService(repo, clock, nil)

	first, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Employee.Email != nil {
		t.Fatalf("expected no email yet, got %v", *first.Employee.Email)
	}

	later := created.Add(time.Hour)
	clock.now = later
	email := "Jane@Example.com"
	res, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "555-123-4567", Email: &email})
	if err != nil {
		t.Fatalf("FindOrCreate returned error: %v", err)
	}
	if !res.Found || res.Employee.ID != first.Employee.ID {
		t.Fatalf("expected existing employee, got %+v", res)
	}
	if res.Employee.Email == nil || *res.Employee.Email != "jane@example.com" {
		t.Fatalf("expected email to be stored, got %v", res.Employee.Email)
	}
	if !res.Employee.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, res.Employee.UpdatedAt)
	}

	stored, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: first.Employee.ID})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if stored.Email == nil || *stored.Email != "jane@example.com" {
		t.Fatalf("email was not persisted: %v", stored.Email)
	}
}

func TestService_FindOrCreate_SameEmailSkipsWrite(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	email := "jane@example.com"
	if _, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567", Email: &email}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	same := " JANE@example.com "
	if _, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567", Email: &same}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.emailUpdates != 0 {
		t.Fatalf("expected no email writes, got %d", repo.emailUpdates)
	}
}

func TestService_FindOrCreate_InvalidEmailOnExistingEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := "jane-at-example"
	if _, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567", Email: &bad}); !errors.Is(err, validation.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.emailUpdates != 0 {
		t.Fatalf("invalid email must not be written")
	}
}

func TestService_UpdateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := created.Employee.ID

	updated, err := svc.UpdateEmail(context.Background(), UpdateEmailInput{ID: id, Email: "new@example.com"})
	if err != nil {
		t.Fatalf("UpdateEmail returned error: %v", err)
	}
	if updated.Email == nil || *updated.Email != "new@example.com" {
		t.Fatalf("unexpected email: %v", updated.Email)
	}

	cleared, err := svc.UpdateEmail(context.Background(), UpdateEmailInput{ID: id, Email: "  "})
	if err != nil {
		t.Fatalf("UpdateEmail returned error: %v", err)
	}
	if cleared.Email != nil {
		t.Fatalf("expected email to be cleared, got %v", *cleared.Email)
	}

	if _, err := svc.UpdateEmail(context.Background(), UpdateEmailInput{ID: id, Email: "nope"}); !errors.Is(err, validation.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateEmail(context.Background(), UpdateEmailInput{ID: " ", Email: "a@b.co"}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.UpdateEmail(context.Background(), UpdateEmailInput{ID: "emp-missing", Email: "a@b.co"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}
