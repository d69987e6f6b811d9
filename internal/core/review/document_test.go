package review

import (
	"testing"
	"time"

	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
)

func approvedForm() *i9.Form {
	completed := time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)
	return &i9.Form{
		ID:                "form-1",
		EmployeeID:        "emp-1",
		LastName:          "Doe",
		FirstName:         "Jane",
		Address:           "123 Main St",
		City:              "Springfield",
		State:             "il",
		ZipCode:           "62701",
		DateOfBirth:       "1990-05-15",
		SSN:               "123-45-6789",
		Email:             "jane@example.com",
		Phone:             "+15551234567",
		CitizenshipStatus: i9.CitizenshipUSCitizen,
		Status:            i9.StatusCompleted,
		CompletedAt:       &completed,
	}
}

func TestBuildDocument_Citizen(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	doc := BuildDocument(approvedForm(), Organization{
		Name:                "Acme",
		Address:             "1 Corp Way",
		City:                "Austin",
		State:               "TX",
		ZipCode:             "73301",
		RepresentativeName:  "Pat Lee",
		RepresentativeTitle: "HR Manager",
	}, now)

	cases := map[string]string{
		PDFLastName:           "Doe",
		PDFDateOfBirth:        "05151990",
		PDFSSN:                "123456789",
		PDFEmployeeSignature:  "Signed via voice on 03/04/2025",
		PDFEmployeeSignedDate: "03042025",
		PDFEmployerName:       "Acme",
		PDFEmployerAddress:    "1 Corp Way, Austin, TX 73301",
		PDFEmployerRep:        "Pat Lee, HR Manager",
		PDFEmployerSignature:  "Pat Lee (Electronic Signature)",
		PDFEmployerSignedDate: "03102025",
	}
	for name, want := range cases {
		if got := doc.Text[name]; got != want {
			t.Errorf("Text[%q] = %q, want %q", name, got, want)
		}
	}
	if doc.Choices[PDFState] != "IL" {
		t.Fatalf("expected uppercased state choice, got %q", doc.Choices[PDFState])
	}
	if !doc.Checkboxes[PDFCitizen] || doc.Checkboxes[PDFAuthorizedAlien] {
		t.Fatalf("unexpected checkboxes: %+v", doc.Checkboxes)
	}
	if _, ok := doc.Text[PDFMiddleInitial]; ok {
		t.Fatalf("empty optional fields should be omitted")
	}
}

func TestBuildDocument_AuthorizedAlienDocumentPriority(t *testing.T) {
	t.Parallel()

	form := approvedForm()
	form.CitizenshipStatus = i9.CitizenshipAuthorizedAlien
	form.AlienExpirationDate = "2030-01-31"
	form.FormI94Number = "12345678901"
	form.ForeignPassportNumber = "X1234567"
	form.CountryOfIssuance = "Canada"

	doc := BuildDocument(form, Organization{}, time.Now().UTC())

	if doc.Text[PDFFormI94] != "12345678901" {
		t.Fatalf("expected I-94 number, got %q", doc.Text[PDFFormI94])
	}
	if _, ok := doc.Text[PDFForeignPassport]; ok {
		t.Fatalf("passport should not be written when I-94 is present")
	}
	if doc.Text[PDFAlienExpiration] != "01312030" {
		t.Fatalf("unexpected expiration: %q", doc.Text[PDFAlienExpiration])
	}
	if !doc.Checkboxes[PDFAuthorizedAlien] || doc.Checkboxes[PDFCitizen] {
		t.Fatalf("unexpected checkboxes: %+v", doc.Checkboxes)
	}
	if _, ok := doc.Text[PDFEmployerSignature]; ok {
		t.Fatalf("employer signature requires a representative")
	}
}

func TestBuildDocument_PermanentResident(t *testing.T) {
	t.Parallel()

	form := approvedForm()
	form.CitizenshipStatus = i9.CitizenshipLawfulPermanentResident
	form.USCISANumber = "A123456789"

	doc := BuildDocument(form, Organization{Name: "Acme"}, time.Now().UTC())
	if doc.Text[PDFResidentANumber] != "A123456789" {
		t.Fatalf("unexpected A-number: %q", doc.Text[PDFResidentANumber])
	}
	if _, ok := doc.Text[PDFAlienANumber]; ok {
		t.Fatalf("alien A-number should not be written for permanent residents")
	}
}
