package review

import (
	"strings"
	"time"

	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/validation"
)

// I-9 テンプレートの AcroForm 項目名です。
const (
	PDFLastName            = "Last Name (Family Name)"
	PDFFirstName           = "First Name Given Name"
	PDFMiddleInitial       = "Employee Middle Initial (if any)"
	PDFOtherLastNames      = "Employee Other Last Names Used (if any)"
	PDFAddress             = "Address Street Number and Name"
	PDFAptNumber           = "Apt Number (if any)"
	PDFCity                = "City or Town"
	PDFState               = "State"
	PDFZipCode             = "ZIP Code"
	PDFDateOfBirth         = "Date of Birth mmddyyyy"
	PDFSSN                 = "US Social Security Number"
	PDFEmail               = "Employees E-mail Address"
	PDFPhone               = "Telephone Number"
	PDFCitizen             = "CB_1"
	PDFNoncitizenNational  = "CB_2"
	PDFPermanentResident   = "CB_3"
	PDFAuthorizedAlien     = "CB_4"
	PDFResidentANumber     = "3 A lawful permanent resident Enter USCIS or ANumber"
	PDFAlienExpiration     = "Exp Date mmddyyyy"
	PDFAlienANumber        = "USCIS ANumber"
	PDFFormI94             = "Form I94 Admission Number"
	PDFForeignPassport     = "Foreign Passport Number and Country of IssuanceRow1"
	PDFEmployeeSignature   = "Signature of Employee"
	PDFEmployeeSignedDate  = "Today's Date mmddyyy"
	PDFEmployerName        = "Employers Business or Org Name"
	PDFEmployerAddress     = "Employers Business or Org Address"
	PDFEmployerRep         = "Last Name First Name and Title of Employer or Authorized Representative"
	PDFEmployerSignature   = "Signature of Employer or AR"
	PDFEmployerSignedDate  = "S2 Todays Date mmddyyyy"
	PDFFirstDayEmployed    = "FirstDayEmployed mmddyyyy"
	pdfDateLayout          = "01022006"
	signatureDisplayLayout = "01/02/2006"
)

// Organization は書類の雇用主欄に記載する組織情報です。
type Organization struct {
	Name                string
	Address             string
	City                string
	State               string
	ZipCode             string
	RepresentativeName  string
	RepresentativeTitle string
}

// Document は PDF テンプレートに流し込む項目の集合です。
// テンプレートにない項目名は描画側で無視されます。
type Document struct {
	Text       map[string]string
	Checkboxes map[string]bool
	Choices    map[string]string
}

// BuildDocument は承認済みフォームと組織情報から書類の項目を組み立てます。
func BuildDocument(form *i9.Form, org Organization, now time.Time) Document {
	doc := Document{
		Text:       make(map[string]string),
		Checkboxes: make(map[string]bool),
		Choices:    make(map[string]string),
	}

	// 必須項目は空でも書き込む
	doc.Text[PDFLastName] = form.LastName
	doc.Text[PDFFirstName] = form.FirstName
	doc.Text[PDFAddress] = form.Address
	doc.Text[PDFCity] = form.City
	doc.Text[PDFZipCode] = form.ZipCode
	doc.Text[PDFDateOfBirth] = pdfDate(form.DateOfBirth)
	doc.Text[PDFEmail] = form.Email
	doc.Text[PDFPhone] = form.Phone

	doc.setOptional(PDFMiddleInitial, form.MiddleInitial)
	doc.setOptional(PDFOtherLastNames, form.OtherLastNames)
	doc.setOptional(PDFAptNumber, form.AptNumber)
	doc.setOptional(PDFSSN, validation.DigitsOnly(form.SSN))
	if form.State != "" {
		doc.Choices[PDFState] = strings.ToUpper(form.State)
	}

	doc.Checkboxes[PDFCitizen] = form.CitizenshipStatus == i9.CitizenshipUSCitizen
	doc.Checkboxes[PDFNoncitizenNational] = form.CitizenshipStatus == i9.CitizenshipNoncitizenNational
	doc.Checkboxes[PDFPermanentResident] = form.CitizenshipStatus == i9.CitizenshipLawfulPermanentResident
	doc.Checkboxes[PDFAuthorizedAlien] = form.CitizenshipStatus == i9.CitizenshipAuthorizedAlien

	switch form.CitizenshipStatus {
	case i9.CitizenshipLawfulPermanentResident:
		doc.setOptional(PDFResidentANumber, form.USCISANumber)
	case i9.CitizenshipAuthorizedAlien:
		doc.setOptional(PDFAlienExpiration, pdfDate(form.AlienExpirationDate))
		switch {
		case form.USCISANumber != "":
			doc.Text[PDFAlienANumber] = form.USCISANumber
		case form.FormI94Number != "":
			doc.Text[PDFFormI94] = form.FormI94Number
		case form.ForeignPassportNumber != "" && form.CountryOfIssuance != "":
			doc.Text[PDFForeignPassport] = form.ForeignPassportNumber + " " + form.CountryOfIssuance
		}
	}

	signedAt := now
	signature := "Signed via voice"
	if form.CompletedAt != nil {
		signedAt = *form.CompletedAt
		signature = "Signed via voice on " + form.CompletedAt.Format(signatureDisplayLayout)
	}
	doc.Text[PDFEmployeeSignature] = signature
	doc.Text[PDFEmployeeSignedDate] = signedAt.Format(pdfDateLayout)

	doc.Text[PDFEmployerName] = org.Name
	doc.setOptional(PDFEmployerAddress, joinNonEmpty(", ",
		org.Address,
		org.City,
		strings.TrimSpace(org.State+" "+org.ZipCode),
	))
	doc.setOptional(PDFEmployerRep, joinNonEmpty(", ", org.RepresentativeName, org.RepresentativeTitle))
	if org.RepresentativeName != "" {
		doc.Text[PDFEmployerSignature] = org.RepresentativeName + " (Electronic Signature)"
	}
	doc.Text[PDFEmployerSignedDate] = now.Format(pdfDateLayout)
	doc.Text[PDFFirstDayEmployed] = ""

	return doc
}

func (d Document) setOptional(name, value string) {
	if value == "" {
		return
	}
	d.Text[name] = value
}

func pdfDate(value string) string {
	t, ok := validation.ParseDate(value)
	if !ok {
		return ""
	}
	return t.Format(pdfDateLayout)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
