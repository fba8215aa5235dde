package student

import (
	"strings"
	"unicode"
)

// Placeholders
const (
	PlaceholderNA           = "N/A"
	PlaceholderNotSpecified = "Not specified"
	PlaceholderNone         = "None"
)

// Display returns v, or placeholder when v is blank.
func Display(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

// Details is the display form of a record with per-field placeholders applied.
type Details struct {
	ID                int
	AdmissionNumber   string
	FullName          string
	ClassName         string
	Gender            string
	DateOfBirth       string
	ParentName        string
	ParentPhone       string
	ParentEmail       string
	Address           string
	BloodGroup        string
	Allergies         string
	MedicalConditions string
	Status            string
	StatusClass       string
	AdmissionDate     string
}

// DetailsOf applies the display placeholders of every field.
func DetailsOf(s Student) Details {
	return Details{
		ID:                s.ID,
		AdmissionNumber:   Display(s.AdmissionNumber, PlaceholderNA),
		FullName:          Display(s.FullName, PlaceholderNA),
		ClassName:         Display(s.ClassName, PlaceholderNA),
		Gender:            Display(s.Gender, PlaceholderNA),
		DateOfBirth:       Display(s.DateOfBirth, PlaceholderNA),
		ParentName:        Display(s.ParentName, PlaceholderNA),
		ParentPhone:       Display(s.ParentPhone, PlaceholderNA),
		ParentEmail:       Display(s.ParentEmail, PlaceholderNA),
		Address:           Display(s.Address, PlaceholderNotSpecified),
		BloodGroup:        Display(s.BloodGroup, PlaceholderNotSpecified),
		Allergies:         Display(s.Allergies, PlaceholderNone),
		MedicalConditions: Display(s.MedicalConditions, PlaceholderNone),
		Status:            Display(s.Status, PlaceholderNA),
		StatusClass:       StatusClass(s.Status),
		AdmissionDate:     Display(s.AdmissionDate, PlaceholderNA),
	}
}

// StatusClass returns the CSS class of a status: "status-active", "status-on-leave"...
func StatusClass(status string) string {
	words := strings.FieldsFunc(strings.ToLower(status), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return "status-unknown"
	}
	return "status-" + strings.Join(words, "-")
}
