package student

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-roster/core"
)

// Statuses
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const (
	DateLayout            = "2006-01-02"
	admissionNumberFormat = "STD%03d"
)

var NowFunc = time.Now // mockable

// Student is a student record as exchanged with the roster API and stored in the mirror.
type Student struct {
	ID                int    `json:"id" db:"id"`
	AdmissionNumber   string `json:"admissionNumber" db:"admission_number"`
	FullName          string `json:"fullName" db:"full_name"`
	ClassName         string `json:"className" db:"class_name"`
	Gender            string `json:"gender" db:"gender"`
	DateOfBirth       string `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	ParentName        string `json:"parentName" db:"parent_name"`
	ParentPhone       string `json:"parentPhone" db:"parent_phone"`
	ParentEmail       string `json:"parentEmail,omitempty" db:"parent_email"`
	Address           string `json:"address,omitempty" db:"address"`
	BloodGroup        string `json:"bloodGroup,omitempty" db:"blood_group"`
	Allergies         string `json:"allergies,omitempty" db:"allergies"`
	MedicalConditions string `json:"medicalConditions,omitempty" db:"medical_conditions"`
	Status            string `json:"status" db:"status"`
	AdmissionDate     string `json:"admissionDate,omitempty" db:"admission_date"` // YYYY-MM-DD; immutable once set
	CreatedAt         string `json:"createdAt,omitempty" db:"created_at"`         // RFC3339
	UpdatedAt         string `json:"updatedAt,omitempty" db:"updated_at"`         // RFC3339
}

// AdmissionNumberFor formats the client generated admission number of a record id.
func AdmissionNumberFor(id int) string {
	return fmt.Sprintf(admissionNumberFormat, id)
}

// IsActive reports whether the record status is Active (case-insensitive).
func (s Student) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), StatusActive)
}

// Form contains the partial record submitted by a form.
// A nil ID means create, otherwise the record with that ID is updated.
type Form struct {
	ID                *int   `json:"id,omitempty"`
	FullName          string `json:"fullName" validate:"required,notblank"`
	ClassName         string `json:"className" validate:"required,notblank"`
	Gender            string `json:"gender" validate:"required,notblank"`
	DateOfBirth       string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	ParentName        string `json:"parentName" validate:"required,notblank"`
	ParentPhone       string `json:"parentPhone" validate:"required,notblank"`
	ParentEmail       string `json:"parentEmail" validate:"omitempty,email"`
	Address           string `json:"address"`
	BloodGroup        string `json:"bloodGroup"`
	Allergies         string `json:"allergies"`
	MedicalConditions string `json:"medicalConditions"`
	Status            string `json:"status" validate:"omitempty,status"`
}

// Clean trims every field.
func (f *Form) Clean() {
	f.FullName = core.CleanString(f.FullName)
	f.ClassName = core.CleanString(f.ClassName)
	f.Gender = core.CleanString(f.Gender)
	f.DateOfBirth = core.CleanString(f.DateOfBirth)
	f.ParentName = core.CleanString(f.ParentName)
	f.ParentPhone = core.CleanString(f.ParentPhone)
	f.ParentEmail = core.CleanString(f.ParentEmail, true /* lower */)
	f.Address = core.CleanString(f.Address)
	f.BloodGroup = core.CleanString(f.BloodGroup)
	f.Allergies = core.CleanString(f.Allergies)
	f.MedicalConditions = core.CleanString(f.MedicalConditions)
	f.Status = normalizeStatus(f.Status)
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Clean()
	return validate.Struct(f)
}

// FormFrom pre-fills a Form with a record (edit mode).
func FormFrom(s Student) Form {
	id := s.ID
	return Form{
		ID:                &id,
		FullName:          s.FullName,
		ClassName:         s.ClassName,
		Gender:            s.Gender,
		DateOfBirth:       s.DateOfBirth,
		ParentName:        s.ParentName,
		ParentPhone:       s.ParentPhone,
		ParentEmail:       s.ParentEmail,
		Address:           s.Address,
		BloodGroup:        s.BloodGroup,
		Allergies:         s.Allergies,
		MedicalConditions: s.MedicalConditions,
		Status:            s.Status,
	}
}

// NewLocal synthesizes a record from a validated form, as done when the remote source cannot create it.
func (f Form) NewLocal(id int) Student {
	now := NowFunc().UTC()
	s := f.apply(Student{})
	s.ID = id
	s.AdmissionNumber = AdmissionNumberFor(id)
	if s.Status == "" {
		s.Status = StatusActive
	}
	s.AdmissionDate = now.Format(DateLayout)
	s.CreatedAt = now.Format(time.RFC3339)
	s.UpdatedAt = s.CreatedAt
	return s
}

// Merge applies a validated form on an existing record.
// ID, AdmissionNumber, AdmissionDate and CreatedAt are preserved.
func (f Form) Merge(orig Student) Student {
	s := f.apply(orig)
	if s.Status == "" {
		s.Status = orig.Status
	}
	s.UpdatedAt = NowFunc().UTC().Format(time.RFC3339)
	return s
}

func (f Form) apply(s Student) Student {
	s.FullName = f.FullName
	s.ClassName = f.ClassName
	s.Gender = f.Gender
	s.DateOfBirth = f.DateOfBirth
	s.ParentName = f.ParentName
	s.ParentPhone = f.ParentPhone
	s.ParentEmail = f.ParentEmail
	s.Address = f.Address
	s.BloodGroup = f.BloodGroup
	s.Allergies = f.Allergies
	s.MedicalConditions = f.MedicalConditions
	s.Status = f.Status
	return s
}

func normalizeStatus(status string) string {
	status = core.CleanString(status, true /* lower */)
	if status == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(status)
	return string(unicode.ToUpper(r)) + status[size:]
}
