package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	// Repository persists student records on the server side.
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentByID(ctx context.Context, id int) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, f Form) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id int) (Student, error)
		Update(ctx context.Context, id int, f Form) (Student, error)
		Delete(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new record. The repository assigns the ID, the admission number is derived from it.
func (svc *Service) Create(ctx context.Context, f Form) (Student, error) {
	now := NowFunc().UTC()
	s := f.apply(Student{})
	if s.Status == "" {
		s.Status = StatusActive
	}
	s.AdmissionDate = now.Format(DateLayout)
	s.CreatedAt = now.Format(time.RFC3339)
	s.UpdatedAt = s.CreatedAt

	created, err := svc.repo.CreateStudent(ctx, s)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	if created.AdmissionNumber == "" {
		created.AdmissionNumber = AdmissionNumberFor(created.ID)
		if created, err = svc.repo.UpdateStudent(ctx, created); err != nil {
			return Student{}, errors.Wrap(err, "setting admission number")
		}
	}
	return created, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, f Form) (Student, error) {
	orig, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, f.Merge(orig))
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudentByID(ctx, id)
}
