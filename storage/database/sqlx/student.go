package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core/student"
)

const studentColumns = `id, admission_number, full_name, class_name, gender, date_of_birth, parent_name,
	parent_phone, parent_email, address, blood_group, allergies, medical_conditions, status,
	admission_date, created_at, updated_at`

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO student (admission_number, full_name, class_name, gender, date_of_birth, parent_name,
		parent_phone, parent_email, address, blood_group, allergies, medical_conditions, status,
		admission_date, created_at, updated_at)
	VALUES (:admission_number, :full_name, :class_name, :gender, :date_of_birth, :parent_name,
		:parent_phone, :parent_email, :address, :blood_group, :allergies, :medical_conditions, :status,
		:admission_date, :created_at, :updated_at)
	RETURNING ` + studentColumns

	rows, err := sqlx.NamedQueryContext(ctx, repo.db, q, s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	defer func() { _ = rows.Close() }()

	var created student.Student
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return student.Student{}, errors.Wrap(err, "inserting student")
		}
		return student.Student{}, errors.New("inserting student: no row returned")
	}
	if err = rows.StructScan(&created); err != nil {
		return student.Student{}, errors.Wrap(err, "scanning student")
	}
	return created, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM student ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var s student.Student
	err := repo.db.GetContext(ctx, &s, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrapf(err, "getting student %d", id)
	}
	return s, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE student SET admission_number = :admission_number, full_name = :full_name,
		class_name = :class_name, gender = :gender, date_of_birth = :date_of_birth,
		parent_name = :parent_name, parent_phone = :parent_phone, parent_email = :parent_email,
		address = :address, blood_group = :blood_group, allergies = :allergies,
		medical_conditions = :medical_conditions, status = :status, updated_at = :updated_at
	WHERE id = :id`

	res, err := repo.db.NamedExecContext(ctx, q, s)
	if err != nil {
		return student.Student{}, errors.Wrapf(err, "updating student %d", s.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, s.ID)
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting student %d", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
