package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-roster/core/student"
)

type (
	DB struct {
		student *studentTable
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[int]*student.Student
		pkSeq int
	}
)

func Open() *DB {
	return &DB{
		student: &studentTable{table: make(map[int]*student.Student)},
	}
}
