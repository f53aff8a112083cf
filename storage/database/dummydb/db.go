// Package dummydb provides in-memory Repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/progress"
	"github.com/darisacademy/daris/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		enrollment *enrollmentTable
		progress   *progressTable
		payment    *paymentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		courses map[string]*course.Course
		lessons map[string]*course.Lesson
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enroll.Enrollment
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.LessonProgress
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{courses: make(map[string]*course.Course), lessons: make(map[string]*course.Lesson)},
		enrollment: &enrollmentTable{table: make(map[string]*enroll.Enrollment)},
		progress:   &progressTable{table: make(map[string]*progress.LessonProgress)},
		payment:    &paymentTable{table: make(map[string]*payment.Payment)},
	}
	return db, nil
}
