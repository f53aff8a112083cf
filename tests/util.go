package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/enroll"
	"github.com/darisacademy/daris/core/payment"
	"github.com/darisacademy/daris/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	teacher user.User,
	title string,
	status course.Status,
	priceCents int64,
	createdAt ...time.Time,
) course.Course {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs := course.Course{
		TeacherID:   teacher.ID,
		Title:       title,
		Description: "A test course.",
		Category:    "programming",
		Level:       course.LevelBeginner,
		Status:      status,
		IsFree:      priceCents == 0,
		PriceCents:  priceCents,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateLesson(
	t *testing.T,
	repo course.Repository,
	crs course.Course,
	title string,
	orderIndex, durationMins int,
	isFree bool,
) course.Lesson {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	lsn := course.Lesson{
		CourseID:     crs.ID,
		Title:        title,
		OrderIndex:   orderIndex,
		DurationMins: durationMins,
		IsFree:       isFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	lsn, err := repo.CreateLesson(ctx, lsn)
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	if err = repo.RefreshCourseCounters(ctx, crs.ID); err != nil {
		t.Fatalf("RefreshCourseCounters() failed: %v", err)
	}
	return lsn
}

func CreateEnrollment(
	t *testing.T,
	repo enroll.Repository,
	crs course.Course,
	student user.User,
) enroll.Enrollment {
	t.Helper()

	enr, err := repo.UpsertEnrollment(context.Background(), enroll.Enrollment{
		CourseID:   crs.ID,
		StudentID:  student.ID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	usr user.User,
	crs course.Course,
	status payment.Status,
) payment.Payment {
	t.Helper()

	now := time.Now().UTC()
	pmt, err := repo.CreatePayment(context.Background(), payment.Payment{
		UserID:      usr.ID,
		CourseID:    crs.ID,
		AmountCents: crs.PriceCents,
		Currency:    "USD",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return pmt
}
