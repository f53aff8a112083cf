package main

import (
	"context"
	"time"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/user"
)

// seed loads sample data for local development: a teacher account and a
// couple of published courses with ordered lessons. Running it twice is a no-op.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()

	tchr, err := cli.usrRepo.GetUserByEmail(ctx, "teacher@daris.dev")
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		tchr = user.User{
			Name:      "Amina Diallo",
			Email:     "teacher@daris.dev",
			Role:      user.RoleTeacher,
			Bio:       "Software engineer and instructor.",
			CreatedAt: now,
			UpdatedAt: now,
		}
		tchr.SetActive(true)
		if err := tchr.SetPassword("demo1234"); err != nil {
			return err
		}
		if tchr, err = cli.usrRepo.CreateUser(ctx, tchr); err != nil {
			return err
		}
	}

	existing, err := cli.crsRepo.FilterCourses(ctx, course.QueryFilter{TeacherID: tchr.ID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Println("sample data already loaded; nothing to do")
		return nil
	}

	samples := []struct {
		course  course.Course
		lessons []course.Lesson
	}{
		{
			course: course.Course{
				TeacherID:   tchr.ID,
				Title:       "أساسيات البرمجة بلغة Python",
				Description: "مقدمة عملية إلى البرمجة بلغة Python للمبتدئين.",
				Category:    "programming",
				Level:       course.LevelBeginner,
				PriceCents:  1500,
			},
			lessons: []course.Lesson{
				{Title: "التعرف على بيئة العمل", DurationMins: 12, IsFree: true},
				{Title: "المتغيرات وأنواع البيانات", DurationMins: 18},
				{Title: "الجمل الشرطية والحلقات", DurationMins: 25},
			},
		},
		{
			course: course.Course{
				TeacherID:   tchr.ID,
				Title:       "Web Development with Go",
				Description: "Build and deploy HTTP services in Go.",
				Category:    "programming",
				Level:       course.LevelIntermediate,
				IsFree:      true,
			},
			lessons: []course.Lesson{
				{Title: "Project layout and tooling", DurationMins: 15, IsFree: true},
				{Title: "Routing and middleware", DurationMins: 22},
			},
		},
	}

	for _, s := range samples {
		crs := s.course
		crs.Status = course.StatusDraft
		crs.CreatedAt = now
		crs.UpdatedAt = now
		if crs, err = cli.crsRepo.CreateCourse(ctx, crs); err != nil {
			return err
		}
		for i, lsn := range s.lessons {
			lsn.CourseID = crs.ID
			lsn.OrderIndex = i + 1
			lsn.CreatedAt = now
			lsn.UpdatedAt = now
			if _, err = cli.crsRepo.CreateLesson(ctx, lsn); err != nil {
				return err
			}
		}
		if err = cli.crsRepo.RefreshCourseCounters(ctx, crs.ID); err != nil {
			return err
		}
		if _, err = cli.crsRepo.SetCourseStatus(ctx, crs.ID, course.StatusPublished); err != nil {
			return err
		}
		logger.Printf("seeded course %q with %d lessons\n", crs.Title, len(s.lessons))
	}
	return nil
}
