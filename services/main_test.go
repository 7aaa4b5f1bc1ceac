package services

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"learnhub/config"
	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{
		Port:       "3000",
		JWTKey:     "testsecret",
		SaltRound:  4,
		DBDriver:   "sqlite",
		SQLitePath: "file::memory:?cache=shared",
	}
	database.ConnectDb()

	// sqlite cannot take concurrent writers; one connection serializes them
	if sqlDB, err := database.Database.Db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	os.Exit(m.Run())
}

var seq uint32

func nextSeq() uint32 {
	return atomic.AddUint32(&seq, 1)
}

func newUser(t *testing.T, role string) models.User {
	t.Helper()
	n := nextSeq()
	user := models.User{
		Name:     fmt.Sprintf("User %d", n),
		Email:    fmt.Sprintf("user%d@test.local", n),
		Password: "not-a-real-hash",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, database.Database.Db.Create(&user).Error)
	return user
}

func newCourse(t *testing.T, instructorID uint) courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		InstructorID: instructorID,
		Title:        fmt.Sprintf("Course %d", nextSeq()),
		Description:  "test course",
		Category:     "testing",
		IsPublished:  true,
	}
	require.NoError(t, database.Database.Db.Create(&course).Error)
	return course
}

func newLesson(t *testing.T, courseID uint, duration int, order int) courseModels.Lesson {
	t.Helper()
	lesson := courseModels.Lesson{
		CourseID:   courseID,
		Title:      fmt.Sprintf("Lesson %d", nextSeq()),
		Duration:   duration,
		OrderIndex: order,
	}
	require.NoError(t, database.Database.Db.Create(&lesson).Error)
	return lesson
}

func newEnrollment(t *testing.T, userID, courseID uint) courseModels.Enrollment {
	t.Helper()
	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   courseModels.EnrollmentEnrolled,
	}
	require.NoError(t, database.Database.Db.Create(&enrollment).Error)
	return enrollment
}

func reloadCourse(t *testing.T, courseID uint) courseModels.Course {
	t.Helper()
	var course courseModels.Course
	require.NoError(t, database.Database.Db.Unscoped().First(&course, courseID).Error)
	return course
}
