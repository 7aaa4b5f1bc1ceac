package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/models"
)

func TestEnrollmentFlow(t *testing.T) {
	instructor, instructorToken := createUser(t, models.RoleInstructor)
	course := createPublishedCourse(t, instructor.ID, 2)
	_, studentToken := createUser(t, models.RoleStudent)

	path := fmt.Sprintf("/api/v1/course/%d/enroll", course.ID)

	resp, result := doRequest(t, "POST", path, instructorToken, nil)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "You cannot enroll in your own course!", result["message"])

	resp, result = doRequest(t, "POST", path, studentToken, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Enrolled in course successfully!", result["message"])
	data := dataMap(t, result)
	assert.Equal(t, "ENROLLED", data["status"])
	assert.Equal(t, 0.0, data["progress"])
	assert.Equal(t, 2.0, data["total_lessons"])

	resp, result = doRequest(t, "POST", path, studentToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "You are already enrolled in this course!", result["message"])

	got := reloadCourse(t, course.ID)
	assert.Equal(t, 1, got.TotalEnrollments)
	assert.Equal(t, 1, got.TotalStudents)

	// Drafts cannot be enrolled in
	resp, result = doRequest(t, "POST", "/api/v1/course", instructorToken, fiber.Map{
		"title":       "Unpublished draft",
		"description": "Not open for enrollment yet.",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	draftID := uint(dataMap(t, result)["ID"].(float64))

	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/v1/course/%d/enroll", draftID), studentToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLessonCompletionDrivesProgress(t *testing.T) {
	instructor, _ := createUser(t, models.RoleInstructor)
	course := createPublishedCourse(t, instructor.ID, 2)
	lessons := courseLessons(t, course.ID)
	_, token := createUser(t, models.RoleStudent)
	enroll(t, token, course.ID)

	resp, result := doRequest(t, "POST", fmt.Sprintf("/api/v1/course/lesson/%d/complete", lessons[0].ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lesson completed!", result["message"])
	data := dataMap(t, result)
	assert.Equal(t, 50.0, data["progress"])
	assert.Equal(t, 1.0, data["completed_lessons"])
	assert.Equal(t, "IN_PROGRESS", data["status"])

	// Completing the same lesson again changes nothing
	resp, result = doRequest(t, "POST", fmt.Sprintf("/api/v1/course/lesson/%d/complete", lessons[0].ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 50.0, dataMap(t, result)["progress"])

	resp, result = doRequest(t, "POST", fmt.Sprintf("/api/v1/course/lesson/%d/complete", lessons[1].ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = dataMap(t, result)
	assert.Equal(t, 100.0, data["progress"])
	assert.Equal(t, "COMPLETED", data["status"])
	assert.NotNil(t, data["completed_at"])
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	instructor, _ := createUser(t, models.RoleInstructor)
	course := createPublishedCourse(t, instructor.ID, 1)
	lessons := courseLessons(t, course.ID)
	_, token := createUser(t, models.RoleStudent)

	resp, result := doRequest(t, "POST", fmt.Sprintf("/api/v1/course/lesson/%d/complete", lessons[0].ID), token, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Enroll in the course before completing lessons!", result["message"])
}

func TestLearnView(t *testing.T) {
	instructor, _ := createUser(t, models.RoleInstructor)
	course := createPublishedCourse(t, instructor.ID, 2)
	lessons := courseLessons(t, course.ID)
	_, token := createUser(t, models.RoleStudent)

	path := fmt.Sprintf("/api/v1/course/%d/learn", course.ID)

	resp, result := doRequest(t, "GET", path, token, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Enroll in the course to access its content!", result["message"])

	enroll(t, token, course.ID)
	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/v1/course/lesson/%d/complete", lessons[0].ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result = doRequest(t, "GET", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)

	viewLessons := data["lessons"].([]interface{})
	require.Len(t, viewLessons, 2)
	first := viewLessons[0].(map[string]interface{})
	second := viewLessons[1].(map[string]interface{})
	assert.Equal(t, float64(lessons[0].ID), first["ID"])
	assert.Equal(t, true, first["completed"])
	assert.Equal(t, false, second["completed"])

	enrollment := data["enrollment"].(map[string]interface{})
	assert.Equal(t, 50.0, enrollment["progress"])
	assert.NotNil(t, enrollment["last_accessed_at"])
}

func TestEnrollmentStatus(t *testing.T) {
	instructor, _ := createUser(t, models.RoleInstructor)
	course := createPublishedCourse(t, instructor.ID, 1)
	_, token := createUser(t, models.RoleStudent)

	path := fmt.Sprintf("/api/v1/course/%d/enrollment", course.ID)

	resp, result := doRequest(t, "GET", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, dataMap(t, result)["enrolled"])

	enroll(t, token, course.ID)

	resp, result = doRequest(t, "GET", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)
	assert.Equal(t, true, data["enrolled"])
	assert.Equal(t, "ENROLLED", data["enrollment"].(map[string]interface{})["status"])
}

func TestMyEnrollmentsListsCourses(t *testing.T) {
	instructor, _ := createUser(t, models.RoleInstructor)
	courseA := createPublishedCourse(t, instructor.ID, 1)
	courseB := createPublishedCourse(t, instructor.ID, 1)
	_, token := createUser(t, models.RoleStudent)
	enroll(t, token, courseA.ID)
	enroll(t, token, courseB.ID)

	resp, result := doRequest(t, "GET", "/api/v1/user/enrollments?page=1&limit=10", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)
	enrollments := data["enrollments"].([]interface{})
	require.Len(t, enrollments, 2)
	entry := enrollments[0].(map[string]interface{})
	assert.NotEmpty(t, entry["course"].(map[string]interface{})["title"])
	assert.Equal(t, 2.0, data["pagination"].(map[string]interface{})["total"])
}
