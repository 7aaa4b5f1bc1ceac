package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/models"
)

func TestAdminPlatformStats(t *testing.T) {
	instructor, instructorToken := createUser(t, models.RoleInstructor)
	_, adminToken := createUser(t, models.RoleAdmin)
	course := createPublishedCourse(t, instructor.ID, 1)
	_, studentToken := createUser(t, models.RoleStudent)
	enroll(t, studentToken, course.ID)

	resp, result := doRequest(t, "GET", "/api/v1/course/admin/stats", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)

	users := data["users"].(map[string]interface{})
	assert.GreaterOrEqual(t, users["total"].(float64), 3.0)
	courses := data["courses"].(map[string]interface{})
	assert.GreaterOrEqual(t, courses["published"].(float64), 1.0)
	enrollments := data["enrollments"].(map[string]interface{})
	assert.GreaterOrEqual(t, enrollments["total"].(float64), 1.0)
	assert.GreaterOrEqual(t, enrollments["today"].(float64), 1.0)
	assert.Contains(t, data, "engagement")
	assert.Contains(t, data, "certificates")

	// The dashboard is admin territory; /admin/stats must not fall through
	// to the :id matcher for anyone else
	resp, _ = doRequest(t, "GET", "/api/v1/course/admin/stats", instructorToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, _ = doRequest(t, "GET", "/api/v1/course/admin/stats", studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCourseDeleteRestorePurge(t *testing.T) {
	instructor, instructorToken := createUser(t, models.RoleInstructor)
	_, adminToken := createUser(t, models.RoleAdmin)
	course := createPublishedCourse(t, instructor.ID, 2)
	_, studentToken := createUser(t, models.RoleStudent)

	enroll(t, studentToken, course.ID)
	resp, _ := doRequest(t, "POST", fmt.Sprintf("/api/v1/course/%d/favorite", course.ID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/v1/course/%d/rating", course.ID), studentToken, fiber.Map{"rating": 5})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, reloadCourse(t, course.ID).FavoriteCount)

	// Purge before delete is refused
	resp, result := doRequest(t, "DELETE", fmt.Sprintf("/api/v1/course/%d/purge", course.ID), adminToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Soft delete the course before purging it!", result["message"])

	resp, result = doRequest(t, "DELETE", fmt.Sprintf("/api/v1/course/%d", course.ID), instructorToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Course deleted successfully!", result["message"])

	// Gone from reads, favorites dropped, ratings kept
	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/v1/course/%d", course.ID), instructorToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	got := reloadCourse(t, course.ID)
	assert.True(t, got.DeletedAt.Valid)
	assert.Equal(t, 0, got.FavoriteCount)
	assert.Equal(t, 1, got.TotalRatings)

	// Restore is admin only
	resp, _ = doRequest(t, "PATCH", fmt.Sprintf("/api/v1/course/%d/restore", course.ID), instructorToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, result = doRequest(t, "PATCH", fmt.Sprintf("/api/v1/course/%d/restore", course.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)
	assert.Equal(t, 2.0, data["total_lessons"])
	assert.Equal(t, 1.0, data["total_ratings"])
	assert.Equal(t, 0.0, data["favorite_count"])

	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/v1/course/%d", course.ID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Delete again and purge for good
	resp, _ = doRequest(t, "DELETE", fmt.Sprintf("/api/v1/course/%d", course.ID), instructorToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result = doRequest(t, "DELETE", fmt.Sprintf("/api/v1/course/%d/purge", course.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Course purged successfully!", result["message"])

	resp, _ = doRequest(t, "GET", fmt.Sprintf("/api/v1/course/%d", course.ID), adminToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = doRequest(t, "PATCH", fmt.Sprintf("/api/v1/course/%d/restore", course.ID), adminToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminCourseEnrollments(t *testing.T) {
	instructor, instructorToken := createUser(t, models.RoleInstructor)
	_, adminToken := createUser(t, models.RoleAdmin)
	course := createPublishedCourse(t, instructor.ID, 1)
	student, studentToken := createUser(t, models.RoleStudent)
	enroll(t, studentToken, course.ID)

	path := fmt.Sprintf("/api/v1/course/admin/%d/enrollments?page=1&limit=10", course.ID)

	resp, result := doRequest(t, "GET", path, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)
	assert.Equal(t, course.Title, data["course"].(map[string]interface{})["title"])
	assert.Equal(t, false, data["course"].(map[string]interface{})["deleted"])
	enrollments := data["enrollments"].([]interface{})
	require.Len(t, enrollments, 1)
	user := enrollments[0].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, student.Name, user["name"])

	// Soft-deleted courses stay auditable
	resp, _ = doRequest(t, "DELETE", fmt.Sprintf("/api/v1/course/%d", course.ID), instructorToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result = doRequest(t, "GET", path, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = dataMap(t, result)
	assert.Equal(t, true, data["course"].(map[string]interface{})["deleted"])
	assert.Len(t, data["enrollments"].([]interface{}), 1)
}

func TestInstructorCourseStats(t *testing.T) {
	instructor, instructorToken := createUser(t, models.RoleInstructor)
	_, otherToken := createUser(t, models.RoleInstructor)
	course := createPublishedCourse(t, instructor.ID, 1)

	_, finisherToken := createUser(t, models.RoleStudent)
	enroll(t, finisherToken, course.ID)
	completeCourse(t, finisherToken, course.ID)
	resp, _ := doRequest(t, "POST", fmt.Sprintf("/api/v1/course/%d/rating", course.ID), finisherToken, fiber.Map{"rating": 4})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	_, idlerToken := createUser(t, models.RoleStudent)
	enroll(t, idlerToken, course.ID)

	path := fmt.Sprintf("/api/v1/course/%d/stats", course.ID)

	resp, result := doRequest(t, "GET", path, instructorToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataMap(t, result)
	assert.Equal(t, float64(course.ID), data["course_id"])
	assert.Equal(t, 1.0, data["total_lessons"])

	enrollments := data["enrollments"].(map[string]interface{})
	assert.Equal(t, 2.0, enrollments["total"])
	assert.Equal(t, 1.0, enrollments["completed"])
	assert.Equal(t, 50.0, enrollments["completion_rate"])

	ratings := data["ratings"].(map[string]interface{})
	assert.Equal(t, 4.0, ratings["average"])
	assert.Equal(t, 1.0, ratings["total"])
	assert.Equal(t, 1.0, ratings["distribution"].(map[string]interface{})["4"])

	resp, result = doRequest(t, "GET", path, otherToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You can only manage your own courses!", result["message"])
}
