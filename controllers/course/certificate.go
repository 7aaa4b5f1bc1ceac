package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"
	courseValidator "learnhub/validators/course"
)

// RequestCertificate submits a certificate request for a completed course.
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}
	if enrollment.Status != courseModels.EnrollmentCompleted {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Complete the course before requesting a certificate!", nil)
	}

	// A rejected request may be retried; pending and approved may not
	var existingRequest courseModels.CertificateRequest
	if err := db.Where("user_id = ? AND course_id = ? AND status IN ?", userID, courseID,
		[]string{courseModels.CertificatePending, courseModels.CertificateApproved}).
		First(&existingRequest).Error; err == nil {
		if existingRequest.Status == courseModels.CertificatePending {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate request already pending!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", nil)
	}

	var existingCert courseModels.Certificate
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existingCert).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", nil)
	}

	request := courseModels.CertificateRequest{
		UserID:       userID,
		CourseID:     courseID,
		EnrollmentID: enrollment.ID,
		Status:       courseModels.CertificatePending,
		RequestedAt:  time.Now(),
	}
	if err := db.Create(&request).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate request submitted successfully!", request)
}

// GetMyCertificates lists the caller's issued certificates and open
// requests.
func GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	type CertificateWithCourse struct {
		courseModels.Certificate
		CourseTitle string `json:"course_title"`
	}

	var certificates []courseModels.Certificate
	if err := db.Where("user_id = ?", userID).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		db.Unscoped().Select("title").First(&course, cert.CourseID)
		result[i] = CertificateWithCourse{Certificate: cert, CourseTitle: course.Title}
	}

	var pendingRequests []courseModels.CertificateRequest
	db.Where("user_id = ? AND status = ?", userID, courseModels.CertificatePending).Find(&pendingRequests)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates":     result,
		"pending_requests": pendingRequests,
	})
}

// AdminListCertificateRequests lists certificate requests for review,
// pending first.
func AdminListCertificateRequests(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPagination").(*courseValidator.PaginationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.CertificateRequest{})

	status := strings.ToUpper(c.Query("status", courseModels.CertificatePending))
	if status != "ALL" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	var requests []courseModels.CertificateRequest
	if err := db.Order("requested_at asc").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	type RequestWithDetail struct {
		courseModels.CertificateRequest
		StudentName  string  `json:"student_name"`
		StudentEmail string  `json:"student_email"`
		CourseTitle  string  `json:"course_title"`
		Progress     float64 `json:"progress"`
	}

	result := make([]RequestWithDetail, len(requests))
	for i, req := range requests {
		var student models.User
		database.Database.Db.Unscoped().Select("name, email").First(&student, req.UserID)
		var course courseModels.Course
		database.Database.Db.Unscoped().Select("title").First(&course, req.CourseID)
		var enrollment courseModels.Enrollment
		database.Database.Db.Select("progress").First(&enrollment, req.EnrollmentID)
		result[i] = RequestWithDetail{
			CertificateRequest: req,
			StudentName:        student.Name,
			StudentEmail:       student.Email,
			CourseTitle:        course.Title,
			Progress:           enrollment.Progress,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", fiber.Map{
		"requests": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminReviewCertificate approves or rejects a pending certificate request.
// Approval issues the certificate and emails the student.
func AdminReviewCertificate(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	requestID := c.Locals("requestID").(uint)

	reqData, ok := c.Locals("validatedCertificateReview").(*courseValidator.ReviewCertificateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var request courseModels.CertificateRequest
	if err := db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if request.Status != courseModels.CertificatePending {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate request has already been reviewed!", nil)
	}

	var student models.User
	db.Unscoped().First(&student, request.UserID)
	var course courseModels.Course
	db.Unscoped().First(&course, request.CourseID)

	now := time.Now()
	request.ReviewedAt = &now
	request.ReviewedBy = &adminID

	if reqData.Action == "REJECT" {
		request.Status = courseModels.CertificateRejected
		request.RejectionReason = reqData.Reason
		if err := db.Save(&request).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}

		utils.SendCertificateRejectedEmail(student.Email, student.Name, course.Title, reqData.Reason)

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected!", request)
	}

	certificate := courseModels.Certificate{
		UserID:            request.UserID,
		CourseID:          request.CourseID,
		CertificateNumber: "CERT-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12]),
		IssuedAt:          now,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return middleware.ErrorResponse(c, tx.Error)
	}
	request.Status = courseModels.CertificateApproved
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return middleware.ErrorResponse(c, err)
	}
	if err := tx.Create(&certificate).Error; err != nil {
		tx.Rollback()
		return middleware.ErrorResponse(c, err)
	}
	if err := tx.Commit().Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	utils.SendCertificateApprovedEmail(student.Email, student.Name, course.Title, certificate.CertificateNumber)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approved and issued!", fiber.Map{
		"request":     request,
		"certificate": certificate,
	})
}
