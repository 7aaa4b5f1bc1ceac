package main

import (
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"learnhub/config"
	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/services"
)

// Seeds the platform admin account and, with -demo, a demo instructor with
// a published course so a fresh environment has something to browse.
func main() {
	demo := flag.Bool("demo", false, "also create a demo instructor and course")
	adminEmail := flag.String("admin-email", "admin@learnhub.local", "platform admin email")
	adminPassword := flag.String("admin-password", "ChangeMe123!", "platform admin password")
	flag.Parse()

	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	admin := seedUser(*adminEmail, "Platform Admin", *adminPassword, models.RoleAdmin)
	log.Printf("Admin ready: %s (id=%d)", admin.Email, admin.ID)

	if !*demo {
		return
	}

	instructor := seedUser("instructor@learnhub.local", "Demo Instructor", "Instructor123!", models.RoleInstructor)
	log.Printf("Demo instructor ready: %s (id=%d)", instructor.Email, instructor.ID)

	var course courseModels.Course
	err := db.Where("instructor_id = ? AND title = ?", instructor.ID, "Getting Started with Go").First(&course).Error
	if err == nil {
		log.Printf("Demo course already exists (id=%d)", course.ID)
		return
	}

	course = courseModels.Course{
		InstructorID: instructor.ID,
		Title:        "Getting Started with Go",
		Description:  "A short demo course covering the basics of the Go programming language.",
		Category:     "programming",
		Level:        "BEGINNER",
		Price:        0,
		IsPublished:  true,
	}
	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("Failed to create demo course: %v", err)
	}

	lessons := []courseModels.Lesson{
		{CourseID: course.ID, Title: "Why Go", Content: "History and strengths of the language.", Duration: 10, OrderIndex: 1, IsFree: true},
		{CourseID: course.ID, Title: "Setting Up", Content: "Installing the toolchain and writing hello world.", Duration: 15, OrderIndex: 2},
		{CourseID: course.ID, Title: "Types and Functions", Content: "Structs, slices, maps and methods.", Duration: 25, OrderIndex: 3},
	}
	if err := db.Create(&lessons).Error; err != nil {
		log.Fatalf("Failed to create demo lessons: %v", err)
	}

	if err := services.RecalcContentStats(db, course.ID); err != nil {
		log.Fatalf("Failed to derive course stats: %v", err)
	}

	log.Printf("Demo course ready: %q (id=%d) with %d lessons", course.Title, course.ID, len(lessons))
}

// seedUser creates the account if the email is not taken yet and returns the
// row either way.
func seedUser(email, name, password, role string) models.User {
	db := database.Database.Db

	var user models.User
	if err := db.Unscoped().Where("email = ?", email).First(&user).Error; err == nil {
		return user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	user = models.User{
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
		IsActive:  true,
		LastLogin: &now,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user %s: %v", email, err)
	}

	return user
}
