package service

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/database"
	"github.com/noah-isme/academy-api/internal/models"
)

var fixedNow = time.Date(2025, time.June, 2, 10, 15, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func strPtr(value string) *string { return &value }

func uintPtr(value uint) *uint { return &value }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func today() time.Time {
	return time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 0, 0, 0, 0, time.UTC)
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, loginID, name string) models.User {
	t.Helper()
	user := models.User{UserID: loginID, Password: "$2a$10$original-hash", Name: name, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedStudent(t *testing.T, db *gorm.DB, loginID, name string) (models.User, models.Student) {
	t.Helper()
	user := seedUser(t, db, models.RoleStudent, loginID, name)
	student := models.Student{
		UserRefID:           user.ID,
		UserID:              user.UserID,
		Password:            user.Password,
		Name:                user.Name,
		PhoneNumber:         strPtr("010-1234-5678"),
		EmergencyContact:    strPtr("010-8765-4321"),
		Notes:               strPtr("peanut allergy"),
		RefundBankName:      strPtr("KB"),
		RefundAccountNumber: strPtr("110-123-456789"),
		RefundAccountHolder: strPtr(name),
	}
	require.NoError(t, db.Create(&student).Error)
	return user, student
}

func seedTeacher(t *testing.T, db *gorm.DB, loginID string, academyID *uint) (models.User, models.Teacher) {
	t.Helper()
	user := seedUser(t, db, models.RoleTeacher, loginID, "박선생")
	years := 7
	teacher := models.Teacher{
		UserRefID:         user.ID,
		UserID:            user.UserID,
		Password:          user.Password,
		Name:              user.Name,
		PhoneNumber:       strPtr("010-2222-3333"),
		Introduction:      strPtr("수학 전문 강사"),
		PhotoURL:          strPtr("https://res.cloudinary.com/academy/image/upload/v1/profiles/" + loginID + ".jpg"),
		Education:         []string{"서울대학교"},
		Specialties:       []string{"수학"},
		YearsOfExperience: &years,
		AcademyID:         academyID,
	}
	require.NoError(t, db.Create(&teacher).Error)
	return user, teacher
}

func seedPrincipal(t *testing.T, db *gorm.DB, loginID string) (models.User, models.Principal, models.Academy) {
	t.Helper()
	user := seedUser(t, db, models.RolePrincipal, loginID, "최원장")
	principal := models.Principal{
		UserRefID:     user.ID,
		UserID:        user.UserID,
		Password:      user.Password,
		Name:          user.Name,
		PhoneNumber:   strPtr("010-5555-6666"),
		BankName:      strPtr("Shinhan"),
		AccountNumber: strPtr("110-555-666777"),
		AccountHolder: strPtr(user.Name),
	}
	require.NoError(t, db.Create(&principal).Error)

	academy := models.Academy{
		Name:        "해법 수학학원",
		Code:        "CODE" + strings.ToUpper(loginID),
		PhoneNumber: strPtr("02-555-1234"),
		Address:     strPtr("서울시 강남구"),
		Description: strPtr("중등 수학 전문"),
		PrincipalID: principal.ID,
	}
	require.NoError(t, db.Create(&academy).Error)
	return user, principal, academy
}

func seedClass(t *testing.T, db *gorm.DB, academyID uint, teacherID *uint, endDate time.Time) (models.Class, models.ClassSession) {
	t.Helper()
	class := models.Class{
		AcademyID: academyID,
		TeacherID: teacherID,
		Name:      "중2 수학",
		StartDate: endDate.AddDate(0, -3, 0),
		EndDate:   endDate,
	}
	require.NoError(t, db.Create(&class).Error)

	session := models.ClassSession{ClassID: class.ID, Date: endDate, StartTime: "18:00", EndTime: "20:00"}
	require.NoError(t, db.Create(&session).Error)
	return class, session
}

func seedPayment(t *testing.T, db *gorm.DB, studentID, classID uint) models.Payment {
	t.Helper()
	paidAt := fixedNow.AddDate(0, -2, 0)
	payment := models.Payment{
		StudentID:     studentID,
		ClassID:       classID,
		Amount:        250000,
		Status:        models.PaymentStatusCompleted,
		Method:        "CARD",
		ReceiptNumber: strPtr("R-2025-0001"),
		PaidAt:        &paidAt,
	}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func seedRefund(t *testing.T, db *gorm.DB, studentID, paymentID uint, status models.RefundStatus) models.RefundRequest {
	t.Helper()
	refund := models.RefundRequest{
		StudentID:    studentID,
		PaymentID:    paymentID,
		RefundAmount: 50000,
		Reason:       "연락처 010-1234-5678 로 연락 주세요",
		Status:       status,
	}
	require.NoError(t, db.Create(&refund).Error)
	return refund
}

func seedEnrollment(t *testing.T, db *gorm.DB, studentID, sessionID uint, status models.EnrollmentStatus) models.SessionEnrollment {
	t.Helper()
	enrollment := models.SessionEnrollment{
		StudentID:  studentID,
		SessionID:  sessionID,
		Status:     status,
		EnrolledAt: fixedNow.AddDate(0, -1, 0),
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

func seedAttendance(t *testing.T, db *gorm.DB, studentID, sessionID uint) models.Attendance {
	t.Helper()
	attendance := models.Attendance{
		StudentID: studentID,
		SessionID: sessionID,
		Status:    models.AttendanceStatusPresent,
		CheckedAt: fixedNow.AddDate(0, -1, 0),
	}
	require.NoError(t, db.Create(&attendance).Error)
	return attendance
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
