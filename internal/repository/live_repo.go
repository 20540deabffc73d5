package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
)

// ClassStats summarises a class taught by a teacher.
type ClassStats struct {
	Class        models.Class
	SessionCount int
	StudentCount int
}

// LiveRepository reads the operational schema and applies masks to it.
type LiveRepository interface {
	GetUser(ctx context.Context, id uint) (models.User, error)
	GetStudentByUser(ctx context.Context, userRefID uint) (models.Student, error)
	GetTeacherByUser(ctx context.Context, userRefID uint) (models.Teacher, error)
	GetPrincipalByUser(ctx context.Context, userRefID uint) (models.Principal, error)

	ListStudentPayments(ctx context.Context, studentID uint) ([]models.Payment, error)
	ListStudentRefunds(ctx context.Context, studentID uint) ([]models.RefundRequest, error)
	ListStudentEnrollments(ctx context.Context, studentID uint) ([]models.SessionEnrollment, error)
	ListStudentAttendances(ctx context.Context, studentID uint) ([]models.Attendance, error)

	CountOngoingClassesByTeacher(ctx context.Context, teacherID uint, today time.Time) (int64, error)
	ListTeacherClassStats(ctx context.Context, teacherID uint) ([]ClassStats, error)

	CountOngoingClassesByAcademy(ctx context.Context, academyID uint, today time.Time) (int64, error)
	CountPendingRefundsByAcademy(ctx context.Context, academyID uint) (int64, error)
	CountPendingEnrollmentsByAcademy(ctx context.Context, academyID uint) (int64, error)
	ListAcademyRefundDecisions(ctx context.Context, academyID uint) ([]models.RefundRequest, error)
	ListAcademyRejectedEnrollments(ctx context.Context, academyID uint) ([]models.SessionEnrollment, error)
	ListAcademyTeachers(ctx context.Context, academyID uint) ([]models.Teacher, error)

	DetachAcademyStudents(ctx context.Context, academyID uint) (int64, error)
	DetachAcademyTeachers(ctx context.Context, academyID uint) (int64, error)

	MaskUser(ctx context.Context, id uint, mask privacy.UserMask) error
	MaskStudent(ctx context.Context, id uint, mask privacy.StudentMask) error
	MaskTeacher(ctx context.Context, id uint, mask privacy.TeacherMask) error
	MaskPrincipal(ctx context.Context, id uint, mask privacy.PrincipalMask) error
	MaskAcademy(ctx context.Context, id uint, mask privacy.AcademyMask) error
}

type liveRepository struct {
	db *gorm.DB
}

// NewLiveRepository constructs the live schema repository.
func NewLiveRepository(db *gorm.DB) LiveRepository {
	return &liveRepository{db: db}
}

func (r *liveRepository) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *liveRepository) GetStudentByUser(ctx context.Context, userRefID uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("user_ref_id = ?", userRefID).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *liveRepository) GetTeacherByUser(ctx context.Context, userRefID uint) (models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).Where("user_ref_id = ?", userRefID).First(&teacher).Error; err != nil {
		return models.Teacher{}, err
	}
	return teacher, nil
}

func (r *liveRepository) GetPrincipalByUser(ctx context.Context, userRefID uint) (models.Principal, error) {
	var principal models.Principal
	err := r.db.WithContext(ctx).
		Preload("Academy").
		Where("user_ref_id = ?", userRefID).
		First(&principal).Error
	if err != nil {
		return models.Principal{}, err
	}
	return principal, nil
}

func (r *liveRepository) ListStudentPayments(ctx context.Context, studentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *liveRepository) ListStudentRefunds(ctx context.Context, studentID uint) ([]models.RefundRequest, error) {
	var refunds []models.RefundRequest
	err := r.db.WithContext(ctx).
		Preload("Payment.Class").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&refunds).Error
	return refunds, err
}

func (r *liveRepository) ListStudentEnrollments(ctx context.Context, studentID uint) ([]models.SessionEnrollment, error) {
	var enrollments []models.SessionEnrollment
	err := r.db.WithContext(ctx).
		Preload("Session.Class").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *liveRepository) ListStudentAttendances(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	var attendances []models.Attendance
	err := r.db.WithContext(ctx).
		Preload("Session.Class").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&attendances).Error
	return attendances, err
}

func (r *liveRepository) CountOngoingClassesByTeacher(ctx context.Context, teacherID uint, today time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Class{}).
		Where("teacher_id = ?", teacherID).
		Where("end_date >= ?", today).
		Count(&count).Error
	return count, err
}

func (r *liveRepository) ListTeacherClassStats(ctx context.Context, teacherID uint) ([]ClassStats, error) {
	db := r.db.WithContext(ctx)

	var classes []models.Class
	if err := db.Preload("Sessions").Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&classes).Error; err != nil {
		return nil, err
	}

	stats := make([]ClassStats, 0, len(classes))
	for _, class := range classes {
		var students int64
		err := db.Model(&models.SessionEnrollment{}).
			Where("session_id IN (?)", db.Model(&models.ClassSession{}).Select("id").Where("class_id = ?", class.ID)).
			Distinct("student_id").
			Count(&students).Error
		if err != nil {
			return nil, err
		}

		stats = append(stats, ClassStats{
			Class:        class,
			SessionCount: len(class.Sessions),
			StudentCount: int(students),
		})
	}

	return stats, nil
}

func (r *liveRepository) CountOngoingClassesByAcademy(ctx context.Context, academyID uint, today time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Class{}).
		Where("academy_id = ?", academyID).
		Where("end_date >= ?", today).
		Count(&count).Error
	return count, err
}

func (r *liveRepository) CountPendingRefundsByAcademy(ctx context.Context, academyID uint) (int64, error) {
	db := r.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.RefundRequest{}).
		Where("payment_id IN (?)", r.academyPayments(db, academyID)).
		Where("status = ?", models.RefundStatusPending).
		Count(&count).Error
	return count, err
}

func (r *liveRepository) CountPendingEnrollmentsByAcademy(ctx context.Context, academyID uint) (int64, error) {
	db := r.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.SessionEnrollment{}).
		Where("session_id IN (?)", r.academySessions(db, academyID)).
		Where("status = ?", models.EnrollmentStatusPending).
		Count(&count).Error
	return count, err
}

func (r *liveRepository) ListAcademyRefundDecisions(ctx context.Context, academyID uint) ([]models.RefundRequest, error) {
	db := r.db.WithContext(ctx)

	var refunds []models.RefundRequest
	err := db.Preload("Payment.Class").
		Where("payment_id IN (?)", r.academyPayments(db, academyID)).
		Where("status IN ?", []models.RefundStatus{models.RefundStatusApproved, models.RefundStatusRejected, models.RefundStatusCompleted}).
		Order("id ASC").
		Find(&refunds).Error
	return refunds, err
}

func (r *liveRepository) ListAcademyRejectedEnrollments(ctx context.Context, academyID uint) ([]models.SessionEnrollment, error) {
	db := r.db.WithContext(ctx)

	var enrollments []models.SessionEnrollment
	err := db.Preload("Session.Class").
		Where("session_id IN (?)", r.academySessions(db, academyID)).
		Where("status = ?", models.EnrollmentStatusRejected).
		Order("id ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *liveRepository) ListAcademyTeachers(ctx context.Context, academyID uint) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := r.db.WithContext(ctx).
		Preload("Classes").
		Where("academy_id = ?", academyID).
		Order("id ASC").
		Find(&teachers).Error
	return teachers, err
}

func (r *liveRepository) DetachAcademyStudents(ctx context.Context, academyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("academy_id = ?", academyID).Delete(&models.AcademyStudent{})
	return result.RowsAffected, result.Error
}

func (r *liveRepository) DetachAcademyTeachers(ctx context.Context, academyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Teacher{}).
		Where("academy_id = ?", academyID).
		Update("academy_id", nil)
	return result.RowsAffected, result.Error
}

func (r *liveRepository) MaskUser(ctx context.Context, id uint, mask privacy.UserMask) error {
	return r.apply(ctx, &models.User{}, id, mask)
}

func (r *liveRepository) MaskStudent(ctx context.Context, id uint, mask privacy.StudentMask) error {
	return r.apply(ctx, &models.Student{}, id, mask)
}

func (r *liveRepository) MaskTeacher(ctx context.Context, id uint, mask privacy.TeacherMask) error {
	return r.apply(ctx, &models.Teacher{}, id, mask)
}

func (r *liveRepository) MaskPrincipal(ctx context.Context, id uint, mask privacy.PrincipalMask) error {
	return r.apply(ctx, &models.Principal{}, id, mask)
}

func (r *liveRepository) MaskAcademy(ctx context.Context, id uint, mask privacy.AcademyMask) error {
	return r.apply(ctx, &models.Academy{}, id, mask)
}

func (r *liveRepository) apply(ctx context.Context, model interface{}, id uint, mask privacy.ColumnSet) error {
	update := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(mask.Columns())
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *liveRepository) academyPayments(db *gorm.DB, academyID uint) *gorm.DB {
	return db.Model(&models.Payment{}).
		Select("payments.id").
		Joins("JOIN classes ON classes.id = payments.class_id").
		Where("classes.academy_id = ?", academyID)
}

func (r *liveRepository) academySessions(db *gorm.DB, academyID uint) *gorm.DB {
	return db.Model(&models.ClassSession{}).
		Select("class_sessions.id").
		Joins("JOIN classes ON classes.id = class_sessions.class_id").
		Where("classes.academy_id = ?", academyID)
}
