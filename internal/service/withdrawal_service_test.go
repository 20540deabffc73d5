package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

type recordingPhotoDeleter struct {
	urls []string
}

func (d *recordingPhotoDeleter) DeleteProfilePhoto(ctx context.Context, url *string) bool {
	if url != nil {
		d.urls = append(d.urls, *url)
	}
	return true
}

type recordingPublisher struct {
	events []WithdrawalEvent
}

func (p *recordingPublisher) PublishWithdrawn(ctx context.Context, event WithdrawalEvent) error {
	p.events = append(p.events, event)
	return nil
}

var errAttendanceInsert = errors.New("attendance insert failed")

type failingAttendanceStore struct {
	repository.RetentionRepository
}

func (failingAttendanceStore) InsertAttendances(context.Context, []models.AnonymizedAttendance) (int64, error) {
	return 0, errAttendanceInsert
}

// hookedUnitOfWork runs before inside the transaction and lets tests swap the retention store.
type hookedUnitOfWork struct {
	db        *gorm.DB
	before    func(tx *gorm.DB) error
	retention func(repository.RetentionRepository) repository.RetentionRepository
}

func (u hookedUnitOfWork) Within(ctx context.Context, fn func(stores repository.Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.before != nil {
			if err := u.before(tx); err != nil {
				return err
			}
		}
		var store repository.RetentionRepository = repository.NewRetentionRepository(tx)
		if u.retention != nil {
			store = u.retention(store)
		}
		return fn(repository.Stores{Live: repository.NewLiveRepository(tx), Retention: store})
	})
}

func newTestWithdrawalService(db *gorm.DB, deps WithdrawalDependencies) *withdrawalService {
	if deps.Live == nil {
		deps.Live = repository.NewLiveRepository(db)
	}
	if deps.UnitOfWork == nil {
		deps.UnitOfWork = repository.NewUnitOfWork(db)
	}
	svc := NewWithdrawalService(deps, WithdrawalOptions{MaxAttempts: 3}, testLogger()).(*withdrawalService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func requireWithdrawalError(t *testing.T, err error, sentinel error, kind WithdrawalErrorKind) {
	t.Helper()
	require.ErrorIs(t, err, sentinel)
	var withdrawalErr *WithdrawalError
	require.True(t, errors.As(err, &withdrawalErr))
	require.Equal(t, kind, withdrawalErr.Kind)
	require.NotEmpty(t, withdrawalErr.Message)
}

func TestWithdrawStudentMigratesHistoryAndMasksProfile(t *testing.T) {
	db := setupTestDB(t)
	_, _, academy := seedPrincipal(t, db, "owner")
	class, session := seedClass(t, db, academy.ID, nil, today().AddDate(0, 0, -7))
	user, student := seedStudent(t, db, "kim.student", "김민수")

	payment := seedPayment(t, db, student.ID, class.ID)
	seedRefund(t, db, student.ID, payment.ID, models.RefundStatusCompleted)
	seedEnrollment(t, db, student.ID, session.ID, models.EnrollmentStatusConfirmed)
	seedAttendance(t, db, student.ID, session.ID)

	publisher := &recordingPublisher{}
	svc := newTestWithdrawalService(db, WithdrawalDependencies{Events: publisher})

	err := svc.Withdraw(context.Background(), models.RoleStudent, user.ID, "<b>이사</b> 때문에")
	require.NoError(t, err)

	var anonymized models.AnonymizedUser
	require.NoError(t, db.First(&anonymized).Error)
	require.Regexp(t, `^ANON_STUDENT_\d+_[0-9A-Z]{8}$`, anonymized.AnonymousID)
	require.Equal(t, models.RoleStudent, anonymized.Role)
	require.True(t, anonymized.DataRetentionUntil.After(anonymized.WithdrawalDate))

	var payments []models.AnonymizedPayment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 1)
	require.Equal(t, anonymized.ID, payments[0].AnonymousUserID)
	require.True(t, payments[0].DataRetentionUntil.Equal(fixedNow.AddDate(5, 0, 0)))

	var refunds []models.AnonymizedRefund
	require.NoError(t, db.Find(&refunds).Error)
	require.Len(t, refunds, 1)
	require.True(t, refunds[0].DataRetentionUntil.Equal(fixedNow.AddDate(5, 0, 0)))
	require.NotContains(t, refunds[0].Reason, "1234-5678")

	var enrollments []models.AnonymizedSessionEnrollment
	require.NoError(t, db.Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	require.Equal(t, models.RetentionEnrollmentApproved, enrollments[0].Status)
	require.True(t, enrollments[0].DataRetentionUntil.Equal(fixedNow.AddDate(5, 0, 0)))

	var attendances []models.AnonymizedAttendance
	require.NoError(t, db.Find(&attendances).Error)
	require.Len(t, attendances, 1)
	require.True(t, attendances[0].DataRetentionUntil.Equal(fixedNow.AddDate(3, 0, 0)))

	var maskedUser models.User
	require.NoError(t, db.First(&maskedUser, user.ID).Error)
	require.Equal(t, fmt.Sprintf("WITHDRAWN_USER_%d", user.ID), maskedUser.UserID)
	require.Equal(t, privacy.WithdrawnName, maskedUser.Name)
	require.NotEqual(t, user.Password, maskedUser.Password)

	var maskedStudent models.Student
	require.NoError(t, db.First(&maskedStudent, student.ID).Error)
	require.Equal(t, fmt.Sprintf("WITHDRAWN_STUDENT_%d", student.ID), maskedStudent.UserID)
	require.Equal(t, privacy.WithdrawnName, maskedStudent.Name)
	require.Nil(t, maskedStudent.PhoneNumber)
	require.Nil(t, maskedStudent.EmergencyContact)
	require.Nil(t, maskedStudent.Notes)
	require.Nil(t, maskedStudent.RefundAccountNumber)

	var history models.WithdrawalHistory
	require.NoError(t, db.First(&history).Error)
	require.Equal(t, "kim.student", history.UserID)
	require.Equal(t, models.RoleStudent, history.Role)
	require.Equal(t, "이사 때문에", history.Reason)
	require.Equal(t, models.ReasonCategoryOther, history.ReasonCategory)

	require.Len(t, publisher.events, 1)
	require.Equal(t, anonymized.AnonymousID, publisher.events[0].AnonymousID)
	require.Equal(t, int64(1), publisher.events[0].Migrated["attendances"])
}

func TestWithdrawStudentWithoutHistory(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedStudent(t, db, "new.student", "이지은")

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	require.NoError(t, svc.Withdraw(context.Background(), models.RoleStudent, user.ID, ""))

	require.Equal(t, int64(1), countRows(t, db, &models.AnonymizedUser{}))
	require.Equal(t, int64(0), countRows(t, db, &models.AnonymizedPayment{}))
	require.Equal(t, int64(1), countRows(t, db, &models.WithdrawalHistory{}))
}

func TestWithdrawRejectsAlreadyWithdrawnUser(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedStudent(t, db, "gone.student", "박서연")

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	require.NoError(t, svc.Withdraw(context.Background(), models.RoleStudent, user.ID, ""))

	err := svc.Withdraw(context.Background(), models.RoleStudent, user.ID, "")
	requireWithdrawalError(t, err, ErrWithdrawalUserNotFound, WithdrawalNotFound)
	require.Equal(t, int64(1), countRows(t, db, &models.AnonymizedUser{}))
	require.Equal(t, int64(1), countRows(t, db, &models.WithdrawalHistory{}))
}

func TestWithdrawStoresReasonAsPlainText(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedStudent(t, db, "plain.student", "최유진")

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	require.NoError(t, svc.Withdraw(context.Background(), models.RoleStudent, user.ID, "<b>A & B</b>"))

	var history models.WithdrawalHistory
	require.NoError(t, db.First(&history).Error)
	require.Equal(t, "A & B", history.Reason)
}

func TestWithdrawRejectsUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWithdrawalService(db, WithdrawalDependencies{})

	err := svc.Withdraw(context.Background(), models.RoleStudent, 404, "")
	requireWithdrawalError(t, err, ErrWithdrawalUserNotFound, WithdrawalNotFound)
}

func TestWithdrawRejectsRoleMismatch(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedStudent(t, db, "kim.student", "김민수")
	svc := newTestWithdrawalService(db, WithdrawalDependencies{})

	err := svc.Withdraw(context.Background(), models.RoleTeacher, user.ID, "")
	requireWithdrawalError(t, err, ErrWithdrawalRoleMismatch, WithdrawalNotFound)
	require.Equal(t, int64(0), countRows(t, db, &models.AnonymizedUser{}))
}

func TestWithdrawRejectsMissingProfile(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleTeacher, "orphan", "홍길동")
	svc := newTestWithdrawalService(db, WithdrawalDependencies{})

	err := svc.Withdraw(context.Background(), models.RoleTeacher, user.ID, "")
	requireWithdrawalError(t, err, ErrWithdrawalProfileNotFound, WithdrawalNotFound)
}

func TestWithdrawRejectsUnsupportedRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWithdrawalService(db, WithdrawalDependencies{})

	err := svc.Withdraw(context.Background(), models.Role("ADMIN"), 1, "")
	require.ErrorIs(t, err, ErrUnsupportedWithdrawalRole)
}

func TestWithdrawTeacherRejectedWhileClassEndsTomorrow(t *testing.T) {
	db := setupTestDB(t)
	_, _, academy := seedPrincipal(t, db, "owner")
	user, teacher := seedTeacher(t, db, "park.teacher", uintPtr(academy.ID))
	seedClass(t, db, academy.ID, uintPtr(teacher.ID), today().AddDate(0, 0, 1))

	photos := &recordingPhotoDeleter{}
	svc := newTestWithdrawalService(db, WithdrawalDependencies{Photos: photos})

	err := svc.Withdraw(context.Background(), models.RoleTeacher, user.ID, "")
	requireWithdrawalError(t, err, ErrOngoingClasses, WithdrawalPreconditionFailed)

	var unchanged models.User
	require.NoError(t, db.First(&unchanged, user.ID).Error)
	require.Equal(t, "park.teacher", unchanged.UserID)
	require.Equal(t, int64(0), countRows(t, db, &models.AnonymizedUser{}))
	require.Empty(t, photos.urls)
}

func TestWithdrawTeacherRejectedWhileClassEndsToday(t *testing.T) {
	db := setupTestDB(t)
	_, _, academy := seedPrincipal(t, db, "owner")
	user, teacher := seedTeacher(t, db, "park.teacher", uintPtr(academy.ID))
	seedClass(t, db, academy.ID, uintPtr(teacher.ID), today())

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	err := svc.Withdraw(context.Background(), models.RoleTeacher, user.ID, "")
	require.ErrorIs(t, err, ErrOngoingClasses)
}

func TestWithdrawTeacherProceedsWhenClassesEnded(t *testing.T) {
	db := setupTestDB(t)
	_, _, academy := seedPrincipal(t, db, "owner")
	user, teacher := seedTeacher(t, db, "park.teacher", uintPtr(academy.ID))
	class, session := seedClass(t, db, academy.ID, uintPtr(teacher.ID), today().AddDate(0, 0, -1))
	_, student := seedStudent(t, db, "kim.student", "김민수")
	seedEnrollment(t, db, student.ID, session.ID, models.EnrollmentStatusAttended)

	photos := &recordingPhotoDeleter{}
	svc := newTestWithdrawalService(db, WithdrawalDependencies{Photos: photos})

	require.NoError(t, svc.Withdraw(context.Background(), models.RoleTeacher, user.ID, "은퇴"))

	var activities []models.AnonymizedTeacherActivity
	require.NoError(t, db.Find(&activities).Error)
	require.Len(t, activities, 1)
	require.Equal(t, class.ID, activities[0].SourceID)
	require.Equal(t, 1, activities[0].SessionCount)
	require.Equal(t, 1, activities[0].StudentCount)
	require.True(t, activities[0].DataRetentionUntil.Equal(fixedNow.AddDate(3, 0, 0)))

	var masked models.Teacher
	require.NoError(t, db.First(&masked, teacher.ID).Error)
	require.Equal(t, fmt.Sprintf("WITHDRAWN_TEACHER_%d", teacher.ID), masked.UserID)
	require.Nil(t, masked.AcademyID)
	require.Nil(t, masked.PhotoURL)
	require.Nil(t, masked.YearsOfExperience)
	require.Empty(t, masked.Education)
	require.Empty(t, masked.Specialties)

	require.Equal(t, []string{*teacher.PhotoURL}, photos.urls)
}

func TestWithdrawRollsBackWhenAttendanceMigrationFails(t *testing.T) {
	db := setupTestDB(t)
	_, _, academy := seedPrincipal(t, db, "owner")
	class, session := seedClass(t, db, academy.ID, nil, today().AddDate(0, 0, -7))
	user, student := seedStudent(t, db, "kim.student", "김민수")
	seedPayment(t, db, student.ID, class.ID)
	seedAttendance(t, db, student.ID, session.ID)

	uow := hookedUnitOfWork{
		db: db,
		retention: func(store repository.RetentionRepository) repository.RetentionRepository {
			return failingAttendanceStore{RetentionRepository: store}
		},
	}
	svc := newTestWithdrawalService(db, WithdrawalDependencies{UnitOfWork: uow})

	err := svc.Withdraw(context.Background(), models.RoleStudent, user.ID, "")
	require.ErrorIs(t, err, errAttendanceInsert)

	require.Equal(t, int64(0), countRows(t, db, &models.AnonymizedUser{}))
	require.Equal(t, int64(0), countRows(t, db, &models.AnonymizedPayment{}))
	require.Equal(t, int64(0), countRows(t, db, &models.WithdrawalHistory{}))

	var unchanged models.User
	require.NoError(t, db.First(&unchanged, user.ID).Error)
	require.Equal(t, "kim.student", unchanged.UserID)
	require.Equal(t, "김민수", unchanged.Name)

	var profile models.Student
	require.NoError(t, db.First(&profile, student.ID).Error)
	require.NotNil(t, profile.PhoneNumber)
}

func TestWithdrawPrincipalClosesAcademy(t *testing.T) {
	db := setupTestDB(t)
	user, principal, academy := seedPrincipal(t, db, "owner")
	_, teacher := seedTeacher(t, db, "park.teacher", uintPtr(academy.ID))
	class, session := seedClass(t, db, academy.ID, uintPtr(teacher.ID), today().AddDate(0, 0, -1))
	_, student := seedStudent(t, db, "kim.student", "김민수")
	require.NoError(t, db.Create(&models.AcademyStudent{AcademyID: academy.ID, StudentID: student.ID, JoinedAt: fixedNow}).Error)

	payment := seedPayment(t, db, student.ID, class.ID)
	seedRefund(t, db, student.ID, payment.ID, models.RefundStatusApproved)
	seedEnrollment(t, db, student.ID, session.ID, models.EnrollmentStatusRejected)

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	require.NoError(t, svc.Withdraw(context.Background(), models.RolePrincipal, user.ID, "폐업"))

	require.Equal(t, int64(0), countRows(t, db, &models.AcademyStudent{}))

	var detached models.Teacher
	require.NoError(t, db.First(&detached, teacher.ID).Error)
	require.Nil(t, detached.AcademyID)
	require.Equal(t, "park.teacher", detached.UserID)

	var masked models.Academy
	require.NoError(t, db.First(&masked, academy.ID).Error)
	require.Equal(t, privacy.WithdrawnAcademyName, masked.Name)
	require.Equal(t, privacy.WithdrawnAcademyAddress, *masked.Address)
	require.Equal(t, privacy.WithdrawnAcademyPhone, *masked.PhoneNumber)
	require.Equal(t, privacy.WithdrawnAcademyDescription, *masked.Description)
	require.Equal(t, academy.Code, masked.Code)

	var maskedPrincipal models.Principal
	require.NoError(t, db.First(&maskedPrincipal, principal.ID).Error)
	require.Equal(t, fmt.Sprintf("WITHDRAWN_PRINCIPAL_%d", principal.ID), maskedPrincipal.UserID)
	require.Nil(t, maskedPrincipal.AccountNumber)
	require.Nil(t, maskedPrincipal.BankName)

	var activities []models.AnonymizedPrincipalActivity
	require.NoError(t, db.Order("id ASC").Find(&activities).Error)
	require.Len(t, activities, 3)
	types := []models.PrincipalActivityType{activities[0].ActivityType, activities[1].ActivityType, activities[2].ActivityType}
	require.ElementsMatch(t, []models.PrincipalActivityType{
		models.PrincipalActivityRefundDecision,
		models.PrincipalActivityEnrollmentRejection,
		models.PrincipalActivityTeacherAffiliation,
	}, types)
	for _, activity := range activities {
		require.Equal(t, academy.ID, activity.AcademyID)
		require.True(t, activity.DataRetentionUntil.Equal(fixedNow.AddDate(5, 0, 0)))
	}
}

func TestWithdrawPrincipalRejectedWithPendingRefund(t *testing.T) {
	db := setupTestDB(t)
	user, _, academy := seedPrincipal(t, db, "owner")
	class, _ := seedClass(t, db, academy.ID, nil, today().AddDate(0, 0, -1))
	_, student := seedStudent(t, db, "kim.student", "김민수")
	payment := seedPayment(t, db, student.ID, class.ID)
	seedRefund(t, db, student.ID, payment.ID, models.RefundStatusPending)

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	err := svc.Withdraw(context.Background(), models.RolePrincipal, user.ID, "")
	requireWithdrawalError(t, err, ErrPendingRefunds, WithdrawalPreconditionFailed)

	var academyRow models.Academy
	require.NoError(t, db.First(&academyRow, academy.ID).Error)
	require.Equal(t, "해법 수학학원", academyRow.Name)
}

func TestWithdrawPrincipalRejectedWithPendingEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user, _, academy := seedPrincipal(t, db, "owner")
	_, session := seedClass(t, db, academy.ID, nil, today().AddDate(0, 0, -1))
	_, student := seedStudent(t, db, "kim.student", "김민수")
	seedEnrollment(t, db, student.ID, session.ID, models.EnrollmentStatusPending)

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	err := svc.Withdraw(context.Background(), models.RolePrincipal, user.ID, "")
	requireWithdrawalError(t, err, ErrPendingEnrollments, WithdrawalPreconditionFailed)
}

func TestWithdrawPrincipalRejectedWithOngoingClass(t *testing.T) {
	db := setupTestDB(t)
	user, _, academy := seedPrincipal(t, db, "owner")
	seedClass(t, db, academy.ID, nil, today().AddDate(0, 1, 0))

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	err := svc.Withdraw(context.Background(), models.RolePrincipal, user.ID, "")
	requireWithdrawalError(t, err, ErrOngoingClasses, WithdrawalPreconditionFailed)
}

func TestWithdrawRevalidatesInsideTransaction(t *testing.T) {
	db := setupTestDB(t)
	user, _, academy := seedPrincipal(t, db, "owner")
	class, _ := seedClass(t, db, academy.ID, nil, today().AddDate(0, 0, -1))
	_, student := seedStudent(t, db, "kim.student", "김민수")
	payment := seedPayment(t, db, student.ID, class.ID)

	// A refund request lands between the read phase and the transaction.
	uow := hookedUnitOfWork{
		db: db,
		before: func(tx *gorm.DB) error {
			return tx.Create(&models.RefundRequest{
				StudentID:    student.ID,
				PaymentID:    payment.ID,
				RefundAmount: 1000,
				Status:       models.RefundStatusPending,
			}).Error
		},
	}
	svc := newTestWithdrawalService(db, WithdrawalDependencies{UnitOfWork: uow})

	err := svc.Withdraw(context.Background(), models.RolePrincipal, user.ID, "")
	require.ErrorIs(t, err, ErrPendingRefunds)
	require.Equal(t, int64(0), countRows(t, db, &models.AnonymizedUser{}))
	require.Equal(t, int64(0), countRows(t, db, &models.RefundRequest{}))
}

func TestWithdrawRetriesAnonymousIDConflict(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.AnonymizedUser{
		AnonymousID:        "ANON_STUDENT_TAKEN",
		Role:               models.RoleStudent,
		WithdrawalDate:     fixedNow,
		DataRetentionUntil: fixedNow.AddDate(5, 0, 0),
	}).Error)
	user, _ := seedStudent(t, db, "kim.student", "김민수")

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	calls := 0
	svc.newAnonymousID = func(role models.Role, at time.Time) string {
		calls++
		if calls == 1 {
			return "ANON_STUDENT_TAKEN"
		}
		return privacy.NewAnonymousID(string(role), at)
	}

	require.NoError(t, svc.Withdraw(context.Background(), models.RoleStudent, user.ID, ""))
	require.Equal(t, 2, calls)
	require.Equal(t, int64(2), countRows(t, db, &models.AnonymizedUser{}))
	require.Equal(t, int64(1), countRows(t, db, &models.WithdrawalHistory{}))
}

func TestWithdrawGivesUpAfterRepeatedAnonymousIDConflicts(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.AnonymizedUser{
		AnonymousID:        "ANON_STUDENT_TAKEN",
		Role:               models.RoleStudent,
		WithdrawalDate:     fixedNow,
		DataRetentionUntil: fixedNow.AddDate(5, 0, 0),
	}).Error)
	user, _ := seedStudent(t, db, "kim.student", "김민수")

	svc := newTestWithdrawalService(db, WithdrawalDependencies{})
	calls := 0
	svc.newAnonymousID = func(models.Role, time.Time) string {
		calls++
		return "ANON_STUDENT_TAKEN"
	}

	err := svc.Withdraw(context.Background(), models.RoleStudent, user.ID, "")
	require.ErrorIs(t, err, repository.ErrAnonymousIDConflict)
	require.Equal(t, 3, calls)

	var unchanged models.User
	require.NoError(t, db.First(&unchanged, user.ID).Error)
	require.Equal(t, "kim.student", unchanged.UserID)
}

func TestWithdrawRejectedWhileGuardHeld(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := setupTestDB(t)
	user, _ := seedStudent(t, db, "kim.student", "김민수")
	require.NoError(t, server.Set(withdrawalLockKey(user.ID), "other-request"))

	svc := newTestWithdrawalService(db, WithdrawalDependencies{Guard: NewWithdrawalGuard(client, time.Minute, testLogger())})

	err = svc.Withdraw(context.Background(), models.RoleStudent, user.ID, "")
	requireWithdrawalError(t, err, ErrWithdrawalInProgress, WithdrawalPreconditionFailed)

	server.Del(withdrawalLockKey(user.ID))
	require.NoError(t, svc.Withdraw(context.Background(), models.RoleStudent, user.ID, ""))
	require.False(t, server.Exists(withdrawalLockKey(user.ID)))
}
