package privacy

import "time"

// Statutory retention periods, in years from the withdrawal date.
const (
	FinancialRetentionYears         = 5
	EnrollmentRetentionYears        = 5
	AttendanceRetentionYears        = 3
	TeacherActivityRetentionYears   = 3
	PrincipalActivityRetentionYears = 5
	// AnonymizedUserRetentionYears covers the longest-lived dependent record.
	AnonymizedUserRetentionYears = 5
)

// RetentionUntil returns the date after which a retained record may be purged.
func RetentionUntil(withdrawalDate time.Time, years int) time.Time {
	if years <= 0 {
		years = 1
	}
	return withdrawalDate.AddDate(years, 0, 0)
}
