package models

import "time"

// Academy is owned by exactly one principal.
type Academy struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	PhoneNumber *string   `gorm:"size:32" json:"phone_number"`
	Address     *string   `gorm:"size:512" json:"address"`
	Description *string   `gorm:"type:text" json:"description"`
	PrincipalID uint      `gorm:"uniqueIndex;not null" json:"principal_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AcademyStudent links an enrolled student to an academy.
type AcademyStudent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AcademyID uint      `gorm:"uniqueIndex:idx_academy_student;not null" json:"academy_id"`
	StudentID uint      `gorm:"uniqueIndex:idx_academy_student;not null" json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Class is a course run by an academy over a date range.
type Class struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AcademyID uint           `gorm:"index;not null" json:"academy_id"`
	TeacherID *uint          `gorm:"index" json:"teacher_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	StartDate time.Time      `gorm:"not null" json:"start_date"`
	EndDate   time.Time      `gorm:"index;not null" json:"end_date"`
	Sessions  []ClassSession `gorm:"foreignKey:ClassID" json:"sessions,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ClassSession is a single scheduled meeting of a class.
type ClassSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"index;not null" json:"class_id"`
	Class     Class     `gorm:"foreignKey:ClassID" json:"-"`
	Date      time.Time `gorm:"not null" json:"date"`
	StartTime string    `gorm:"size:8" json:"start_time"`
	EndTime   string    `gorm:"size:8" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}
