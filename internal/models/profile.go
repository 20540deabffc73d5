package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student is the profile row of a learner.
type Student struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserRefID           uint       `gorm:"uniqueIndex;not null" json:"user_ref_id"`
	UserID              string     `gorm:"size:255;uniqueIndex;not null" json:"user_id"`
	Password            string     `gorm:"size:255;not null" json:"-"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	PhoneNumber         *string    `gorm:"size:32" json:"phone_number"`
	EmergencyContact    *string    `gorm:"size:32" json:"emergency_contact"`
	BirthDate           *time.Time `json:"birth_date"`
	Notes               *string    `gorm:"type:text" json:"notes"`
	RefundBankName      *string    `gorm:"size:64" json:"refund_bank_name"`
	RefundAccountNumber *string    `gorm:"size:64" json:"refund_account_number"`
	RefundAccountHolder *string    `gorm:"size:64" json:"refund_account_holder"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Teacher is the profile row of an instructor. A teacher belongs to at most one academy.
type Teacher struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	UserRefID         uint                        `gorm:"uniqueIndex;not null" json:"user_ref_id"`
	UserID            string                      `gorm:"size:255;uniqueIndex;not null" json:"user_id"`
	Password          string                      `gorm:"size:255;not null" json:"-"`
	Name              string                      `gorm:"size:255;not null" json:"name"`
	PhoneNumber       *string                     `gorm:"size:32" json:"phone_number"`
	Introduction      *string                     `gorm:"type:text" json:"introduction"`
	PhotoURL          *string                     `gorm:"size:512" json:"photo_url"`
	Education         datatypes.JSONSlice[string] `json:"education"`
	Specialties       datatypes.JSONSlice[string] `json:"specialties"`
	Certifications    datatypes.JSONSlice[string] `json:"certifications"`
	YearsOfExperience *int                        `json:"years_of_experience"`
	AvailableTimes    *string                     `gorm:"type:text" json:"available_times"`
	AcademyID         *uint                       `gorm:"index" json:"academy_id"`
	Classes           []Class                     `gorm:"foreignKey:TeacherID" json:"classes,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// Principal is the profile row of an academy owner.
type Principal struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserRefID     uint      `gorm:"uniqueIndex;not null" json:"user_ref_id"`
	UserID        string    `gorm:"size:255;uniqueIndex;not null" json:"user_id"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	PhoneNumber   *string   `gorm:"size:32" json:"phone_number"`
	Introduction  *string   `gorm:"type:text" json:"introduction"`
	PhotoURL      *string   `gorm:"size:512" json:"photo_url"`
	BankName      *string   `gorm:"size:64" json:"bank_name"`
	AccountNumber *string   `gorm:"size:64" json:"account_number"`
	AccountHolder *string   `gorm:"size:64" json:"account_holder"`
	Academy       *Academy  `gorm:"foreignKey:PrincipalID" json:"academy,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
