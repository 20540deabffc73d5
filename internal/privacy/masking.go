package privacy

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Placeholders written over live rows of withdrawn accounts.
const (
	WithdrawnName               = "탈퇴한 사용자"
	WithdrawnAcademyName        = "폐업한 학원"
	WithdrawnAcademyPhone       = "000-0000-0000"
	WithdrawnAcademyAddress     = "주소 정보 없음"
	WithdrawnAcademyDescription = "원장 탈퇴로 운영이 종료된 학원입니다."
)

// WithdrawnUserIDPrefix marks login ids that were already masked.
const WithdrawnUserIDPrefix = "WITHDRAWN_USER_"

// ColumnSet is a complete replacement set for one live row.
type ColumnSet interface {
	Columns() map[string]interface{}
}

// UserMask replaces the identity columns of a User row.
type UserMask struct {
	UserID   string
	Password string
	Name     string
}

// Columns lists the User columns to overwrite.
func (m UserMask) Columns() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  m.UserID,
		"password": m.Password,
		"name":     m.Name,
	}
}

// StudentMask replaces a Student profile and clears every optional PII column.
type StudentMask struct {
	UserID   string
	Password string
	Name     string
}

// Columns lists the Student columns to overwrite, optional PII set to NULL.
func (m StudentMask) Columns() map[string]interface{} {
	return map[string]interface{}{
		"user_id":               m.UserID,
		"password":              m.Password,
		"name":                  m.Name,
		"phone_number":          nil,
		"emergency_contact":     nil,
		"birth_date":            nil,
		"notes":                 nil,
		"refund_bank_name":      nil,
		"refund_account_number": nil,
		"refund_account_holder": nil,
	}
}

// TeacherMask replaces a Teacher profile and detaches it from its academy.
type TeacherMask struct {
	UserID   string
	Password string
	Name     string
}

// Columns lists the Teacher columns to overwrite. JSON lists become empty arrays.
func (m TeacherMask) Columns() map[string]interface{} {
	return map[string]interface{}{
		"user_id":             m.UserID,
		"password":            m.Password,
		"name":                m.Name,
		"phone_number":        nil,
		"introduction":        nil,
		"photo_url":           nil,
		"education":           datatypes.JSONSlice[string]{},
		"specialties":         datatypes.JSONSlice[string]{},
		"certifications":      datatypes.JSONSlice[string]{},
		"years_of_experience": nil,
		"available_times":     nil,
		"academy_id":          nil,
	}
}

// PrincipalMask replaces a Principal profile including payout bank details.
type PrincipalMask struct {
	UserID   string
	Password string
	Name     string
}

// Columns lists the Principal columns to overwrite.
func (m PrincipalMask) Columns() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        m.UserID,
		"password":       m.Password,
		"name":           m.Name,
		"phone_number":   nil,
		"introduction":   nil,
		"photo_url":      nil,
		"bank_name":      nil,
		"account_number": nil,
		"account_holder": nil,
	}
}

// AcademyMask overwrites the public facing columns of an academy. The row is kept
// because historical classes still reference it.
type AcademyMask struct {
	Name        string
	PhoneNumber string
	Address     string
	Description string
}

// Columns lists the Academy columns to overwrite.
func (m AcademyMask) Columns() map[string]interface{} {
	return map[string]interface{}{
		"name":         m.Name,
		"phone_number": m.PhoneNumber,
		"address":      m.Address,
		"description":  m.Description,
	}
}

// Masker builds replacement sets. Every person mask carries a fresh password
// hash that no credential can match.
type Masker struct {
	hash func() (string, error)
}

// NewMasker constructs a masker backed by RandomPasswordHash.
func NewMasker() *Masker {
	return &Masker{hash: RandomPasswordHash}
}

// User masks the login identity as WITHDRAWN_USER_{id}.
func (m *Masker) User(id uint) (UserMask, error) {
	hash, err := m.hash()
	if err != nil {
		return UserMask{}, err
	}
	return UserMask{UserID: fmt.Sprintf("%s%d", WithdrawnUserIDPrefix, id), Password: hash, Name: WithdrawnName}, nil
}

// Student masks a student profile as WITHDRAWN_STUDENT_{id}.
func (m *Masker) Student(id uint) (StudentMask, error) {
	hash, err := m.hash()
	if err != nil {
		return StudentMask{}, err
	}
	return StudentMask{UserID: fmt.Sprintf("WITHDRAWN_STUDENT_%d", id), Password: hash, Name: WithdrawnName}, nil
}

// Teacher masks a teacher profile as WITHDRAWN_TEACHER_{id}.
func (m *Masker) Teacher(id uint) (TeacherMask, error) {
	hash, err := m.hash()
	if err != nil {
		return TeacherMask{}, err
	}
	return TeacherMask{UserID: fmt.Sprintf("WITHDRAWN_TEACHER_%d", id), Password: hash, Name: WithdrawnName}, nil
}

// Principal masks a principal profile as WITHDRAWN_PRINCIPAL_{id}.
func (m *Masker) Principal(id uint) (PrincipalMask, error) {
	hash, err := m.hash()
	if err != nil {
		return PrincipalMask{}, err
	}
	return PrincipalMask{UserID: fmt.Sprintf("WITHDRAWN_PRINCIPAL_%d", id), Password: hash, Name: WithdrawnName}, nil
}

// Academy has no credential, so it never fails.
func (m *Masker) Academy() AcademyMask {
	return AcademyMask{
		Name:        WithdrawnAcademyName,
		PhoneNumber: WithdrawnAcademyPhone,
		Address:     WithdrawnAcademyAddress,
		Description: WithdrawnAcademyDescription,
	}
}

// RandomPasswordHash bcrypt-hashes 32 bytes from crypto/rand that are discarded
// immediately, so the result cannot be used to log in.
func RandomPasswordHash() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("read random secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(secret)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash random secret: %w", err)
	}
	return string(hash), nil
}
