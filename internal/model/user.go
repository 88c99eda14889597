package model

import (
	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

type IntakeStatus string

const (
	IntakeStatusPending    IntakeStatus = "pending"
	IntakeStatusAssigned   IntakeStatus = "assigned"
	IntakeStatusDischarged IntakeStatus = "discharged"
)

type VerificationStatus string

const (
	VerificationStatusIdle     VerificationStatus = "idle"
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// User is a platform account: patient, doctor or admin.
// AssignedDoctorID is owned by the intake coordinator once set.
type User struct {
	Base
	Name               string             `db:"name" json:"name"`
	Email              string             `db:"email" json:"email"`
	PasswordHash       string             `db:"password_hash" json:"-"`
	Role               Role               `db:"role" json:"role"`
	AssignedDoctorID   *uuid.UUID         `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	MedicalCondition   string             `db:"medical_condition" json:"medical_condition"`
	Severity           Severity           `db:"severity" json:"severity"`
	IntakeStatus       IntakeStatus       `db:"intake_status" json:"intake_status"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	LicenseNumber      *string            `db:"license_number" json:"license_number,omitempty"`
	Specialization     *string            `db:"specialization" json:"specialization,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TriageRequest struct {
	MedicalCondition string `json:"medical_condition" binding:"required"`
	Severity         string `json:"severity" binding:"required,oneof=low medium high"`
}

type ApplyDoctorRequest struct {
	LicenseNumber  string `json:"license_number" binding:"required"`
	Specialization string `json:"specialization" binding:"required"`
}

type ApproveDoctorRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type ClaimPatientRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
}
