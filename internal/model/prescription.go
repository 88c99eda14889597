package model

import (
	"github.com/google/uuid"
)

// Prescription binds a protocol and a validated config to a patient.
// Superseded prescriptions are kept with is_active = false; the partial
// unique index on (patient_id, protocol_id) WHERE is_active guarantees at
// most one active row per pair.
type Prescription struct {
	Base
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ProtocolID      string    `db:"protocol_id" json:"protocol_id"`
	ProtocolName    string    `db:"protocol_name" json:"protocol_name"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	Config          JSONMap   `db:"config" json:"config"`
	ClinicalNote    *string   `db:"clinical_note" json:"clinical_note,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
}

type PrescribeRequest struct {
	PatientID       string                 `json:"patient_id" binding:"required,uuid"`
	ProtocolID      string                 `json:"protocol_id" binding:"required"`
	DurationSeconds int                    `json:"duration_seconds" binding:"omitempty,min=60,max=3600"`
	Config          map[string]interface{} `json:"config"`
	ClinicalNote    *string                `json:"clinical_note"`
}
