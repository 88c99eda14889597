package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAborted   SessionStatus = "aborted"
	SessionStatusFailed    SessionStatus = "failed"
)

// Session is one played round of a protocol. Rows are append-only and
// never updated after creation.
type Session struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	PatientID       uuid.UUID     `db:"patient_id" json:"patient_id"`
	PrescriptionID  *uuid.UUID    `db:"prescription_id" json:"prescription_id,omitempty"`
	ProtocolID      string        `db:"protocol_id" json:"protocol_id"`
	ProtocolName    string        `db:"protocol_name" json:"protocol_name"`
	StartTime       time.Time     `db:"start_time" json:"start_time"`
	EndTime         time.Time     `db:"end_time" json:"end_time"`
	DurationSeconds float64       `db:"duration_seconds" json:"duration_seconds"`
	Score           float64       `db:"score" json:"score"`
	Accuracy        float64       `db:"accuracy" json:"accuracy"`
	Status          SessionStatus `db:"status" json:"status"`
	PerformanceData JSONMap       `db:"performance_data" json:"performance_data"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// SessionStats is the per-patient aggregate over all recorded sessions
type SessionStats struct {
	Count        int64   `db:"count" json:"count"`
	MeanAccuracy float64 `db:"mean_accuracy" json:"mean_accuracy"`
	MaxScore     float64 `db:"max_score" json:"max_score"`
}

type LogSessionRequest struct {
	PrescriptionID  *string                `json:"prescription_id" binding:"omitempty,uuid"`
	ProtocolID      string                 `json:"protocol_id" binding:"required"`
	ProtocolName    string                 `json:"protocol_name" binding:"required"`
	StartTime       time.Time              `json:"start_time" binding:"required"`
	EndTime         time.Time              `json:"end_time" binding:"required"`
	DurationSeconds float64                `json:"duration_seconds"`
	Score           float64                `json:"score"`
	Accuracy        float64                `json:"accuracy"`
	Status          string                 `json:"status" binding:"required"`
	PerformanceData map[string]interface{} `json:"performance_data"`
}
