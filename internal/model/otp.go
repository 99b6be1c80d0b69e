package model

import (
	"context"
	"time"
)

// OTPDuration is the validity window of a one-time password from issuance.
const OTPDuration = 5 * time.Minute

// OTPRecordStore persists at most one OTP record per phone number.
type OTPRecordStore interface {
	// Upsert stores the record, replacing any prior record for the phone.
	Upsert(ctx context.Context, record OTPRecord) error
	// GetByPhone returns ErrOTPNotFound when no record exists for the phone.
	GetByPhone(ctx context.Context, phone string) (OTPRecord, error)
	// MarkUsed flags the record after a successful verification. The record
	// stays retrievable until Delete so the caller can verify-then-act.
	MarkUsed(ctx context.Context, phone string) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, phone string) error
}

// OTPRecord is an issued one-time password awaiting verification.
type OTPRecord struct {
	Phone     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
}
