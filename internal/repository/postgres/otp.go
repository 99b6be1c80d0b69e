package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

var _ model.OTPRecordStore = (*OTPRepository)(nil)

// OTPRepository persists OTP records in the otp_verifications table,
// one row per phone.
type OTPRepository struct {
	db *Connection
}

func NewOTPRepository(db *Connection) *OTPRepository {
	return &OTPRepository{
		db: db,
	}
}

func (r *OTPRepository) Upsert(ctx context.Context, record model.OTPRecord) error {
	query := `INSERT INTO otp_verifications (phone, otp, expires_at, used, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (phone) DO UPDATE
			  SET otp = EXCLUDED.otp, expires_at = EXCLUDED.expires_at,
			      used = EXCLUDED.used, created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query,
		record.Phone, record.Code, record.ExpiresAt, record.Used, record.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert OTP record: %w", err)
	}

	return nil
}

func (r *OTPRepository) GetByPhone(ctx context.Context, phone string) (model.OTPRecord, error) {
	var record model.OTPRecord
	query := `SELECT phone, otp, expires_at, used, created_at
			  FROM otp_verifications WHERE phone = $1`

	err := r.db.QueryRow(ctx, query, phone).Scan(
		&record.Phone, &record.Code, &record.ExpiresAt, &record.Used, &record.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OTPRecord{}, model.ErrOTPNotFound
		}
		return model.OTPRecord{}, fmt.Errorf("failed to get OTP record: %w", err)
	}

	return record, nil
}

func (r *OTPRepository) MarkUsed(ctx context.Context, phone string) error {
	query := `UPDATE otp_verifications SET used = TRUE WHERE phone = $1`

	_, err := r.db.Exec(ctx, query, phone)
	if err != nil {
		return fmt.Errorf("failed to mark OTP used: %w", err)
	}

	return nil
}

func (r *OTPRepository) Delete(ctx context.Context, phone string) error {
	query := `DELETE FROM otp_verifications WHERE phone = $1`

	_, err := r.db.Exec(ctx, query, phone)
	if err != nil {
		return fmt.Errorf("failed to delete OTP record: %w", err)
	}

	return nil
}

// PurgeExpired removes all records past their validity window. Intended for
// periodic cleanup; the verification path purges per phone on its own.
func (r *OTPRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM otp_verifications WHERE expires_at < NOW()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired OTP records: %w", err)
	}

	return tag.RowsAffected(), nil
}
