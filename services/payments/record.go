package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillchain/apperrors"
	"skillchain/database"
	paymentModels "skillchain/models/payment"
	"skillchain/services/enrollment"
	"skillchain/services/gateway"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChargeOutcome reports what recording a successful charge did. Recorded is
// false when the reference had already been recorded by an earlier delivery.
type ChargeOutcome struct {
	Payment  *paymentModels.Payment
	Enrolled *enrollment.Result
	Recorded bool
}

// amountTolerance absorbs float rounding between major and minor units
const amountTolerance = 0.005

// RecordSuccessfulCharge records txn exactly once. The session transition,
// the payment insert and the enrollment commit together or not at all, and
// the whole unit is safe to replay.
func (s *Service) RecordSuccessfulCharge(ctx context.Context, txn gateway.TransactionResult) (*ChargeOutcome, error) {
	if !txn.Succeeded() {
		return nil, apperrors.Transition("payment "+txn.Reference, txn.Status, gateway.StatusSuccess)
	}
	if txn.Reference == "" {
		return nil, fmt.Errorf("charge without reference: %w", apperrors.ErrNotFound)
	}

	var out *ChargeOutcome
	err := database.Retry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			out, err = s.recordTx(tx, txn)
			return err
		})
	})
	if err != nil {
		s.log.Error().Err(err).Str("reference", txn.Reference).Msg("recording charge failed")
		return nil, err
	}
	if out.Enrolled != nil {
		s.enroller.Confirm(out.Enrolled)
	}
	return out, nil
}

// purchase is what a charge pays for, taken from the stored session or,
// when the session is missing, from the metadata echoed by the gateway.
type purchase struct {
	UserID        string
	UserEmail     string
	CourseID      string
	InstructorID  string
	PlatformFee   float64
	CreatorAmount float64
	Currency      string
}

func (s *Service) recordTx(tx *gorm.DB, txn gateway.TransactionResult) (*ChargeOutcome, error) {
	p, err := s.resolvePurchase(tx, txn)
	if err != nil {
		return nil, err
	}

	paidAt := time.Now()
	if txn.PaidAt != nil {
		paidAt = *txn.PaidAt
	}

	payment := paymentModels.Payment{
		Reference:     txn.Reference,
		UserID:        p.UserID,
		CourseID:      p.CourseID,
		InstructorID:  p.InstructorID,
		Amount:        txn.AmountMajor(),
		PlatformFee:   p.PlatformFee,
		CreatorAmount: p.CreatorAmount,
		Currency:      p.Currency,
		Status:        gateway.StatusSuccess,
		Method:        txn.Channel,
		PaidAt:        paidAt,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(&payment)
	if res.Error != nil {
		return nil, fmt.Errorf("create payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var existing paymentModels.Payment
		if err := tx.Where("reference = ?", txn.Reference).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("load payment: %w", err)
		}
		s.log.Info().Str("reference", txn.Reference).Msg("charge already recorded")
		return &ChargeOutcome{Payment: &existing}, nil
	}

	enrolled, err := s.enroller.EnrollTx(tx, enrollment.EnrollRequest{
		UserID:        p.UserID,
		UserEmail:     p.UserEmail,
		CourseID:      p.CourseID,
		InstructorID:  p.InstructorID,
		CreatorAmount: p.CreatorAmount,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("reference", txn.Reference).
		Str("user_id", p.UserID).
		Str("course_id", p.CourseID).
		Float64("amount", payment.Amount).
		Bool("new_enrollment", enrolled.Created).
		Msg("charge recorded")

	return &ChargeOutcome{Payment: &payment, Enrolled: enrolled, Recorded: true}, nil
}

func (s *Service) resolvePurchase(tx *gorm.DB, txn gateway.TransactionResult) (*purchase, error) {
	var session paymentModels.PaymentSession
	err := tx.Where("reference = ?", txn.Reference).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		meta := txn.ChargeMetadata()
		if meta.CourseID == "" || meta.UserID == "" {
			return nil, fmt.Errorf("reference %s has no session or metadata: %w", txn.Reference, apperrors.ErrNotFound)
		}
		s.log.Warn().Str("reference", txn.Reference).Msg("no payment session, using charge metadata")
		return &purchase{
			UserID:        meta.UserID,
			UserEmail:     txn.Customer.Email,
			CourseID:      meta.CourseID,
			InstructorID:  meta.InstructorID,
			PlatformFee:   meta.PlatformFee,
			CreatorAmount: meta.CreatorAmount,
			Currency:      txn.Currency,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load payment session: %w", err)
	}

	if txn.AmountMajor()+amountTolerance < session.Amount {
		s.log.Error().
			Str("reference", txn.Reference).
			Float64("expected", session.Amount).
			Float64("paid", txn.AmountMajor()).
			Msg("charge amount below checkout amount")
		return nil, apperrors.ErrAmountMismatch
	}

	if err := transitionSession(tx, &session, paymentModels.SessionCompleted); err != nil {
		return nil, err
	}

	email := session.UserEmail
	if email == "" {
		email = txn.Customer.Email
	}
	return &purchase{
		UserID:        session.UserID,
		UserEmail:     email,
		CourseID:      session.CourseID,
		InstructorID:  session.InstructorID,
		PlatformFee:   session.PlatformFee,
		CreatorAmount: session.CreatorAmount,
		Currency:      session.Currency,
	}, nil
}

// transitionSession moves session to next. Only a row still in the expected
// state is updated, so two racing transitions cannot both apply.
func transitionSession(tx *gorm.DB, session *paymentModels.PaymentSession, next paymentModels.SessionStatus) error {
	if session.Status == next {
		return nil
	}
	if !session.Status.CanTransition(next) {
		return apperrors.Transition("payment session "+session.Reference, session.Status, next)
	}

	now := time.Now()
	updates := map[string]any{"status": next}
	if next == paymentModels.SessionCompleted {
		updates["completed_at"] = now
	}
	res := tx.Model(&paymentModels.PaymentSession{}).
		Where("reference = ? AND status = ?", session.Reference, session.Status).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update payment session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	session.Status = next
	if next == paymentModels.SessionCompleted {
		session.CompletedAt = &now
	}
	return nil
}
