package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentModels "skillchain/models/payment"
	"skillchain/services/gateway"

	"gorm.io/gorm"
)

// Verification results reported to callers
const (
	VerifySuccess = "success"
	VerifyPending = "pending"
	VerifyFailed  = "failed"
	VerifyUnknown = "unknown"
)

type VerifyOutcome struct {
	Status      string                     `json:"status"`
	Reference   string                     `json:"reference"`
	CourseID    string                     `json:"courseId"`
	UserID      string                     `json:"userId"`
	Transaction *gateway.TransactionResult `json:"data"`
	Charge      *ChargeOutcome             `json:"-"`
}

// VerifyReference asks the gateway for the state of reference and records the
// charge when it succeeded. Anything short of success writes no payment or
// enrollment. Concurrent calls for one reference share a single gateway call.
func (s *Service) VerifyReference(ctx context.Context, reference string) (*VerifyOutcome, error) {
	v, err, shared := s.verifies.Do(reference, func() (any, error) {
		return s.verify(context.WithoutCancel(ctx), reference)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug().Str("reference", reference).Msg("verify shared with concurrent caller")
	}
	return v.(*VerifyOutcome), nil
}

// SessionOwner returns the user who opened the checkout for reference, or an
// empty string when no session was recorded for it.
func (s *Service) SessionOwner(ctx context.Context, reference string) (string, error) {
	var session paymentModels.PaymentSession
	err := s.db.WithContext(ctx).Select("user_id").Where("reference = ?", reference).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", reference, err)
	}
	return session.UserID, nil
}

func (s *Service) verify(ctx context.Context, reference string) (*VerifyOutcome, error) {
	txn, err := s.gw.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	meta := txn.ChargeMetadata()
	out := &VerifyOutcome{
		Reference:   reference,
		CourseID:    meta.CourseID,
		UserID:      meta.UserID,
		Transaction: txn,
	}

	switch txn.Status {
	case gateway.StatusSuccess:
		charge, err := s.RecordSuccessfulCharge(ctx, *txn)
		if err != nil {
			return nil, err
		}
		out.Status = VerifySuccess
		out.Charge = charge
		if charge.Payment != nil {
			out.CourseID = charge.Payment.CourseID
			out.UserID = charge.Payment.UserID
		}
	case gateway.StatusFailed, gateway.StatusAbandoned:
		if err := s.markFailed(ctx, reference); err != nil {
			return nil, err
		}
		out.Status = VerifyFailed
	case gateway.StatusPending, gateway.StatusOngoing:
		out.Status = VerifyPending
	default:
		out.Status = VerifyUnknown
	}
	return out, nil
}

// markFailed moves a pending session to failed. A missing or already settled
// session is left alone.
func (s *Service) markFailed(ctx context.Context, reference string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session paymentModels.PaymentSession
		err := tx.Where("reference = ?", reference).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load payment session: %w", err)
		}
		if session.Status != paymentModels.SessionPending {
			return nil
		}
		if err := transitionSession(tx, &session, paymentModels.SessionFailed); err != nil {
			return err
		}
		s.log.Info().Str("reference", reference).Msg("payment session failed")
		return nil
	})
}

// HandleWebhook authenticates a gateway delivery and records it when it is a
// successful charge. Other events are acknowledged and ignored, returning nil.
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*ChargeOutcome, error) {
	event, err := s.gw.ParseWebhook(rawBody, signature)
	if err != nil {
		return nil, err
	}
	if !event.IsChargeSuccess() {
		s.log.Debug().Str("event", event.Event).Msg("ignoring webhook event")
		return nil, nil
	}
	return s.RecordSuccessfulCharge(ctx, event.Data)
}

// ReconcileReport counts what a reconciliation pass found
type ReconcileReport struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Errors    int `json:"errors"`
}

// reconcileBatch bounds how many sessions one pass re-verifies
const reconcileBatch = 100

// ReconcilePending re-verifies sessions that stayed pending longer than
// olderThan, recovering charges whose webhook never arrived. Sessions are
// taken least recently checked first, so sessions that stay pending rotate
// to the back of the queue instead of starving newer ones.
func (s *Service) ReconcilePending(ctx context.Context, olderThan time.Duration) (*ReconcileReport, error) {
	var sessions []paymentModels.PaymentSession
	if err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", paymentModels.SessionPending, time.Now().Add(-olderThan)).
		Order("COALESCE(last_checked_at, created_at) asc, reference asc").
		Limit(reconcileBatch).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list pending sessions: %w", err)
	}

	report := &ReconcileReport{}
	for _, session := range sessions {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Checked++
		out, err := s.VerifyReference(ctx, session.Reference)
		if stampErr := s.markChecked(ctx, session.Reference); stampErr != nil {
			s.log.Warn().Err(stampErr).Str("reference", session.Reference).Msg("failed to stamp reconcile attempt")
		}
		if err != nil {
			report.Errors++
			s.log.Warn().Err(err).Str("reference", session.Reference).Msg("reconcile verify failed")
			continue
		}
		switch out.Status {
		case VerifySuccess:
			report.Completed++
		case VerifyFailed:
			report.Failed++
		default:
			report.Pending++
		}
	}

	if report.Checked > 0 {
		s.log.Info().
			Int("checked", report.Checked).
			Int("completed", report.Completed).
			Int("failed", report.Failed).
			Int("errors", report.Errors).
			Msg("reconciled pending payments")
	}
	return report, nil
}

// markChecked records a reconcile attempt on a session that is still pending.
func (s *Service) markChecked(ctx context.Context, reference string) error {
	return s.db.WithContext(ctx).
		Model(&paymentModels.PaymentSession{}).
		Where("reference = ? AND status = ?", reference, paymentModels.SessionPending).
		Updates(map[string]any{
			"last_checked_at": time.Now(),
			"check_attempts":  gorm.Expr("check_attempts + ?", 1),
		}).Error
}
