// Package payments turns gateway transactions into recorded payments and
// enrollments. Recording is keyed by the gateway reference so every delivery
// path (redirect verify, webhook, reconciliation) converges on one payment.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"skillchain/apperrors"
	"skillchain/database"
	"skillchain/logger"
	paymentModels "skillchain/models/payment"
	"skillchain/services/catalog"
	"skillchain/services/enrollment"
	"skillchain/services/gateway"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway is the part of the processor client the service needs
type Gateway interface {
	Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*gateway.TransactionResult, error)
	CreateSubaccount(ctx context.Context, req gateway.SubaccountRequest) (*gateway.SubaccountResult, error)
	ParseWebhook(rawBody []byte, signature string) (*gateway.Event, error)
}

type Options struct {
	Currency           string
	CallbackURL        string
	PlatformFeePercent float64
}

type Service struct {
	db       *gorm.DB
	gw       Gateway
	enroller *enrollment.Writer
	opts     Options
	verifies singleflight.Group
	log      zerolog.Logger
}

func NewService(db *gorm.DB, gw Gateway, enroller *enrollment.Writer, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = "NGN"
	}
	return &Service{
		db:       db,
		gw:       gw,
		enroller: enroller,
		opts:     opts,
		log:      logger.For("payments"),
	}
}

// NewReference returns a fresh checkout reference.
func NewReference() string {
	return "SKC-" + uuid.NewString()
}

// SplitFee divides price into the platform fee and the instructor's share, both rounded to cents.
func SplitFee(price, feePercent float64) (platformFee, creatorAmount float64) {
	platformFee = math.Round(price*feePercent) / 100
	creatorAmount = math.Round((price-platformFee)*100) / 100
	return platformFee, creatorAmount
}

type CheckoutRequest struct {
	UserID    string
	UserEmail string
	CourseID  string
}

type CheckoutResult struct {
	Reference        string  `json:"reference"`
	AuthorizationURL string  `json:"authorizationUrl"`
	AccessCode       string  `json:"accessCode,omitempty"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}

// InitializeCheckout opens a hosted checkout for a paid course and stores the
// pending session that links the reference to the purchase.
func (s *Service) InitializeCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	db := s.db.WithContext(ctx)

	course, err := catalog.GetCourse(db, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("course %s: %w", course.ID, apperrors.ErrNotFound)
	}
	if course.IsFree() {
		return nil, apperrors.ErrFreeCourse
	}
	// Enrolled learners cannot pay for the same course twice
	if _, err := enrollment.Find(db, req.UserID, course.ID); err == nil {
		return nil, fmt.Errorf("user %s already enrolled in %s: %w", req.UserID, course.ID, apperrors.ErrAlreadyExists)
	} else if !errors.Is(err, apperrors.ErrNotEnrolled) {
		return nil, err
	}

	currency := course.Currency
	if currency == "" {
		currency = s.opts.Currency
	}
	fee, creator := SplitFee(course.Price, s.opts.PlatformFeePercent)
	meta := gateway.ChargeMetadata{
		CourseID:      course.ID,
		UserID:        req.UserID,
		InstructorID:  course.InstructorID,
		CourseTitle:   course.Title,
		PlatformFee:   fee,
		CreatorAmount: creator,
	}

	initReq := gateway.InitializeRequest{
		Email:       req.UserEmail,
		AmountMinor: gateway.ToMinor(course.Price),
		Reference:   NewReference(),
		Currency:    currency,
		CallbackURL: s.opts.CallbackURL,
		Metadata:    meta,
	}

	var payout paymentModels.PayoutAccount
	err = db.Where("instructor_id = ?", course.InstructorID).First(&payout).Error
	switch {
	case err == nil:
		initReq.Subaccount = payout.SubaccountCode
		initReq.TransactionCharge = gateway.ToMinor(fee)
		initReq.Bearer = "account"
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load payout account: %w", err)
	}

	result, err := s.gw.Initialize(ctx, initReq)
	if err != nil {
		return nil, err
	}

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	session := paymentModels.PaymentSession{
		Reference:     result.Reference,
		UserID:        req.UserID,
		UserEmail:     req.UserEmail,
		CourseID:      course.ID,
		InstructorID:  course.InstructorID,
		Amount:        course.Price,
		PlatformFee:   fee,
		CreatorAmount: creator,
		Currency:      currency,
		Status:        paymentModels.SessionPending,
		Metadata:      rawMeta,
	}
	if err := database.Retry(ctx, func() error {
		return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&session).Error
	}); err != nil {
		return nil, fmt.Errorf("store payment session: %w", err)
	}

	s.log.Info().
		Str("reference", session.Reference).
		Str("user_id", req.UserID).
		Str("course_id", course.ID).
		Float64("amount", course.Price).
		Bool("split", initReq.Subaccount != "").
		Msg("checkout initialized")

	return &CheckoutResult{
		Reference:        result.Reference,
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Amount:           course.Price,
		Currency:         currency,
	}, nil
}

// CreatePayoutAccount registers the instructor's settlement account with the
// gateway and stores the subaccount code used to split later checkouts.
func (s *Service) CreatePayoutAccount(ctx context.Context, instructorID string, req gateway.SubaccountRequest) (*paymentModels.PayoutAccount, error) {
	if req.PercentageCharge == 0 {
		req.PercentageCharge = s.opts.PlatformFeePercent
	}
	sub, err := s.gw.CreateSubaccount(ctx, req)
	if err != nil {
		return nil, err
	}

	account := paymentModels.PayoutAccount{
		InstructorID:     instructorID,
		SubaccountCode:   sub.SubaccountCode,
		BusinessName:     req.BusinessName,
		BankCode:         req.BankCode,
		AccountNumber:    req.AccountNumber,
		PercentageCharge: req.PercentageCharge,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instructor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subaccount_code", "business_name", "bank_code", "account_number", "percentage_charge", "updated_at"}),
	}).Create(&account).Error
	if err != nil {
		return nil, fmt.Errorf("store payout account: %w", err)
	}
	return &account, nil
}
