package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

// Gateway is the slice of the payment gateway the donation flow needs.
type Gateway interface {
	VerifySignature(orderID, paymentID, signature string) bool
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (razorpay.Order, error)
}

type CreateOrderRequest struct {
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Currency   string `json:"currency"`
	CampaignID string `json:"campaign_id"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// VerifyRequest is the checkout callback. The signature covers
// order id and payment id; everything else is advisory until the
// digest checks out.
type VerifyRequest struct {
	OrderID    string `json:"razorpay_order_id" binding:"required"`
	PaymentID  string `json:"razorpay_payment_id" binding:"required"`
	Signature  string `json:"razorpay_signature" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Currency   string `json:"currency"`
	CampaignID string `json:"campaign_id"`
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`
}

type RecordManualRequest struct {
	Amount               int64      `json:"amount" binding:"required,gt=0"`
	Currency             string     `json:"currency"`
	Method               string     `json:"method" binding:"required,oneof=cash cheque bank_transfer"`
	CampaignID           string     `json:"campaign_id"`
	DonorName            string     `json:"donor_name"`
	DonorEmail           string     `json:"donor_email"`
	TransactionReference string     `json:"transaction_reference"`
	Notes                string     `json:"notes"`
	ReceivedAt           *time.Time `json:"received_at"`
}

type ListDonationRequest struct {
	pagination.Pagination
	CampaignID string     `form:"campaign_id"`
	Method     string     `form:"method"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02"`
}

type ListDonationResponse struct {
	pagination.PageInfo
	Donations []Donation `json:"donations"`
}

type ListDonationFilter struct {
	CampaignID *snowflake.ID
	Method     string
	StartAt    *time.Time
	EndAt      *time.Time
}

type CampaignStat struct {
	CampaignID  snowflake.ID `json:"campaign_id"`
	Title       string       `json:"title"`
	TotalAmount int64        `json:"total_amount"`
	Count       int64        `json:"count"`
}

type StatsResponse struct {
	TotalAmount   int64          `json:"total_amount"`
	TotalCount    int64          `json:"total_count"`
	ByCampaign    []CampaignStat `json:"by_campaign"`
	UnassignedSum int64          `json:"unassigned_sum"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, donation *Donation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Donation, error)
	FindByTransactionReference(ctx context.Context, db *gorm.DB, reference string) (*Donation, error)
	List(ctx context.Context, db *gorm.DB, filter ListDonationFilter, page pagination.Pagination) ([]*Donation, error)
	Stats(ctx context.Context, db *gorm.DB) (StatsResponse, error)
}

type Service interface {
	// CreateOrder registers a gateway order ahead of checkout.
	CreateOrder(context.Context, CreateOrderRequest) (CreateOrderResponse, error)
	// VerifyAndRecord validates the gateway signature and, in one
	// transaction, writes the donation row and bumps the campaign
	// counters. Certificate, receipt mail and audit trail are best
	// effort afterwards.
	VerifyAndRecord(context.Context, VerifyRequest) (Donation, error)
	// RecordManual books an offline donation through the same
	// transactional path, minus signature verification.
	RecordManual(context.Context, RecordManualRequest) (Donation, error)
	List(context.Context, ListDonationRequest) (ListDonationResponse, error)
	GetByID(ctx context.Context, id string) (Donation, error)
	Stats(ctx context.Context) (StatsResponse, error)
}

// FormatAmount renders a minor-unit amount for documents and mail.
func FormatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, amount/100, amount%100)
}

var (
	ErrInvalidSignature     = errors.New("invalid_signature")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidMethod        = errors.New("invalid_method")
	ErrDuplicateTransaction = errors.New("duplicate_transaction")
	ErrDonationNotFound     = errors.New("donation_not_found")
)
