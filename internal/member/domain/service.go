package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type CreateMemberRequest struct {
	FullName string     `json:"full_name" binding:"required"`
	Email    string     `json:"email" binding:"omitempty,email"`
	Phone    string     `json:"phone"`
	Address  string     `json:"address"`
	JoinedAt *time.Time `json:"joined_at"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// RegisterResponse carries the gateway order the frontend needs to
// collect the membership fee. The member stays pending until
// VerifyPayment succeeds.
type RegisterResponse struct {
	Member   Member `json:"member"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// VerifyPaymentRequest carries the checkout callback for a membership
// fee. The booked amount is the server-side configured fee, so the
// client does not send one.
type VerifyPaymentRequest struct {
	MemberID  string `json:"member_id" binding:"required"`
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type UpdateMemberRequest struct {
	ID       string
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Status   *string `json:"status"`
}

type ListMemberRequest struct {
	pagination.Pagination
	Status string `form:"status"`
	Email  string `form:"email"`
}

type ListMemberResponse struct {
	pagination.PageInfo
	Members []Member `json:"members"`
}

type ListMemberFilter struct {
	Status string
	Email  string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Member, error)
	List(ctx context.Context, db *gorm.DB, filter ListMemberFilter, page pagination.Pagination) ([]*Member, error)
	Update(ctx context.Context, db *gorm.DB, member *Member) error
}

type Service interface {
	// Register creates a pending member and opens a gateway order for
	// the membership fee.
	Register(context.Context, RegisterRequest) (RegisterResponse, error)
	// VerifyPayment checks the gateway signature, books the fee as a
	// financial record and activates the member in one transaction.
	VerifyPayment(context.Context, VerifyPaymentRequest) (Member, error)
	Create(context.Context, CreateMemberRequest) (Member, error)
	Update(context.Context, UpdateMemberRequest) (Member, error)
	List(context.Context, ListMemberRequest) (ListMemberResponse, error)
	GetByID(ctx context.Context, id string) (Member, error)
	// FindByEmail is a lookup used when attributing donations; a nil
	// member with nil error means no match.
	FindByEmail(ctx context.Context, email string) (*Member, error)
	IDCard(ctx context.Context, id string) ([]byte, error)
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrMemberNotFound      = errors.New("member_not_found")
	ErrMemberAlreadyActive = errors.New("member_already_active")
	ErrIDCardUnavailable   = errors.New("id_card_unavailable")
)
