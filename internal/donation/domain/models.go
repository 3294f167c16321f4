package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	MethodGateway      = "gateway"
	MethodCash         = "cash"
	MethodCheque       = "cheque"
	MethodBankTransfer = "bank_transfer"

	StatusVerified = "verified"

	AnonymousDonor = "Anonymous"
)

// Donation is the financial record of a received contribution.
// TransactionReference is globally unique: the database constraint is
// the single authority on duplicates, so two concurrent submissions of
// the same gateway payment can never both land.
type Donation struct {
	ID                   snowflake.ID  `gorm:"primaryKey" json:"id"`
	CampaignID           *snowflake.ID `gorm:"index" json:"campaign_id,omitempty"`
	MemberID             *snowflake.ID `json:"member_id,omitempty"`
	DonorName            string        `gorm:"not null;default:'Anonymous'" json:"donor_name"`
	DonorEmail           string        `gorm:"not null;default:''" json:"donor_email"`
	Amount               int64         `gorm:"not null" json:"amount"`
	Currency             string        `gorm:"not null;default:'INR'" json:"currency"`
	Method               string        `gorm:"not null;default:'gateway'" json:"method"`
	TransactionReference string        `gorm:"not null;uniqueIndex" json:"transaction_reference"`
	GatewayOrderID       string        `gorm:"not null;default:''" json:"gateway_order_id,omitempty"`
	Status               string        `gorm:"not null;default:'verified'" json:"status"`
	Notes                string        `gorm:"not null;default:''" json:"notes,omitempty"`
	ReceivedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"received_at"`
	CreatedAt            time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
