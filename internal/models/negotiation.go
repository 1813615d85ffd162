package models

import "time"

// Negotiation records a buyer-vendor negotiation over one listing. The
// in-memory session is authoritative while it is open; this row mirrors its
// state for history and reporting.
type Negotiation struct {
	ID           string `gorm:"primaryKey;size:26"` // ULID
	CommodityID  string `gorm:"size:36;index"`
	Commodity    string `gorm:"size:64;not null"`
	Quantity     string `gorm:"size:32"`
	ListedPrice  int    `gorm:"not null"`
	CurrentPrice int    `gorm:"not null"`
	FinalPrice   *int
	Status       string `gorm:"size:16;default:active;index"` // active, accepted
	BuyerLang    string `gorm:"size:8"`
	VendorLang   string `gorm:"size:8"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AcceptedAt   *time.Time
	ClosedAt     *time.Time

	Messages []NegotiationMessage `gorm:"foreignKey:NegotiationID"`
}

// NegotiationMessage stores one chat message. Sequence is the per-session
// message ID and defines conversation order.
type NegotiationMessage struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	NegotiationID string  `gorm:"size:26;not null;uniqueIndex:idx_negotiation_seq"`
	Sequence      int     `gorm:"not null;uniqueIndex:idx_negotiation_seq"`
	Sender        string  `gorm:"size:16;not null"` // vendor, counterparty
	Lang          string  `gorm:"size:8"`
	Text          string  `gorm:"type:text;not null"`
	Translated    *string `gorm:"type:text"`
	CreatedAt     time.Time
}
