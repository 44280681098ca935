package models

import "time"

// Payment methods accepted at checkout.
const (
	PaymentTunai   = "tunai"
	PaymentQRIS    = "qris"
	PaymentEwallet = "ewallet"
	PaymentDebit   = "debit"
	PaymentHutang  = "hutang"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentTunai, PaymentQRIS, PaymentEwallet, PaymentDebit, PaymentHutang:
		return true
	}
	return false
}

// Transaksi is a completed sale. Rows are created once at checkout and never
// mutated afterwards; deleting a member nulls MemberID here rather than
// cascading, so sales history survives.
type Transaksi struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	KodeTransaksi   string          `gorm:"size:50;unique;not null" json:"kode_transaksi"`
	Tanggal         time.Time       `gorm:"index" json:"tanggal"`
	Subtotal        float64         `gorm:"not null;default:0" json:"subtotal"`
	DiscountPercent float64         `gorm:"default:0" json:"discount_percent"`
	DiscountAmount  float64         `gorm:"default:0" json:"discount_amount"`
	Total           float64         `gorm:"not null" json:"total"`
	Bayar           float64         `gorm:"not null" json:"bayar"`
	Kembalian       float64         `gorm:"not null" json:"kembalian"`
	PaymentMethod   string          `gorm:"size:20;default:'tunai'" json:"payment_method"`
	UserID          *uint           `json:"user_id,omitempty"`
	User            *User           `gorm:"foreignKey:UserID" json:"-"`
	MemberID        *uint           `gorm:"index" json:"member_id,omitempty"`
	Member          *Member         `gorm:"foreignKey:MemberID" json:"-"`
	MemberManual    string          `gorm:"size:100" json:"member_manual,omitempty"`
	PointsEarned    int             `gorm:"default:0" json:"points_earned"`
	Items           []TransaksiItem `gorm:"foreignKey:TransaksiID" json:"items"`
}

// TransaksiItem is one cart line, frozen at sale time: Harga is the unit
// price that applied then, not the product's current price.
type TransaksiItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	TransaksiID uint    `gorm:"not null;index" json:"transaksi_id"`
	ProdukID    uint    `gorm:"not null" json:"produk_id"`
	Produk      *Produk `gorm:"foreignKey:ProdukID" json:"-"`
	Jumlah      int     `gorm:"not null" json:"jumlah"`
	Harga       float64 `gorm:"not null" json:"harga"`
	Subtotal    float64 `gorm:"not null" json:"subtotal"`
}
