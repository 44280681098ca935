package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/models"
)

// Rejection is a validation failure carrying a user-facing message. Any other
// error out of Checkout is a system error whose detail stays in the log.
type Rejection struct{ Message string }

func (r *Rejection) Error() string { return r.Message }

func reject(format string, args ...any) error {
	return &Rejection{Message: fmt.Sprintf(format, args...)}
}

// AsRejection extracts the user-facing message when err is a Rejection.
func AsRejection(err error) (string, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Message, true
	}
	return "", false
}

type CheckoutItem struct {
	ProdukID uint
	Quantity int
	// Price is the unit price resolved when the cart was assembled. Checkout
	// trusts it rather than re-resolving against current tiers; the stored
	// line keeps whatever the cashier screen quoted.
	Price float64
}

type CheckoutInput struct {
	Items         []CheckoutItem
	Bayar         float64
	PaymentMethod string
	MemberID      uint // 0 means no registered member
	MemberManual  string
	UserID        uint
}

type CheckoutResult struct {
	Transaksi    models.Transaksi
	PointsEarned int
}

// CheckoutService persists carts. The DB handle is passed in explicitly and
// every checkout runs inside one database transaction.
type CheckoutService struct {
	DB *gorm.DB
	// OnCommit, when set, is invoked after a successful checkout (used to
	// trigger the opportunistic backup). It must not block.
	OnCommit func()

	now func() time.Time
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{DB: db, now: time.Now}
}

// Checkout validates the cart, recomputes the total server-side, decrements
// stock, and persists the transaction with its items. A Rejection leaves the
// database untouched; any other error means the enclosing transaction rolled
// back.
func (s *CheckoutService) Checkout(in CheckoutInput) (*CheckoutResult, error) {
	if len(in.Items) == 0 {
		return nil, reject("Keranjang kosong")
	}
	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentTunai
	}
	if !models.ValidPaymentMethod(method) {
		return nil, reject("Metode pembayaran tidak valid")
	}

	var member *models.Member
	if in.MemberID != 0 {
		var m models.Member
		if err := s.DB.First(&m, in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, reject("Member tidak ditemukan")
			}
			return nil, err
		}
		member = &m
	}

	// The total is always the recomputed subtotal; a client-declared total is
	// ignored (discount fields stay zero in this flow).
	var subtotal float64
	for _, it := range in.Items {
		if it.Quantity < 1 || it.Price < 0 {
			return nil, reject("Data item tidak valid")
		}
		subtotal += float64(it.Quantity) * it.Price
	}
	total := subtotal
	if in.Bayar < total {
		return nil, reject("Pembayaran kurang")
	}

	pointsEarned := 0
	if member != nil {
		pointsEarned = PointsForTotal(total)
	}

	now := s.now()
	trx := models.Transaksi{
		KodeTransaksi: "TRX" + now.Format("20060102150405"),
		Tanggal:       now,
		Subtotal:      subtotal,
		Total:         total,
		Bayar:         in.Bayar,
		Kembalian:     in.Bayar - total,
		PaymentMethod: method,
		PointsEarned:  pointsEarned,
	}
	if in.UserID != 0 {
		uid := in.UserID
		trx.UserID = &uid
	}
	if member != nil {
		mid := member.ID
		trx.MemberID = &mid
	} else if in.MemberManual != "" {
		trx.MemberManual = in.MemberManual
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			var produk models.Produk
			if err := tx.First(&produk, it.ProdukID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return reject("Produk tidak ditemukan")
				}
				return err
			}
			// Conditional decrement: the row is only touched when enough
			// stock remains, so concurrent checkouts cannot oversell.
			res := tx.Model(&models.Produk{}).
				Where("id = ? AND stok >= ?", it.ProdukID, it.Quantity).
				UpdateColumn("stok", gorm.Expr("stok - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return reject("Stok %s tidak cukup", produk.Nama)
			}
			item := models.TransaksiItem{
				TransaksiID: trx.ID,
				ProdukID:    it.ProdukID,
				Jumlah:      it.Quantity,
				Harga:       it.Price,
				Subtotal:    it.Price * float64(it.Quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			trx.Items = append(trx.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Loyalty award is a second commit, matching the observable two-step
	// behavior: a failed award never undoes the sale.
	if member != nil {
		if err := s.DB.Model(member).Updates(map[string]any{
			"points":      gorm.Expr("points + ?", pointsEarned),
			"total_spent": gorm.Expr("total_spent + ?", total),
		}).Error; err != nil {
			log.Printf("[Checkout] gagal update poin member %d: %v", member.ID, err)
		}
	}

	if s.OnCommit != nil {
		s.OnCommit()
	}
	return &CheckoutResult{Transaksi: trx, PointsEarned: pointsEarned}, nil
}
