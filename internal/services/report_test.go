package services

import (
	"testing"
	"time"

	"github.com/tokosembako/kasir-pos/internal/models"
)

func TestSalesBetween(t *testing.T) {
	db := setupTestDB(t)
	beras := seedProduk(t, db, "BRS", 12000, 100)
	minyak := seedProduk(t, db, "MNY", 18000, 100)
	m := models.Member{Nama: "Siti"}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	mid := m.ID
	trx1 := models.Transaksi{KodeTransaksi: "TRX1", Tanggal: day1, Subtotal: 24000, Total: 24000, Bayar: 24000, PaymentMethod: "tunai", MemberID: &mid}
	if err := db.Create(&trx1).Error; err != nil {
		t.Fatalf("trx1: %v", err)
	}
	db.Create(&models.TransaksiItem{TransaksiID: trx1.ID, ProdukID: beras.ID, Jumlah: 2, Harga: 12000, Subtotal: 24000})
	trx2 := models.Transaksi{KodeTransaksi: "TRX2", Tanggal: day2, Subtotal: 18000, Total: 18000, Bayar: 20000, Kembalian: 2000, PaymentMethod: "qris"}
	if err := db.Create(&trx2).Error; err != nil {
		t.Fatalf("trx2: %v", err)
	}
	db.Create(&models.TransaksiItem{TransaksiID: trx2.ID, ProdukID: minyak.ID, Jumlah: 1, Harga: 18000, Subtotal: 18000})
	// Outside the range, must not be counted.
	trx3 := models.Transaksi{KodeTransaksi: "TRX3", Tanggal: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), Total: 99999, Bayar: 99999}
	db.Create(&trx3)

	rep, err := NewReportService(db).SalesBetween("2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.TotalTransaksi != 2 {
		t.Fatalf("expected 2 transactions got %d", rep.TotalTransaksi)
	}
	if rep.TotalPenjualan != 42000 {
		t.Fatalf("expected 42000 sales got %v", rep.TotalPenjualan)
	}
	// Profit: (12000-6000)*2 + (18000-9000)*1 = 21000.
	if rep.TotalKeuntungan != 21000 {
		t.Fatalf("expected 21000 profit got %v", rep.TotalKeuntungan)
	}
	if rep.PaymentCount["tunai"] != 1 || rep.PaymentCount["qris"] != 1 {
		t.Fatalf("unexpected payment counts %v", rep.PaymentCount)
	}
	if rep.SalesByDate["2025-06-01"] != 24000 {
		t.Fatalf("unexpected sales by date %v", rep.SalesByDate)
	}
	if len(rep.TopProducts) != 2 || rep.TopProducts[0].Nama != "Produk BRS" {
		t.Fatalf("unexpected top products %v", rep.TopProducts)
	}
	if len(rep.TopMembers) != 1 || rep.TopMembers[0].Nama != "Siti" || rep.TopMembers[0].TotalSpent != 24000 {
		t.Fatalf("unexpected top members %v", rep.TopMembers)
	}
}
