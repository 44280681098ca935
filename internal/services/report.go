package services

import (
	"sort"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/models"
)

type TopProduct struct {
	Nama     string  `json:"nama"`
	Subtotal float64 `json:"subtotal"`
}

type TopMember struct {
	Nama           string  `json:"nama"`
	TotalSpent     float64 `json:"total_spent"`
	TotalTransaksi int     `json:"total_transaksi"`
}

type SalesReport struct {
	TanggalMulai    string             `json:"tanggal_mulai"`
	TanggalSelesai  string             `json:"tanggal_selesai"`
	TotalPenjualan  float64            `json:"total_penjualan"`
	TotalKeuntungan float64            `json:"total_keuntungan"`
	TotalTransaksi  int                `json:"total_transaksi"`
	SalesByDate     map[string]float64 `json:"sales_by_date"`
	PaymentCount    map[string]int     `json:"payment_count"`
	TopProducts     []TopProduct       `json:"top_products"`
	TopMembers      []TopMember        `json:"top_members"`
	Transaksi       []models.Transaksi `json:"-"`
}

// ReportService aggregates sales over a date range (inclusive, YYYY-MM-DD).
type ReportService struct{ DB *gorm.DB }

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{DB: db} }

func (s *ReportService) SalesBetween(mulai, selesai string) (*SalesReport, error) {
	var list []models.Transaksi
	if err := s.DB.
		Where("date(tanggal) >= ? AND date(tanggal) <= ?", mulai, selesai).
		Preload("Items.Produk").
		Order("tanggal").
		Find(&list).Error; err != nil {
		return nil, err
	}

	rep := &SalesReport{
		TanggalMulai:   mulai,
		TanggalSelesai: selesai,
		SalesByDate:    map[string]float64{},
		PaymentCount:   map[string]int{},
		TotalTransaksi: len(list),
		Transaksi:      list,
	}
	productSales := map[string]float64{}
	for _, t := range list {
		rep.TotalPenjualan += t.Total
		rep.SalesByDate[t.Tanggal.Format("2006-01-02")] += t.Total
		method := t.PaymentMethod
		if method == "" {
			method = models.PaymentTunai
		}
		rep.PaymentCount[method]++
		for _, item := range t.Items {
			var hargaBeli float64
			var nama string
			if item.Produk != nil {
				hargaBeli = item.Produk.HargaBeli
				nama = item.Produk.Nama
			}
			rep.TotalKeuntungan += (item.Harga - hargaBeli) * float64(item.Jumlah)
			if nama != "" {
				productSales[nama] += item.Subtotal
			}
		}
	}

	for nama, sub := range productSales {
		rep.TopProducts = append(rep.TopProducts, TopProduct{Nama: nama, Subtotal: sub})
	}
	sort.Slice(rep.TopProducts, func(i, j int) bool {
		if rep.TopProducts[i].Subtotal != rep.TopProducts[j].Subtotal {
			return rep.TopProducts[i].Subtotal > rep.TopProducts[j].Subtotal
		}
		return rep.TopProducts[i].Nama < rep.TopProducts[j].Nama
	})
	if len(rep.TopProducts) > 5 {
		rep.TopProducts = rep.TopProducts[:5]
	}

	rows := []struct {
		Nama           string
		TotalSpent     float64
		TotalTransaksi int
	}{}
	if err := s.DB.Model(&models.Member{}).
		Select("members.nama AS nama, SUM(transaksis.total) AS total_spent, COUNT(transaksis.id) AS total_transaksi").
		Joins("JOIN transaksis ON transaksis.member_id = members.id").
		Where("date(transaksis.tanggal) >= ? AND date(transaksis.tanggal) <= ?", mulai, selesai).
		Group("members.id, members.nama").
		Order("SUM(transaksis.total) DESC").
		Limit(25).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		rep.TopMembers = append(rep.TopMembers, TopMember{Nama: row.Nama, TotalSpent: row.TotalSpent, TotalTransaksi: row.TotalTransaksi})
	}
	return rep, nil
}
