package models

import "time"

// Catalog models
type Kategori struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Nama      string   `gorm:"size:100;not null;unique" json:"nama"`
	Deskripsi string   `gorm:"type:text" json:"deskripsi"`
	Produk    []Produk `gorm:"foreignKey:KategoriID" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Produk struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Kode         string         `gorm:"size:50;unique;not null;index" json:"kode"`
	Nama         string         `gorm:"size:200;not null" json:"nama"`
	Deskripsi    string         `gorm:"type:text" json:"deskripsi,omitempty"`
	HargaBeli    float64        `gorm:"not null" json:"harga_beli"`
	HargaJual    float64        `gorm:"not null" json:"harga_jual"`
	Stok         int            `gorm:"not null;default:0" json:"stok"`
	KategoriID   *uint          `gorm:"index" json:"kategori_id,omitempty"`
	Kategori     *Kategori      `gorm:"foreignKey:KategoriID" json:"-"`
	MinimalStok  int            `gorm:"not null;default:5" json:"minimal_stok"`
	Satuan       string         `gorm:"size:20;not null;default:'pcs'" json:"satuan"`
	HargaVariasi []HargaVariasi `gorm:"foreignKey:ProdukID;constraint:OnDelete:CASCADE" json:"harga_variasi"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HargaVariasi is a quantity price break: buying at least MinQty units gets
// Harga per unit instead of the product's standard HargaJual.
// Rows are kept sorted by ascending MinQty (see db.AutoMigrate ordering and
// the Preload order used by queries).
type HargaVariasi struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ProdukID   uint    `gorm:"not null;index" json:"produk_id"`
	MinQty     int     `gorm:"not null" json:"min_qty"`
	Harga      float64 `gorm:"not null" json:"harga"`
	Keterangan string  `gorm:"size:100" json:"keterangan,omitempty"`
}

// KasirView is the JSON shape consumed by the cashier screen.
type KasirView struct {
	ID           uint            `json:"id"`
	Kode         string          `json:"kode"`
	Nama         string          `json:"nama"`
	HargaJual    float64         `json:"harga_jual"`
	HargaVariasi []KasirViewTier `json:"harga_variasi"`
	Stok         int             `json:"stok"`
	Satuan       string          `json:"satuan"`
}

type KasirViewTier struct {
	MinQty int     `json:"min_qty"`
	Harga  float64 `json:"harga"`
}

func (p *Produk) ToKasirView() KasirView {
	tiers := make([]KasirViewTier, 0, len(p.HargaVariasi))
	for _, v := range p.HargaVariasi {
		tiers = append(tiers, KasirViewTier{MinQty: v.MinQty, Harga: v.Harga})
	}
	return KasirView{
		ID:           p.ID,
		Kode:         p.Kode,
		Nama:         p.Nama,
		HargaJual:    p.HargaJual,
		HargaVariasi: tiers,
		Stok:         p.Stok,
		Satuan:       p.Satuan,
	}
}
