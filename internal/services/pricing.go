package services

import (
	"errors"
	"sort"

	"github.com/tokosembako/kasir-pos/internal/models"
)

// UnitPriceFor resolves the unit price for buying qty units of p.
// Tiers are scanned from the highest minimum quantity down; the first tier
// whose MinQty is satisfied wins. With no qualifying tier (or no tiers at
// all) the standard sale price applies. When two tiers share a MinQty the
// later one in storage order wins, matching historical rows created before
// duplicate minimums were rejected.
func UnitPriceFor(p *models.Produk, qty int) float64 {
	if len(p.HargaVariasi) > 0 {
		for i := len(p.HargaVariasi) - 1; i >= 0; i-- {
			if qty >= p.HargaVariasi[i].MinQty {
				return p.HargaVariasi[i].Harga
			}
		}
	}
	return p.HargaJual
}

var (
	ErrTierMinQty    = errors.New("min qty variasi harga harus lebih dari 0")
	ErrTierDuplicate = errors.New("min qty variasi harga tidak boleh duplikat")
)

// NormalizeTiers validates a tier set before it is saved and returns it
// sorted by ascending minimum quantity. Duplicate minimums are rejected
// rather than silently resolved.
func NormalizeTiers(tiers []models.HargaVariasi) ([]models.HargaVariasi, error) {
	seen := make(map[int]bool, len(tiers))
	for _, t := range tiers {
		if t.MinQty <= 0 {
			return nil, ErrTierMinQty
		}
		if seen[t.MinQty] {
			return nil, ErrTierDuplicate
		}
		seen[t.MinQty] = true
	}
	out := make([]models.HargaVariasi, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinQty < out[j].MinQty })
	return out, nil
}
