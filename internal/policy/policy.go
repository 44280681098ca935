// Package policy is the authorization checkpoint for the two-role model:
// admins manage the catalog, users, settings, reports, and backups; kasir
// accounts can sell and browse but not mutate the catalog.
package policy

import "errors"

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Resource names a protected surface of the application.
type Resource string

const (
	ResourceProduk     Resource = "produk"
	ResourceKategori   Resource = "kategori"
	ResourceMember     Resource = "member"
	ResourceTransaksi  Resource = "transaksi"
	ResourceLaporan    Resource = "laporan"
	ResourcePengaturan Resource = "pengaturan"
	ResourceUser       Resource = "user"
	ResourceBackup     Resource = "backup"
)

var ErrUnauthorized = errors.New("unauthorized")

// adminOnly lists the resources whose every action is restricted to admins.
var adminOnly = map[Resource]bool{
	ResourceLaporan:    true,
	ResourcePengaturan: true,
	ResourceUser:       true,
	ResourceBackup:     true,
}

// mutationGated lists the resources any role may view/list but only admins
// may create, update, or delete.
var mutationGated = map[Resource]bool{
	ResourceProduk:   true,
	ResourceKategori: true,
}

// Can reports whether a user with the given role may perform action on
// resource. Unknown roles get nothing; unknown resources require only a
// logged-in user (the caller enforces authentication separately).
func Can(role string, action Action, resource Resource) bool {
	switch role {
	case "admin":
		return true
	case "kasir":
		if adminOnly[resource] {
			return false
		}
		if mutationGated[resource] {
			return action == ActionView || action == ActionList
		}
		return true
	}
	return false
}

// Authorize is the error-returning form of Can.
func Authorize(role string, action Action, resource Resource) error {
	if !Can(role, action, resource) {
		return ErrUnauthorized
	}
	return nil
}
