package oauth2

import (
	"database/sql/driver"
	"slices"

	"github.com/goliatone/go-security/core"
)

// Supplier identifies an OAuth2 provider.
type Supplier string

const (
	SupplierGoogle   Supplier = "google"
	SupplierFacebook Supplier = "facebook"
	SupplierGitHub   Supplier = "github"
	SupplierLinkedIn Supplier = "linkedin"
	SupplierLocal    Supplier = "local"
)

var supplierCodec = core.NewEnumCodec(
	SupplierGoogle,
	SupplierFacebook,
	SupplierGitHub,
	SupplierLinkedIn,
	SupplierLocal,
)

// Suppliers returns every known supplier.
func Suppliers() []Supplier {
	return supplierCodec.Values()
}

func (s Supplier) String() string {
	return string(s)
}

// ParseSupplier returns the supplier named name.
func ParseSupplier(name string) (Supplier, error) {
	s, err := supplierCodec.Parse(name)
	if err != nil {
		return "", supplierNotImplemented(name)
	}
	return s, nil
}

// ParseSuppliers parses every name, failing on the first unknown one.
func ParseSuppliers(names []string) ([]Supplier, error) {
	out := make([]Supplier, 0, len(names))
	for _, name := range names {
		s, err := ParseSupplier(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CheckSupplierExists parses name and checks it is one of available.
func CheckSupplierExists(name string, available []Supplier) (Supplier, error) {
	s, err := ParseSupplier(name)
	if err != nil {
		return "", err
	}
	if !slices.Contains(available, s) {
		return "", supplierNotImplemented(name)
	}
	return s, nil
}

// Value implements driver.Valuer.
func (s Supplier) Value() (driver.Value, error) {
	return supplierCodec.ToDatabase(s)
}

// Scan implements sql.Scanner.
func (s *Supplier) Scan(src any) error {
	return supplierCodec.FromDatabase(src, s)
}
