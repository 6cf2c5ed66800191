package shipping

import (
	"strconv"
	"strings"

	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// Address is the normalized shipping destination projected out of order
// metadata. It is derived on demand and never written back as-is.
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ResolvedAddress pairs the normalized address with the metadata key it was
// read from.
type ResolvedAddress struct {
	Address   Address
	SourceKey string
}

// ResolveOptions tunes address validation per caller policy.
type ResolveOptions struct {
	RequireName bool
}

// Candidate keys in priority order. The metadata schema was never migrated,
// so older orders keep their address under legacy keys.
var addressSourceKeys = []string{"shipping_address", "shipping.shipping_address", "shippingAddress"}

// Field aliases accumulated across the system's life; Spanish keys come from
// the original storefront forms.
var (
	nameAliases     = []string{"name", "nombre", "full_name", "fullName"}
	phoneAliases    = []string{"phone", "telefono", "phone_number", "tel"}
	emailAliases    = []string{"email", "correo"}
	address1Aliases = []string{"address1", "address_1", "line1", "street", "calle", "direccion"}
	address2Aliases = []string{"address2", "address_2", "line2", "interior", "colonia"}
	cityAliases     = []string{"city", "ciudad", "municipality", "municipio", "alcaldia"}
	stateAliases    = []string{"state", "estado", "province", "provincia", "region"}
	postalAliases   = []string{"postal_code", "postalCode", "cp", "codigo_postal", "zip", "zip_code", "zipcode"}
	countryAliases  = []string{"country", "pais"}

	contactNameAliases = []string{"customer_name", "contact_name", "name"}
)

// ResolveAddress scans the candidate locations in priority order and returns
// the first one that normalizes to a complete address, or nil when none do.
func ResolveAddress(meta types.JSONMap, opts ResolveOptions) *ResolvedAddress {
	if meta == nil {
		return nil
	}
	for _, sourceKey := range addressSourceKeys {
		candidate := candidateAt(meta, sourceKey)
		if candidate == nil {
			continue
		}
		addr := normalizeAddress(candidate)
		if addr.Name == "" && opts.RequireName {
			addr.Name = firstAlias(meta, contactNameAliases)
		}
		if !addressComplete(addr, opts) {
			continue
		}
		return &ResolvedAddress{Address: addr, SourceKey: sourceKey}
	}
	return nil
}

func candidateAt(meta types.JSONMap, sourceKey string) types.JSONMap {
	if sourceKey == "shipping.shipping_address" {
		return meta.SubMap("shipping").SubMap("shipping_address")
	}
	return meta.SubMap(sourceKey)
}

func normalizeAddress(candidate types.JSONMap) Address {
	addr := Address{
		Name:       firstAlias(candidate, nameAliases),
		Phone:      firstAlias(candidate, phoneAliases),
		Email:      firstAlias(candidate, emailAliases),
		Address1:   firstAlias(candidate, address1Aliases),
		Address2:   firstAlias(candidate, address2Aliases),
		City:       firstAlias(candidate, cityAliases),
		State:      firstAlias(candidate, stateAliases),
		PostalCode: firstAlias(candidate, postalAliases),
		Country:    strings.ToUpper(firstAlias(candidate, countryAliases)),
	}
	if addr.Country == "" {
		addr.Country = "MX"
	}
	return addr
}

func addressComplete(addr Address, opts ResolveOptions) bool {
	if addr.Address1 == "" || addr.City == "" || addr.State == "" || addr.PostalCode == "" {
		return false
	}
	if opts.RequireName && addr.Name == "" {
		return false
	}
	return true
}

func firstAlias(m types.JSONMap, aliases []string) string {
	for _, alias := range aliases {
		if value, ok := m[alias]; ok {
			if s := stringField(value); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringField tolerates numeric values; some writers stored postal codes as
// JSON numbers.
func stringField(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
