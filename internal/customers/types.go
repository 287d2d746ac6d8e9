package customers

import "strings"

// Info is the caller-supplied identity of a customer. Phone is the lookup key.
type Info struct {
	Name     string
	Phone    string
	AltPhone string
	Address  string
}

// Normalize trims surrounding whitespace from every field.
func (i Info) Normalize() Info {
	return Info{
		Name:     strings.TrimSpace(i.Name),
		Phone:    strings.TrimSpace(i.Phone),
		AltPhone: strings.TrimSpace(i.AltPhone),
		Address:  strings.TrimSpace(i.Address),
	}
}

// Complete reports whether the required fields are present.
func (i Info) Complete() bool {
	return i.Name != "" && i.Phone != "" && i.Address != ""
}

// Resolution is the outcome of resolving a phone number to a customer.
type Resolution struct {
	ID      int64
	Created bool
}

// Customer is a persisted customer row.
type Customer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	AltPhone string `json:"alt_phone,omitempty"`
	Address  string `json:"address"`
}
