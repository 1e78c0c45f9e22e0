// Package branch holds the service-area table used to accept pickup addresses.
package branch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/easyrent/vehiclerental/internal/domain"
)

var areas = map[string][]string{
	"Andheri":      {"Andheri", "Bandra", "Dadar", "Thane"},
	"Thane":        {"Thane", "Mulund", "Bhandup", "Airoli"},
	"Dadar":        {"Dadar", "Mahim", "Worli", "Bandra"},
	"Chinchwad":    {"Chinchwad", "Pimpri", "Hinjewadi", "Kothrud"},
	"Kothrud":      {"Kothrud", "Shivajinagar", "Baner", "Aundh"},
	"Nashik Road":  {"Nashik Road", "Dwarka", "Upnagar", "Satpur"},
	"College Road": {"College Road", "Panchavati", "Indiranagar"},
	"Panjim":       {"Panjim", "Porvorim", "Mapusa"},
	"Margao":       {"Margao", "Colva", "Navelim"},
}

type Branch struct {
	Name  string   `json:"name"`
	Areas []string `json:"areas"`
}

// All returns every branch sorted by name.
func All() []Branch {
	out := make([]Branch, 0, len(areas))
	for name, list := range areas {
		out = append(out, Branch{Name: name, Areas: append([]string(nil), list...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func Known(name string) bool {
	_, ok := areas[name]
	return ok
}

// Allows reports whether address mentions one of the branch's areas.
func Allows(name, address string) (bool, error) {
	list, ok := areas[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownBranch, name)
	}
	lower := strings.ToLower(address)
	for _, area := range list {
		if strings.Contains(lower, strings.ToLower(area)) {
			return true, nil
		}
	}
	return false, nil
}

// Validate is Allows folded into a single error for callers that only need
// to reject the address.
func Validate(name, address string) error {
	ok, err := Allows(name, address)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s branch", domain.ErrOutsideServiceArea, name)
	}
	return nil
}
