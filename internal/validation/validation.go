// Package validation holds the field rules shared by request binding and the
// booking services.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	MinDriverAge = 18
	MaxDriverAge = 65
)

var (
	driverNamePattern = regexp.MustCompile(`^[A-Za-z\s]{2,50}$`)
	contactPattern    = regexp.MustCompile(`^\d{10}$`)
	licensePattern    = regexp.MustCompile(`^[A-Z0-9]{6,15}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{13,16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	expiryPattern     = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
)

type DriverDetails struct {
	Name    string
	Contact string
	Age     int
	License string
}

type CardDetails struct {
	Number string
	Name   string
	Expiry string
	CVV    string
}

// DriverName accepts 2-50 letters and spaces with no character repeated three
// or more times in a row.
func DriverName(name string) bool {
	if !driverNamePattern.MatchString(name) {
		return false
	}
	run := 1
	for i := 1; i < len(name); i++ {
		if name[i] == name[i-1] {
			run++
			if run > 2 {
				return false
			}
		} else {
			run = 1
		}
	}
	return true
}

func Contact(contact string) bool {
	return contactPattern.MatchString(contact)
}

func DriverAge(age int) bool {
	return age >= MinDriverAge && age <= MaxDriverAge
}

func License(license string) bool {
	return licensePattern.MatchString(license)
}

func CardNumber(number string) bool {
	return cardNumberPattern.MatchString(number)
}

func CVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}

// CardExpiry accepts MM/YY when the card is valid through the current month.
func CardExpiry(expiry string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return false
	}
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	return year > currentYear || (year == currentYear && month >= currentMonth)
}

// Rating accepts 0 to 5 in half points.
func Rating(r float64) bool {
	if r < 0 || r > 5 {
		return false
	}
	return r*2 == math.Trunc(r*2)
}

func ValidateDriver(d DriverDetails) error {
	switch {
	case !DriverName(d.Name):
		return fmt.Errorf("%w: driver name should contain only letters and spaces, 2-50 characters, no letter repeated more than twice consecutively", domain.ErrValidation)
	case !Contact(d.Contact):
		return fmt.Errorf("%w: contact number must be exactly 10 digits", domain.ErrValidation)
	case !DriverAge(d.Age):
		return fmt.Errorf("%w: driver age must be between %d and %d", domain.ErrValidation, MinDriverAge, MaxDriverAge)
	case !License(d.License):
		return fmt.Errorf("%w: license number should be alphanumeric, 6-15 characters", domain.ErrValidation)
	}
	return nil
}

func ValidateCard(c CardDetails, now time.Time) error {
	switch {
	case !CardNumber(c.Number):
		return fmt.Errorf("%w: card number must be 13-16 digits", domain.ErrValidation)
	case len(strings.TrimSpace(c.Name)) < 3:
		return fmt.Errorf("%w: please enter a valid cardholder name", domain.ErrValidation)
	case !CardExpiry(c.Expiry, now):
		return fmt.Errorf("%w: invalid expiry date", domain.ErrValidation)
	case !CVV(c.CVV):
		return fmt.Errorf("%w: invalid CVV (3 or 4 digits)", domain.ErrValidation)
	}
	return nil
}

// Register adds the custom binding tags to v.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"drivername": func(fl validator.FieldLevel) bool { return DriverName(fl.Field().String()) },
		"contact":    func(fl validator.FieldLevel) bool { return Contact(fl.Field().String()) },
		"license":    func(fl validator.FieldLevel) bool { return License(fl.Field().String()) },
		"cardnumber": func(fl validator.FieldLevel) bool { return CardNumber(fl.Field().String()) },
		"cvv":        func(fl validator.FieldLevel) bool { return CVV(fl.Field().String()) },
		"cardexpiry": func(fl validator.FieldLevel) bool { return CardExpiry(fl.Field().String(), time.Now()) },
		"rating":     func(fl validator.FieldLevel) bool { return Rating(fl.Field().Float()) },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}
