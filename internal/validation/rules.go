package validation

import (
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// DateLayout is the canonical date form used by every date field.
const DateLayout = "2006-01-02"

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const passwordSpecials = "@$!%*?&"

func registerRules(v *validator.Validate, now func() time.Time) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("register validation %q: %v", tag, err)
		}
	}
	mustRegister("looseemail", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	mustRegister("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	mustRegister("notfuture", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(DateLayout, fl.Field().String())
		if err != nil {
			// isodate reports the format problem
			return true
		}
		today := now().UTC().Format(DateLayout)
		return d.Format(DateLayout) <= today
	})
	mustRegister("realnumber", func(fl validator.FieldLevel) bool {
		_, ok := ParseNumber(fl.Field().String())
		return ok
	})
	mustRegister("strongpassword", validatePassword)
	mustRegister("userrole", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
}

// ParseNumber parses a decimal number, ignoring thousands separators. NaN and
// infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func validatePassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
