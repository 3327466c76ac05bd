package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func validSignup() model.SignupRequest {
	return model.SignupRequest{
		Email:         "ada@coe.example.org",
		Password:      "Secr3t!pass",
		Role:          model.RoleDirector,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		DateOfBirth:   "1990-12-10",
		ContactNumber: "0300123456",
	}
}

func TestStructAcceptsValidSignup(t *testing.T) {
	v := NewWithClock(fixedClock)
	req := validSignup()
	assert.NoError(t, v.Struct(&req))
}

func TestStructReportsEachField(t *testing.T) {
	v := NewWithClock(fixedClock)
	req := validSignup()
	req.Email = "not-an-email"
	req.Password = "short"
	req.Role = "admin"
	req.DateOfBirth = "2030-01-01"
	req.ContactNumber = "12345"
	req.FirstName = ""

	err := v.Struct(&req)
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "role")
	assert.Contains(t, verr.Fields, "dateOfBirth")
	assert.Contains(t, verr.Fields, "contactNumber")
	assert.Equal(t, "firstName is required", verr.Fields["firstName"])
	assert.Equal(t, "dateOfBirth cannot be in the future", verr.Fields["dateOfBirth"])
}

func TestPasswordRule(t *testing.T) {
	v := New()
	cases := map[string]bool{
		"Secr3t!pass":  true,
		"secr3t!pass":  false,
		"SECR3T!PASS":  false,
		"Secret!pass":  false,
		"Secr3tpass1":  false,
		"Sh0rt!":       false,
		"Secr3t!pass#": false,
	}
	for pw, ok := range cases {
		msg := v.Field("Password", pw, "strongpassword")
		assert.Equal(t, ok, msg == "", pw)
	}
}

func TestFieldMessages(t *testing.T) {
	v := New()
	assert.Equal(t, "", v.Field("Amount", "1500000", "realnumber"))
	assert.Equal(t, "Amount must be a number", v.Field("Amount", "12abc", "realnumber"))
	assert.Equal(t, "Amount must be a number", v.Field("Amount", "NaN", "realnumber"))
	assert.Equal(t, "Date must be a date in YYYY-MM-DD format", v.Field("Date", "15/06/2024", "isodate"))
	assert.Equal(t, "", v.Field("Contact", "0300123456", "number,len=10"))
	assert.NotEmpty(t, v.Field("Contact", "030012345", "number,len=10"))
	assert.NotEmpty(t, v.Field("Contact", "03001234ab", "number,len=10"))
}

func TestParseNumber(t *testing.T) {
	n, ok := ParseNumber(" 1,500,000 ")
	require.True(t, ok)
	assert.Equal(t, 1500000.0, n)
	_, ok = ParseNumber("")
	assert.False(t, ok)
	_, ok = ParseNumber("Inf")
	assert.False(t, ok)
}

func TestErrorOrNil(t *testing.T) {
	var e Error
	assert.NoError(t, e.OrNil())
	e.Add("a", "a is required")
	e.Add("a", "ignored")
	assert.Equal(t, "validation failed: a is required", e.OrNil().Error())
}
