package validator_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/validator"
	"github.com/noticket/waf/core/waf"
)

type passenger struct {
	Name   string `validate:"required;name"`
	Email  string `validate:"required;email"`
	Seats  string `validate:"required;integer:1,9"`
	Price  string `validate:"float:0,"`
	TripID string `validate:"uuid"`
	Date   string `validate:"datetime:2006-01-02"`
	Note   string `validate:"mode:text"`
	Skip   string `validate:"-"`
	NoTag  string
}

func validPassenger() passenger {
	return passenger{
		Name:   "Ayşe Yılmaz",
		Email:  "ayse@example.com",
		Seats:  "2",
		Price:  "149.90",
		TripID: "0123456789abcdef0123456789abcdef",
		Date:   "2025-06-01",
		Note:   "Window seat, please!",
		Skip:   "<anything>",
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	p := validPassenger()
	assert.NoError(t, validator.ValidateStruct(&p))
}

func TestValidateStruct_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*passenger)
		fields []string
	}{
		{"missing required", func(p *passenger) { p.Name, p.Email, p.Seats = "", "", "" }, []string{"Name", "Email", "Seats"}},
		{"bad email", func(p *passenger) { p.Email = "nope" }, []string{"Email"}},
		{"seats out of range", func(p *passenger) { p.Seats = "10" }, []string{"Seats"}},
		{"negative price", func(p *passenger) { p.Price = "-1" }, []string{"Price"}},
		{"dashed trip id", func(p *passenger) { p.TripID = "01234567-89ab-cdef-0123-456789abcdef" }, []string{"TripID"}},
		{"impossible date", func(p *passenger) { p.Date = "2025-02-30" }, []string{"Date"}},
		{"note with quote", func(p *passenger) { p.Note = "it's" }, []string{"Note"}},
		{"name with digits", func(p *passenger) { p.Name = "R2D2" }, []string{"Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPassenger()
			tt.mutate(&p)
			err := validator.ValidateStruct(&p)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			for _, f := range tt.fields {
				assert.True(t, verrs.Has(f), "expected error on %s, got %v", f, verrs)
			}
			assert.Len(t, verrs, len(tt.fields))
			assert.ErrorIs(t, err, waf.ErrMalformedField)
			assert.True(t, validator.IsValidationError(err))
		})
	}
}

func TestValidateStruct_InvalidRuleParams(t *testing.T) {
	t.Parallel()

	type form struct {
		Seats    string `validate:"integer:1,nine"`
		Lower    string `validate:"integer:one,"`
		Price    string `validate:"float:0,lots"`
		FullName string `validate:"name:x,50"`
		Note     string `validate:"mode:txet"`
		Comment  string `validate:"mode"`
	}

	f := form{Seats: "5", Lower: "5", Price: "1.5", FullName: "Ayşe", Note: "hello", Comment: "hello"}
	err := validator.ValidateStruct(&f)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 6)
	for _, name := range []string{"Seats", "Lower", "Price", "FullName", "Note", "Comment"} {
		require.True(t, verrs.Has(name), "expected error on %s, got %v", name, verrs)
	}
	assert.Equal(t, []string{`has invalid mode rule parameters "txet"`}, verrs.Get("Note"))
	assert.Equal(t, []string{`has invalid integer rule parameters "1,nine"`}, verrs.Get("Seats"))
}

func TestValidateStruct_ModeNameIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	type form struct {
		Note string `validate:"mode:TEXT"`
	}

	assert.NoError(t, validator.ValidateStruct(&form{Note: "Merhaba, dünya!"}))
	assert.Error(t, validator.ValidateStruct(&form{Note: "it's"}))
}

func TestValidateStruct_Nested(t *testing.T) {
	t.Parallel()

	type contact struct {
		Email string `validate:"email"`
	}
	type booking struct {
		Contact  contact
		Backup   *contact
		Optional *string `validate:"required"`
	}

	b := booking{
		Contact: contact{Email: "bad"},
		Backup:  &contact{Email: "also bad"},
	}
	err := validator.ValidateStruct(&b)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("Contact.Email"))
	assert.True(t, verrs.Has("Backup.Email"))
	assert.True(t, verrs.Has("Optional"))
	assert.Equal(t, []string{"must be a valid email address"}, verrs.Get("Contact.Email"))
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed: "))
}

func TestValidateStruct_InvalidTarget(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, validator.ValidateStruct(passenger{}), validator.ErrInvalidTarget)
	assert.ErrorIs(t, validator.ValidateStruct((*passenger)(nil)), validator.ErrInvalidTarget)
	n := 1
	assert.ErrorIs(t, validator.ValidateStruct(&n), validator.ErrInvalidTarget)
}

func TestRegisterValidator(t *testing.T) {
	t.Parallel()

	validator.RegisterValidator("route_code", func(field string, value reflect.Value, _ []string) validator.Rule {
		return validator.Rule{
			Check: func() bool { return len(value.String()) == 3 && strings.ToUpper(value.String()) == value.String() },
			Error: validator.ValidationError{Field: field, Message: "must be a 3 letter route code"},
		}
	})

	type route struct {
		From string `validate:"route_code"`
	}

	assert.NoError(t, validator.ValidateStruct(&route{From: "IST"}))
	assert.Error(t, validator.ValidateStruct(&route{From: "ist"}))
}
