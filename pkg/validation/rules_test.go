package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

type fakeChecker struct {
	taken map[string]string // value -> owner id
	err   error
	calls int
}

func (f *fakeChecker) Exists(_ context.Context, _ string, value, excludeID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.taken[value]
	return ok && owner != excludeID, nil
}

var personRules = Rules{
	"first_name":     "required,min=3,max=35",
	"username":       "required,min=5,max=20",
	"email":          "required,email,max=255",
	"birthdate":      "required,dmy,minage=18,maxage=70",
	"personal_phone": "required,digits=10",
	"home_phone":     "required,digits=9",
}

func validFields() map[string]string {
	return map[string]string{
		"first_name":     "Ana",
		"username":       "aruiz01",
		"email":          "ana@x.com",
		"birthdate":      "15/03/1995",
		"personal_phone": "0991234567",
		"home_phone":     "022345678",
	}
}

func TestCheck_Valid(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	require.NoError(t, v.Check(context.Background(), validFields(), personRules))
}

func TestCheck_CollectsEveryField(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	fields := map[string]string{
		"first_name":     "Al",
		"username":       "",
		"email":          "not-an-email",
		"birthdate":      "1995-03-15",
		"personal_phone": "09912345a7",
		"home_phone":     "0223456789",
	}

	err := v.Check(context.Background(), fields, personRules)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	details := ve.Details()
	assert.Equal(t, "must be at least 3 characters long", details["first_name"])
	assert.Equal(t, "is required", details["username"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must match the format d/m/Y", details["birthdate"])
	assert.Equal(t, "must be exactly 10 digits", details["personal_phone"])
	assert.Equal(t, "must be exactly 9 digits", details["home_phone"])
	assert.Len(t, ve.Fields, 6)
	assert.Equal(t, "birthdate", ve.Fields[0].Field)
	assert.False(t, errors.Is(err, ErrUniquenessConflict))
}

func TestCheck_LengthCountsRunes(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	fields := validFields()
	fields["first_name"] = "Íñé"
	assert.NoError(t, v.Check(context.Background(), fields, personRules))
}

func TestCheck_AgeBoundaries(t *testing.T) {
	v := New(func() time.Time { return fixedNow })

	cases := []struct {
		name      string
		birthdate string
		ok        bool
	}{
		{"exactly 18", "19/10/2008", true},
		{"one day short of 18", "20/10/2008", false},
		{"exactly 70", "19/10/1956", true},
		{"70 years and one day", "18/10/1956", false},
		{"middle", "15/03/1995", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			fields["birthdate"] = tc.birthdate
			err := v.Check(context.Background(), fields, personRules)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Details(), "birthdate")
		})
	}
}

func TestCheck_OptionalBirthdate(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	rules := Rules{"birthdate": "omitempty,dmy,minage=18,maxage=70"}

	assert.NoError(t, v.Check(context.Background(), map[string]string{}, rules))
	assert.Error(t, v.Check(context.Background(), map[string]string{"birthdate": "01/01/2020"}, rules))
}

func TestCheck_Uniqueness(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	checker := &fakeChecker{taken: map[string]string{"aruiz01": "user-1", "ana@x.com": "user-1"}}
	uniq := func(exclude string) []UniqueRule {
		return []UniqueRule{
			{Field: "username", Checker: checker, ExcludeID: exclude},
			{Field: "email", Checker: checker, ExcludeID: exclude},
		}
	}

	err := v.Check(context.Background(), validFields(), personRules, uniq("")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUniquenessConflict))
	assert.Equal(t, map[string]string{"email": "has already been taken", "username": "has already been taken"}, ToDetails(err))

	// the owner keeps its own values
	assert.NoError(t, v.Check(context.Background(), validFields(), personRules, uniq("user-1")...))
}

func TestCheck_UniquenessSkippedForInvalidField(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	checker := &fakeChecker{taken: map[string]string{}}
	fields := validFields()
	fields["username"] = "abc"

	err := v.Check(context.Background(), fields, personRules, UniqueRule{Field: "username", Checker: checker})

	require.Error(t, err)
	assert.Equal(t, 0, checker.calls)
}

func TestCheck_CheckerFailure(t *testing.T) {
	v := New(func() time.Time { return fixedNow })
	boom := errors.New("db down")
	checker := &fakeChecker{err: boom}

	err := v.Check(context.Background(), validFields(), personRules, UniqueRule{Field: "email", Checker: checker})

	assert.ErrorIs(t, err, boom)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestToDetails_Fallbacks(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("x")))
}
