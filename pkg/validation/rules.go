package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
)

const (
	TagDayMonthYear = "dmy"
	TagMinAge       = "minage"
	TagMaxAge       = "maxage"
	TagDigits       = "digits"
	TagUnique       = "unique"
)

// ErrUniquenessConflict matches (errors.Is) any ValidationError carrying a failed unique rule.
var ErrUniquenessConflict = errors.New("uniqueness conflict")

// Rules maps a field name to a validator tag string, e.g. "required,min=3,max=35".
type Rules map[string]string

// UniqueChecker reports whether value is already used in field by a record other than excludeID.
type UniqueChecker interface {
	Exists(ctx context.Context, field, value, excludeID string) (bool, error)
}

// UniqueRule asks Check to verify field against Checker once its syntactic rules pass.
type UniqueRule struct {
	Field     string
	Checker   UniqueChecker
	ExcludeID string
}

// FieldError is one failed rule of one field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed, ordered by field name.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	if target != ErrUniquenessConflict {
		return false
	}
	for _, f := range e.Fields {
		if f.Tag == TagUnique {
			return true
		}
	}
	return false
}

// Details returns field -> message.
func (e *ValidationError) Details() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// Conflict builds a ValidationError for a single field that violates uniqueness.
func Conflict(field string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Tag: TagUnique, Message: formatTag(TagUnique, "", reflect.String)}}}
}

// Validator evaluates Rules over plain field maps, independent of any request type.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator whose age rules are measured against now().
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	val := &Validator{v: validator.New(), now: now}
	val.register(val.v)
	return val
}

func (val *Validator) register(v *validator.Validate) {
	_ = v.RegisterValidation(TagDayMonthYear, func(fl validator.FieldLevel) bool {
		_, err := helpers.ParseDate(fl.Field().String(), helpers.DayMonthYearLayout)
		return err == nil
	})
	_ = v.RegisterValidation(TagMinAge, func(fl validator.FieldLevel) bool {
		dob, years, ok := birthdateAndYears(fl)
		return ok && !dob.After(helpers.DateOnly(val.now()).AddDate(-years, 0, 0))
	})
	_ = v.RegisterValidation(TagMaxAge, func(fl validator.FieldLevel) bool {
		dob, years, ok := birthdateAndYears(fl)
		return ok && !dob.Before(helpers.DateOnly(val.now()).AddDate(-years, 0, 0))
	})
	_ = v.RegisterValidation(TagDigits, func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		s := fl.Field().String()
		if len(s) != n {
			return false
		}
		for i := 0; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
		return true
	})
}

func birthdateAndYears(fl validator.FieldLevel) (time.Time, int, bool) {
	years, err := strconv.Atoi(fl.Param())
	if err != nil {
		return time.Time{}, 0, false
	}
	dob, err := helpers.ParseDate(fl.Field().String(), helpers.DayMonthYearLayout)
	if err != nil {
		return time.Time{}, 0, false
	}
	return dob, years, true
}

// Check applies rules to fields and then the unique rules whose field passed.
// It returns nil, a *ValidationError, or the error of a UniqueChecker.
func (val *Validator) Check(ctx context.Context, fields map[string]string, rules Rules, uniq ...UniqueRule) error {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := map[string]bool{}
	var out []FieldError
	for _, name := range names {
		err := val.v.Var(fields[name], rules[name])
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("validate %s: %w", name, err)
		}
		fe := verrs[0]
		out = append(out, FieldError{Field: name, Tag: fe.Tag(), Param: fe.Param(), Message: formatFieldError(fe)})
		failed[name] = true
	}

	for _, u := range uniq {
		value := fields[u.Field]
		if failed[u.Field] || value == "" || u.Checker == nil {
			continue
		}
		taken, err := u.Checker.Exists(ctx, u.Field, value, u.ExcludeID)
		if err != nil {
			return fmt.Errorf("check unique %s: %w", u.Field, err)
		}
		if taken {
			out = append(out, Conflict(u.Field).Fields[0])
		}
	}

	if len(out) == 0 {
		return nil
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return &ValidationError{Fields: out}
}
