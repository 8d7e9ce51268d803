// Package validation wraps go-playground/validator with the rules used by
// the question and upload endpoints.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error returned from this package.
var ErrInvalid = errors.New("invalid input")

// Validator checks request structs and uploaded file names.
type Validator struct {
	v    *validator.Validate
	exts map[string]bool
}

// New returns a Validator accepting files with the given extensions.
// An empty list accepts every extension.
func New(extensions []string) *Validator {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), exts: exts}
	_ = val.v.RegisterValidation("notblank", notBlank)
	_ = val.v.RegisterValidation("docext", val.docExt)
	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Struct validates s using its `validate` tags.
func (v *Validator) Struct(s any) error {
	return translate(v.v.Struct(s))
}

// FileName reports whether name is an accepted document name.
func (v *Validator) FileName(name string) error {
	if err := v.v.Var(name, "required,docext"); err != nil {
		return fmt.Errorf("file %q: %w", name, translate(err))
	}
	return nil
}

// Extensions lists the accepted extensions.
func (v *Validator) Extensions() []string {
	out := make([]string, 0, len(v.exts))
	for e := range v.exts {
		out = append(out, e)
	}
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func (v *Validator) docExt(fl validator.FieldLevel) bool {
	if len(v.exts) == 0 {
		return true
	}
	return v.exts[strings.ToLower(filepath.Ext(fl.Field().String()))]
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = "value"
	}
	switch fe.Tag() {
	case "required", "notblank":
		return field + " must not be blank"
	case "docext":
		return "unsupported file type"
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
