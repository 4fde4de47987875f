package student

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// emailShape is the loose check the record forms have always applied:
// non-space, @, non-space, dot, non-space. Anything stricter belongs to a
// mail server.
var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

// newValidator builds the validator shared by the create and edit handlers.
// A *validator.Validate caches struct metadata and is safe for concurrent
// use, so one instance serves every request.
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("firstName") instead of Go names ("FirstName").
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	_ = validate.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})

	return validate
}
