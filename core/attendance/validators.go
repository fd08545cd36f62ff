package attendance

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	statusTag  = "attstatus"
	statusText = fmt.Sprintf("status must be one of: %s", strings.Join(AllStatuses, ", "))
)

// InitValidators registers the attendance validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func statusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range AllStatuses {
		if status == s {
			return true
		}
	}
	return false
}
