package echoapi

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var orderingParam = "ordering"

// SuccessResponse is returned by endpoints that have nothing else to say.
type SuccessResponse struct {
	Success string `json:"success"`
}

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses `?ordering=name,-createdAt` into DB orderings; a leading "-" means descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bulkValidator is implemented by the request types accepted by the bulk endpoints.
type bulkValidator interface {
	Validate(validate *validator.Validate) error
}

// validateBulk validates every element of a batch and reports all field errors at once,
// field names prefixed with the element index (eg. "[2].status").
func validateBulk(items []bulkValidator, validate *validator.Validate, translator ut.Translator) error {
	if len(items) == 0 {
		return core.NewValidationError(errors.New("at least one item is required"))
	}

	var flds []core.FieldError
	for i, item := range items {
		err := item.Validate(validate)
		if err == nil {
			continue
		}
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return err
		}
		flds = append(flds, translateErrors(vErrs, translator, fmt.Sprintf("[%d].", i))...)
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
