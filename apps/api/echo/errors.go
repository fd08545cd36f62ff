package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = fieldErrorsMap(translateErrors(origErr, translator, ""))
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				message = fieldErrorsMap(origErr.Fields)
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		default:
			if origErr == user.ErrInvalidCredentials {
				code = http.StatusUnauthorized
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.WithStack(err), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Request().URL.Path,
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// translateErrors turns validator errors into field errors, prefixing each field name.
func translateErrors(vErrs validator.ValidationErrors, translator ut.Translator, prefix string) []core.FieldError {
	flds := make([]core.FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, core.FieldError{Field: prefix + vErr.Field(), Error: vErr.Translate(translator)})
	}
	return flds
}

func fieldErrorsMap(flds []core.FieldError) map[string]string {
	m := make(map[string]string, len(flds))
	for _, fErr := range flds {
		m[fErr.Field] = fErr.Error
	}
	return m
}
