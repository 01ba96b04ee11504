// Package httperr renders errors as localized JSON bodies for fiber
// applications.
package httperr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-security/core"
	"github.com/goliatone/go-security/i18n"
)

// ErrMessageNotReadable is returned for request bodies that cannot be decoded.
var ErrMessageNotReadable = errors.New("request body is not readable", errors.CategoryBadInput).
	WithTextCode(i18n.KeyMessageNotReadable).
	WithCode(errors.CodeBadRequest)

// Logger is the logging contract used by the responder.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] HTTPERR "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] HTTPERR "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] HTTPERR "+newline(format), args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] HTTPERR "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// ServerExceptionResponse is the common part of every error body.
type ServerExceptionResponse struct {
	ServletTimestampUTC string `json:"servletTimestampUTC"`
	StatusCode          int    `json:"statusCode"`
	StatusText          string `json:"statusText"`
	Path                string `json:"path"`
	Method              string `json:"method"`
}

// GeneralServerExceptionResponse carries a single message.
type GeneralServerExceptionResponse struct {
	ServerExceptionResponse
	Message string `json:"message"`
}

// InvalidDTOResponse carries one message per invalid field.
type InvalidDTOResponse struct {
	ServerExceptionResponse
	Errors map[string]string `json:"errors"`
}

// NewServerExceptionResponse fills the common body for status.
func NewServerExceptionResponse(c *fiber.Ctx, status int) ServerExceptionResponse {
	return ServerExceptionResponse{
		ServletTimestampUTC: core.SerializeNowUTC(),
		StatusCode:          status,
		StatusText:          statusText(status),
		Path:                c.Path(),
		Method:              c.Method(),
	}
}

func statusText(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// Responder localizes errors using a catalog.
type Responder struct {
	catalog  *i18n.Catalog
	resolver *i18n.Resolver
	logger   Logger
}

// NewResponder creates a Responder. A nil logger prints to stdout.
func NewResponder(catalog *i18n.Catalog, resolver *i18n.Resolver, logger Logger) *Responder {
	if logger == nil {
		logger = defLogger{}
	}
	return &Responder{catalog: catalog, resolver: resolver, logger: logger}
}

// NewErrorHandler returns a fiber.ErrorHandler backed by a new Responder.
func NewErrorHandler(catalog *i18n.Catalog, resolver *i18n.Resolver, logger Logger) fiber.ErrorHandler {
	return NewResponder(catalog, resolver, logger).Handle
}

// Handle writes the JSON body for err.
func (r *Responder) Handle(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	locale := r.locale(c)

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		r.logger.Debug("bad request %s %s: %s", c.Method(), c.Path(), print.MaybePrettyJSON(verrs))
		return c.Status(fiber.StatusBadRequest).JSON(InvalidDTOResponse{
			ServerExceptionResponse: NewServerExceptionResponse(c, fiber.StatusBadRequest),
			Errors:                  r.fieldMessages(locale, verrs),
		})
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		status := richErr.Code
		if status < 400 || status > 599 {
			status = statusFromCategory(richErr)
		}
		r.log(status, c, err)
		return r.write(c, status, r.richMessage(locale, richErr))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		r.log(fiberErr.Code, c, err)
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return r.write(c, fiber.StatusNotFound, r.message(locale, i18n.KeyNoHandlerFound, nil))
		case fiber.StatusUnprocessableEntity, fiber.StatusBadRequest:
			return r.write(c, fiber.StatusBadRequest, r.message(locale, i18n.KeyMessageNotReadable, nil))
		default:
			return r.write(c, fiberErr.Code, fiberErr.Message)
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		r.log(fiber.StatusBadRequest, c, err)
		return r.write(c, fiber.StatusBadRequest, r.message(locale, i18n.KeyMessageNotReadable, nil))
	}

	r.log(fiber.StatusInternalServerError, c, err)
	return r.write(c, fiber.StatusInternalServerError, r.message(locale, i18n.KeyInternalServerError, nil))
}

// Message localizes err the same way Handle does.
func (r *Responder) Message(c *fiber.Ctx, err error) string {
	locale := r.locale(c)
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return r.richMessage(locale, richErr)
	}
	return r.message(locale, i18n.KeyInternalServerError, nil)
}

// Localize returns the message for key in the request locale.
func (r *Responder) Localize(c *fiber.Ctx, key string, vars map[string]any) string {
	return r.message(r.locale(c), key, vars)
}

func (r *Responder) write(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(GeneralServerExceptionResponse{
		ServerExceptionResponse: NewServerExceptionResponse(c, status),
		Message:                 message,
	})
}

func (r *Responder) log(status int, c *fiber.Ctx, err error) {
	if status >= fiber.StatusInternalServerError {
		r.logger.Error("%s %s failed: %v", c.Method(), c.Path(), err)
		return
	}
	r.logger.Debug("%s %s rejected with %d: %v", c.Method(), c.Path(), status, err)
}

func (r *Responder) locale(c *fiber.Ctx) string {
	if locale := i18n.LocaleFrom(c); locale != "" {
		return locale
	}
	if r.resolver != nil {
		return r.resolver.ResolveRequest(c)
	}
	if r.catalog != nil {
		return r.catalog.DefaultLocale()
	}
	return i18n.DefaultLocale
}

func (r *Responder) richMessage(locale string, e *errors.Error) string {
	if r.catalog != nil && e.TextCode != "" && r.catalog.Has(locale, e.TextCode) {
		return r.catalog.Message(locale, e.TextCode, e.Metadata)
	}
	return e.Message
}

func (r *Responder) message(locale, key string, vars map[string]any) string {
	if r.catalog == nil {
		return key
	}
	return r.catalog.Message(locale, key, vars)
}

func (r *Responder) fieldMessages(locale string, verrs validation.Errors) map[string]string {
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		var richErr *errors.Error
		if errors.As(ferr, &richErr) {
			out[field] = r.richMessage(locale, richErr)
			continue
		}
		out[field] = ferr.Error()
	}
	return out
}

func statusFromCategory(e *errors.Error) int {
	switch e.Category {
	case errors.CategoryBadInput, errors.CategoryValidation:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Unauthorized writes the 401 body used by authentication guards.
func (r *Responder) Unauthorized(c *fiber.Ctx) error {
	return r.write(c, fiber.StatusUnauthorized, r.Localize(c, i18n.KeySecurityAuthentication, nil))
}

// Forbidden writes the 403 body used by role guards.
func (r *Responder) Forbidden(c *fiber.Ctx) error {
	return r.write(c, fiber.StatusForbidden, r.Localize(c, i18n.KeySecurityAccessDenied, nil))
}

// Recover turns panics raised by later handlers into the JSON 500 body.
func (r *Responder) Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("panic on %s %s: %v\n%s", c.Method(), c.Path(), rec, debug.Stack())
				err = r.write(c, fiber.StatusInternalServerError,
					r.Localize(c, i18n.KeyInternalServerError, nil))
			}
		}()
		return c.Next()
	}
}

var fallback = newFallback()

func newFallback() *Responder {
	catalog, err := i18n.NewCatalog(i18n.DefaultLocale)
	if err != nil {
		catalog = nil
	}
	return NewResponder(catalog, nil, nil)
}

// Unauthorized writes a 401 body using the embedded messages.
func Unauthorized(c *fiber.Ctx) error {
	return fallback.Unauthorized(c)
}

// Forbidden writes a 403 body using the embedded messages.
func Forbidden(c *fiber.Ctx) error {
	return fallback.Forbidden(c)
}
