package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/authorization"
	"github.com/smallbiznis/billdesk/internal/billingapi"
	billingdashboarddomain "github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyRequest = errors.New("too_many_requests")
)

// operationError carries the notification shown when a billing API call
// fails without a message of its own.
type operationError struct {
	message string
	err     error
}

func (e *operationError) Error() string {
	return e.err.Error()
}

func (e *operationError) Unwrap() error {
	return e.err
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// abortOperation aborts with err, using message when the billing API gave no reason.
func abortOperation(c *gin.Context, err error, message string) {
	if err == nil {
		return
	}
	AbortWithError(c, &operationError{message: message, err: err})
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "Solicitud inválida")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "Error interno del servidor",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: vErr.Errors[0].Message,
			Errors:  vErr.Errors,
		}
	}

	var payErr *invoicedomain.PayError
	if errors.As(err, &payErr) {
		return payErrorStatus(payErr), errorPayload{
			Type:    "payment_rejected",
			Message: payErr.Message,
		}
	}

	if code, ok := validationErrorCode(err); ok {
		message := validationErrorMessage(code)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: message,
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: message,
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, session.ErrUnauthenticated),
		errors.Is(err, authorization.ErrUnauthenticated),
		errors.Is(err, billingdashboarddomain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "Usuario no autenticado",
		}
	case errors.Is(err, userdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: billingapi.MessageOr(err, "Credenciales incorrectas"),
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "Acceso denegado",
		}
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "Demasiados intentos. Intenta nuevamente más tarde.",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, invoicedomain.ErrPayInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "El pago de esta factura ya está en proceso.",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notificationOr(err, "Recurso no encontrado"),
		}
	}

	if status := billingapi.StatusCode(err); status != 0 {
		return upstreamError(err, status)
	}

	if isTransportError(err) {
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_unavailable",
			Message: notificationOr(err, "Error de conexión con el servidor de facturación"),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "Error interno del servidor",
	}
}

// isTransportError reports a billing API call that never got a reply.
func isTransportError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}

func payErrorStatus(err *invoicedomain.PayError) int {
	switch {
	case err.StatusCode == http.StatusNotFound, errors.Is(err, invoicedomain.ErrNotFound):
		return http.StatusNotFound
	case err.StatusCode >= 400 && err.StatusCode < 500:
		return err.StatusCode
	default:
		return http.StatusBadGateway
	}
}

// upstreamError relays billing API rejections. Client errors keep their
// status; server errors surface as a bad gateway.
func upstreamError(err error, status int) (int, errorPayload) {
	message := billingapi.MessageOr(err, notificationOr(err, "Error al procesar la solicitud"))
	switch {
	case status == http.StatusUnauthorized:
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "Sesión expirada. Inicia sesión nuevamente."}
	case status == http.StatusForbidden:
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: message}
	case status == http.StatusConflict:
		return http.StatusConflict, errorPayload{Type: "conflict", Message: message}
	case status >= 400 && status < 500:
		return http.StatusBadRequest, errorPayload{Type: "rejected", Message: message}
	default:
		return http.StatusBadGateway, errorPayload{Type: "upstream_error", Message: message}
	}
}

func notificationOr(err error, fallback string) string {
	var opErr *operationError
	if errors.As(err, &opErr) && strings.TrimSpace(opErr.message) != "" {
		return opErr.message
	}
	return fallback
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil && len(vErr.Errors) > 0 {
		return vErr
	}
	return nil
}

var validationSentinels = []error{
	ErrInvalidRequest,
	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidEmail,
	customerdomain.ErrInvalidOwner,
	customerdomain.ErrInvalidID,
	plandomain.ErrInvalidName,
	plandomain.ErrInvalidPrice,
	plandomain.ErrInvalidBillingCycle,
	plandomain.ErrInvalidID,
	subscriptiondomain.ErrInvalidPlan,
	subscriptiondomain.ErrInvalidCustomer,
	subscriptiondomain.ErrInvalidStatus,
	subscriptiondomain.ErrInvalidID,
	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidStatus,
	invoicedomain.ErrInvalidMethod,
	paymentdomain.ErrInvalidID,
	paymentdomain.ErrInvalidStatus,
	paymentdomain.ErrInvalidMethod,
	userdomain.ErrInvalidUsername,
	userdomain.ErrInvalidEmail,
	userdomain.ErrInvalidPassword,
	userdomain.ErrInvalidRole,
	userdomain.ErrInvalidID,
	auditdomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidTimeRange,
	auditdomain.ErrInvalidAction,
}

func validationErrorCode(err error) (string, bool) {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		billingapi.IsNotFound(err):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	return strings.TrimPrefix(code, "invalid_")
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_name":
		return "El nombre es requerido"
	case "invalid_email":
		return "El formato del email es inválido"
	case "invalid_owner":
		return "El ID del usuario (dueño) es requerido"
	case "invalid_price":
		return "El precio debe ser cero o positivo"
	case "invalid_billing_cycle":
		return "Selecciona un ciclo de facturación válido"
	case "invalid_plan":
		return "Selecciona un plan"
	case "invalid_customer":
		return "Selecciona un cliente"
	case "invalid_status":
		return "Selecciona un estado válido"
	case "invalid_method":
		return "Selecciona un método de pago válido"
	case "invalid_username":
		return "El nombre de usuario debe tener al menos 4 caracteres"
	case "invalid_password":
		return "La contraseña debe tener al menos 8 caracteres"
	case "invalid_id":
		return "El ID debe ser un número positivo"
	case "invalid_page_token":
		return "page_token inválido"
	case "invalid_time_range":
		return "Rango de fechas inválido"
	default:
		return "Solicitud inválida"
	}
}

// classifyErrorForLog returns the error type and code recorded in the request log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	switch {
	case status == http.StatusUnauthorized:
		return "unauthorized", code
	case status == http.StatusForbidden:
		return "forbidden", code
	case status == http.StatusNotFound:
		return "not_found", code
	case status >= http.StatusInternalServerError:
		return "upstream", code
	default:
		return "client", code
	}
}
