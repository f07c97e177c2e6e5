package server

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// fieldMessages maps "field.tag" to the form message shown next to the field.
var fieldMessages = map[string]string{
	"username.required":     "Username/Email requerido",
	"password.required":     "La contraseña es requerida",
	"email.required":        "Email es requerido",
	"email.email":           "Email no válido",
	"name.required":         "El nombre es requerido",
	"name.min":              "El nombre debe tener al menos 2 caracteres",
	"price.required":        "El precio es obligatorio",
	"billingCycle.required": "El ciclo de facturación es obligatorio",
	"billingCycle.oneof":    "Selecciona un ciclo de facturación válido",
	"customerId.required":   "Selecciona un cliente",
	"customerId.gt":         "Customer ID debe ser un número positivo",
	"planId.required":       "Selecciona un plan",
	"planId.gt":             "Plan ID debe ser un número positivo",
	"status.oneof":          "Selecciona un estado válido",
	"method.required":       "Selecciona un método de pago válido",
	"method.oneof":          "Selecciona un método de pago válido",
	"userId.gt":             "El ID del usuario debe ser un número positivo",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// bindJSON decodes the body into req and runs its validate tags.
func (s *Server) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		AbortWithError(c, invalidRequestError())
		return false
	}
	if err := s.validate.StructCtx(c.Request.Context(), req); err != nil {
		AbortWithError(c, toValidationErrors(err))
		return false
	}
	return true
}

func toValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}
	out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		message, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			message = "Valor inválido"
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Field(),
			Code:    "invalid_" + fe.Tag(),
			Message: message,
		})
	}
	return out
}
