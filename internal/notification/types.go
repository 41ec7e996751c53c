// Package notification is the dispatch core: the request model, the closed
// set of notification types, the typed failure taxonomy, the strategy
// registry and the dispatcher that routes a request to its strategy.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Type identifies the delivery channel of a notification.
type Type string

// Notification types. Only types with a registered Strategy can be dispatched.
const (
	TypeEmail Type = "EMAIL"
	TypeSMS   Type = "SMS"
	TypeWeb   Type = "WEB"
	TypePush  Type = "PUSH"
)

// AllTypes lists every notification type in declaration order.
var AllTypes = []Type{TypeEmail, TypeSMS, TypeWeb, TypePush}

// Valid reports whether t belongs to the closed set of notification types.
func (t Type) Valid() bool {
	switch t {
	case TypeEmail, TypeSMS, TypeWeb, TypePush:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Category classifies the purpose of a notification. It has no routing effect.
type Category string

// Notification categories.
const (
	CategoryGeneral       Category = "GENERAL"
	CategoryVerification  Category = "VERIFICATION"
	CategoryPasswordReset Category = "PASSWORD_RESET"
	CategoryAppointment   Category = "APPOINTMENT"
	CategoryReminder      Category = "REMINDER"
	CategoryBilling       Category = "BILLING"
	CategoryAlert         Category = "ALERT"
)

// Valid reports whether c belongs to the closed set of categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryVerification, CategoryPasswordReset,
		CategoryAppointment, CategoryReminder, CategoryBilling, CategoryAlert:
		return true
	}
	return false
}

// Request is a single notification-send request. It is passed by value and
// never mutated once built.
type Request struct {
	Recipient         string         `json:"recipient" validate:"required"`
	Subject           string         `json:"subject" validate:"required"`
	TemplateName      string         `json:"templateName" validate:"required"`
	TemplateVariables map[string]any `json:"templateVariables,omitempty"`
	Type              Type           `json:"type" validate:"required,notification_type"`
	Category          Category       `json:"category,omitempty" validate:"omitempty,notification_category"`
}

// EffectiveCategory returns the request category, defaulting to GENERAL.
func (r Request) EffectiveCategory() Category {
	if r.Category == "" {
		return CategoryGeneral
	}
	return r.Category
}

// Strategy delivers notifications of a single type.
type Strategy interface {
	// Type returns the notification type this strategy handles.
	Type() Type
	// Send delivers the request. The returned error is one of
	// *TransportUnavailableError, *TemplateProcessingError or *DeliveryError.
	Send(ctx context.Context, req Request) error
}

var validate = NewValidator()

// NewValidator returns a validator that reports fields by their json name
// and knows the notification_type and notification_category tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notification_type", func(fl validator.FieldLevel) bool {
		return Type(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("notification_category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

// FieldError describes one invalid field of a Request.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors is returned by Request.Validate.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid notification request: " + strings.Join(parts, "; ")
}

// Fields returns the errors keyed by field name. The first message wins.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// DecodeRequest reads one JSON request from r. Numbers in template
// variables are kept as json.Number so they render exactly as sent.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the request shape. Email requests additionally require
// the recipient to be an email address.
func (r Request) Validate() error {
	var errs ValidationErrors

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating notification request: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, FieldError{Field: fe.Field(), Message: describe(fe)})
		}
	}

	if r.Type == TypeEmail && r.Recipient != "" {
		if err := validate.Var(r.Recipient, "email"); err != nil {
			errs = append(errs, FieldError{Field: "recipient", Message: "must be a valid email address"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notification_type":
		return fmt.Sprintf("unknown notification type %q", fe.Value())
	case "notification_category":
		return fmt.Sprintf("unknown notification category %q", fe.Value())
	default:
		return "failed on " + fe.Tag()
	}
}
