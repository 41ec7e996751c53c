package notification

import (
	"errors"
	"fmt"
)

// UnsupportedTypeError is returned when no strategy is registered for the
// requested type. Retrying without a code change will not help.
type UnsupportedTypeError struct {
	Type Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no delivery strategy registered for notification type %q", string(e.Type))
}

// TransportUnavailableError is returned when the active transport
// configuration cannot be resolved.
type TransportUnavailableError struct {
	Err error
}

func (e *TransportUnavailableError) Error() string {
	if e.Err == nil {
		return "no active transport configuration"
	}
	return fmt.Sprintf("no active transport configuration: %v", e.Err)
}

func (e *TransportUnavailableError) Unwrap() error { return e.Err }

// TemplateProcessingError is returned when the template is missing or the
// variables do not fit it. No send is attempted.
type TemplateProcessingError struct {
	TemplateName string
	Err          error
}

func (e *TemplateProcessingError) Error() string {
	return fmt.Sprintf("failed to process template %q: %v", e.TemplateName, e.Err)
}

func (e *TemplateProcessingError) Unwrap() error { return e.Err }

// DeliveryError is returned when the outbound send itself failed.
type DeliveryError struct {
	Recipient string
	Subject   string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to send notification to %q with subject %q: %v", e.Recipient, e.Subject, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Error kinds reported by Kind.
const (
	KindNone                 = ""
	KindUnsupportedType      = "unsupported_type"
	KindTransportUnavailable = "transport_unavailable"
	KindTemplate             = "template_processing"
	KindDelivery             = "delivery"
	KindInvalid              = "invalid_request"
	KindInternal             = "internal"
)

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	if err == nil {
		return KindNone
	}
	var (
		ute *UnsupportedTypeError
		tue *TransportUnavailableError
		tpe *TemplateProcessingError
		de  *DeliveryError
		ve  ValidationErrors
	)
	switch {
	case errors.As(err, &ute):
		return KindUnsupportedType
	case errors.As(err, &tue):
		return KindTransportUnavailable
	case errors.As(err, &tpe):
		return KindTemplate
	case errors.As(err, &de):
		return KindDelivery
	case errors.As(err, &ve):
		return KindInvalid
	}
	return KindInternal
}

// Retryable reports whether the caller may retry the same request unchanged.
// Only outbound delivery failures qualify.
func Retryable(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
