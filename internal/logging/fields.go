package logging

import "log/slog"

// Common field names for consistent logging across the API and CLI.
const (
	FieldService    = "service"
	FieldDeliveryID = "delivery_id"
	FieldReceiptID  = "receipt_id"
	FieldCaseID     = "case_id"
	FieldSigner     = "signer"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldIP         = "ip"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// DeliveryID returns a slog attribute for a delivery ID.
func DeliveryID(id string) slog.Attr {
	return slog.String(FieldDeliveryID, id)
}

// ReceiptID returns a slog attribute for a receipt ID.
func ReceiptID(id string) slog.Attr {
	return slog.String(FieldReceiptID, id)
}

// CaseID returns a slog attribute for a service case ID.
func CaseID(id string) slog.Attr {
	return slog.String(FieldCaseID, id)
}

// Signer returns a slog attribute for a signer identity.
func Signer(id string) slog.Attr {
	return slog.String(FieldSigner, id)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// IP returns a slog attribute for the client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}
