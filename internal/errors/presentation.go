package errors

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	if e, ok := as(err); ok {
		return formatUserError(e)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(e *Error) string {
	switch e.Type {
	case ErrorTypeValidation:
		return formatValidationError(e)
	case ErrorTypeCodec:
		return formatCodecError(e)
	case ErrorTypeConfig:
		return formatConfigError(e)
	default:
		return e.Message
	}
}

func formatValidationError(e *Error) string {
	msg := e.Message
	if field, ok := e.Context["field"]; ok {
		msg = fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return msg
}

func formatCodecError(e *Error) string {
	msg := e.Message
	if q, ok := e.Context["query"]; ok {
		msg = fmt.Sprintf("%s (query %q)", msg, q)
	}
	return msg
}

func formatConfigError(e *Error) string {
	msg := e.Message

	if flag, ok := e.Context["flag"]; ok {
		msg = fmt.Sprintf("Configuration error (--%s): %s", flag, msg)
	}

	return msg
}

// PresentError displays an error to the user through the global zerolog logger
func PresentError(err error) {
	if err == nil {
		return
	}

	if e, ok := as(err); ok {
		event := log.Error().Str("type", string(e.Type))

		// Add context fields as structured data
		for key, value := range e.Context {
			event = event.Interface(key, value)
		}
		if e.Cause != nil {
			event = event.Err(e.Cause)
		}

		event.Msg(UserMessage(e))
	} else {
		log.Error().Err(err).Msg("")
	}
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	if e, ok := as(err); ok {
		info["type"] = string(e.Type)
		info["message"] = e.Message
		info["context"] = e.Context

		if e.Cause != nil {
			info["cause"] = e.Cause.Error()
		}
	}

	return info
}
