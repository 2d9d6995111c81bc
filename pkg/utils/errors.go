package utils

import (
	"context"
	"errors"
	"net"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrTransport        = errors.New("transport failure")        // Wraps network errors, timeouts, body read failures
	ErrMissingStartURL  = errors.New("missing start URL")        // Input validation: no URL to crawl
	ErrBotNotFound      = errors.New("bot not found")            // Requested bot name is not registered
	ErrParsing          = errors.New("parsing error")            // Wraps HTML/XML/JSON parsing failures
	ErrDatabase         = errors.New("database error")           // Wraps badger errors
	ErrFilesystem       = errors.New("filesystem error")         // Wraps os errors
	ErrNoSnapshot       = errors.New("no snapshot available")    // No prior snapshot file for a bot
	ErrConfigValidation = errors.New("configuration validation error")
)

// CategorizeError maps an error to a category string for logging and run history.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrTransport):
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") {
			return "Transport_Timeout"
		}
		if strings.Contains(errMsg, "connection refused") {
			return "Transport_ConnectionRefused"
		}
		if strings.Contains(errMsg, "no such host") {
			return "Transport_DNSLookup"
		}
		return "Transport_Other"
	case errors.Is(err, ErrMissingStartURL):
		return "Input_MissingStartURL"
	case errors.Is(err, ErrBotNotFound):
		return "Input_BotNotFound"
	case errors.Is(err, ErrParsing):
		return "Content_Parsing"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrFilesystem):
		return "Filesystem_Other"
	case errors.Is(err, ErrNoSnapshot):
		return "Input_NoSnapshot"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}

	return "Unknown"
}
