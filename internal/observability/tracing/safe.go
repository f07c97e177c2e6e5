package tracing

import (
	"errors"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var blockedAttributeFragments = []string{
	"email",
	"password",
	"token",
	"authorization",
	"cookie",
	"card",
}

// SafeAttributes drops attributes whose keys may carry credentials or PII.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.ToLower(string(attr.Key))
		blocked := false
		for _, fragment := range blockedAttributeFragments {
			if strings.Contains(key, fragment) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, attr)
		}
	}
	return out
}

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)
)

// SafeError returns a copy of err with email addresses and bearer tokens redacted.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	msg = emailPattern.ReplaceAllString(msg, "[redacted-email]")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer [redacted]")
	return errors.New(msg)
}
