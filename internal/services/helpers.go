package services

import (
	"context"
	"strings"

	"github.com/danielroh/hackmate/pkg/metrics"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// slugify converts a display name into a URL-friendly identifier.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// observeMembership records the outcome of a membership operation.
func observeMembership(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MembershipOperations.WithLabelValues(operation, result).Inc()
}
