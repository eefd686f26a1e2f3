package llm

import "context"

// Purpose says why a request was made. It keys the usage report.
type Purpose string

const (
	PurposeExplain Purpose = "explain"

	purposeUnknown Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose tags the requests made with ctx.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return purposeUnknown
}
