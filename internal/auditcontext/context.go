// Package auditcontext carries request metadata used when writing
// audit log entries.
package auditcontext

import "context"

type metaKey struct{}

// Meta is the request metadata recorded alongside audit entries.
type Meta struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func MetaFromContext(ctx context.Context) Meta {
	if ctx == nil {
		return Meta{}
	}
	if meta, ok := ctx.Value(metaKey{}).(Meta); ok {
		return meta
	}
	return Meta{}
}
