// Package storage resolves image file references stored with properties
// into URLs clients can fetch. Objects live in an S3-compatible store.
package storage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"propcatalog/internal/logger"
)

// Presigner issues time-limited download URLs for object keys.
type Presigner interface {
	// PresignGet returns a URL that downloads key without credentials until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// URLResolver turns a stored file reference into a URL. References that are
// already absolute http(s) URLs are returned unchanged, as is everything when
// no Presigner is configured.
type URLResolver struct {
	presigner Presigner
	expiry    time.Duration
	log       logger.Logger
}

// NewURLResolver builds a resolver. A nil presigner disables presigning.
func NewURLResolver(p Presigner, expiry time.Duration, log logger.Logger) *URLResolver {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &URLResolver{presigner: p, expiry: expiry, log: log}
}

// Resolve returns the URL for ref. A presign failure is logged and the
// stored reference is returned so one bad object never fails a query.
func (r *URLResolver) Resolve(ctx context.Context, ref string) string {
	if r == nil || r.presigner == nil || ref == "" || isAbsolute(ref) {
		return ref
	}
	u, err := r.presigner.PresignGet(ctx, strings.TrimPrefix(ref, "/"), r.expiry)
	if err != nil {
		r.log.WithContext(ctx).Warn("presign image failed", "file", ref, "error", err)
		return ref
	}
	return u
}

// ResolvePtr resolves an optional reference in place.
func (r *URLResolver) ResolvePtr(ctx context.Context, ref *string) *string {
	if ref == nil {
		return nil
	}
	u := r.Resolve(ctx, *ref)
	return &u
}

func isAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
