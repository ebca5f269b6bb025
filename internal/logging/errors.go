package logging

import "github.com/samber/oops"

// ErrAttrs turns err into key-value pairs for a log call. Errors built with
// samber/oops contribute their code, domain and context as well.
//
//	log.Error(ctx, "login failed", logging.ErrAttrs(err)...)
func ErrAttrs(err error) []any {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return attrs
	}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if domain := oopsErr.Domain(); domain != "" {
		attrs = append(attrs, "domain", domain)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}
