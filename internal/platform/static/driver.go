package static

import (
	"context"

	"github.com/mj1618/websteps/internal/platform"
)

func init() {
	platform.RegisterDriver("static", open)
}

func open(_ context.Context, opts platform.Options) (*platform.Session, error) {
	doc := New(NewHTTPFetcher(opts.Timeout, opts.UserAgent))
	return platform.NewSession("static", doc, doc.Close), nil
}
