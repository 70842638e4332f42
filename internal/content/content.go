// Package content finds text the way a reader would see it on the page.
package content

import (
	"context"
	"errors"

	"github.com/mj1618/websteps/internal/platform"
)

// ContainsVisibleText reports whether text appears in a visible element under
// root (nil for the whole document). Only innermost matches count: an element
// is skipped when one of its children also contains the text, so the body
// never matches just because something inside it does.
//
// Elements that go stale during the search are ignored.
func ContainsVisibleText(ctx context.Context, tree platform.Tree, root platform.ElementRef, text string) (bool, error) {
	candidates, err := tree.FindAll(ctx, platform.Query{Contains: text, Within: root})
	if err != nil {
		return false, err
	}
	for _, el := range candidates {
		ok, err := innermostVisible(ctx, tree, el, text)
		if errors.Is(err, platform.ErrStale) {
			continue
		}
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func innermostVisible(ctx context.Context, tree platform.Tree, el platform.ElementRef, text string) (bool, error) {
	inner, err := tree.FindAll(ctx, platform.Query{Contains: text, Within: el, ChildrenOnly: true})
	if err != nil {
		return false, err
	}
	if len(inner) > 0 {
		return false, nil
	}
	return tree.IsVisible(ctx, el)
}
