package steps

import (
	"github.com/mj1618/websteps/internal/platform"
)

func registerLinks(r *Registry) {
	r.Register(`I click "(.*?)"`, clickLink)
	r.Register(`I should see a link with the url "(.*?)"`, seeLinkWithURL)
	r.Register(`I should see a link to "(.*?)" with the url "(.*?)"`, seeLinkToWithURL)
	r.Register(`I should see a link that contains the text "(.*?)" and the url "(.*?)"`, seeLinkContainingWithURL)

	r.Register(`I should see item with tooltip "([^"]*)"`, seeTooltip)
	r.Register(`I should not see item with tooltip "([^"]*)"`, notSeeTooltip)
	r.Register(`I (?:click|press) item with tooltip "([^"]*)"`, clickTooltip)
}

func clickLink(c *Context, text string) error {
	ref, err := c.Locator.FindLink(c.Ctx(), text)
	if err != nil {
		return err
	}
	return c.Click(ref)
}

func seeLinkWithURL(c *Context, url string) error {
	ok, err := c.Exists(platform.Query{Tag: "a"}.WithAttr("href", url))
	if err != nil {
		return err
	}
	return Assert(ok, "no link with the url %q", url)
}

func seeLinkToWithURL(c *Context, text, url string) error {
	ok, err := c.Exists(platform.Query{Tag: "a", Text: text}.WithAttr("href", url))
	if err != nil {
		return err
	}
	return Assert(ok, "no link to %q with the url %q", text, url)
}

func seeLinkContainingWithURL(c *Context, text, url string) error {
	ok, err := c.Exists(platform.Query{Tag: "a", Contains: text}.WithAttr("href", url))
	if err != nil {
		return err
	}
	return Assert(ok, "no link containing %q with the url %q", text, url)
}

// tooltipped returns elements whose title, or Bootstrap's stashed
// data-original-title, equals tooltip.
func tooltipped(c *Context, tooltip string) ([]platform.ElementRef, error) {
	var out []platform.ElementRef
	for _, attr := range []string{"title", "data-original-title"} {
		refs, err := c.FindAll(platform.Query{}.WithAttr(attr, tooltip))
		if err != nil {
			return nil, err
		}
		out = append(out, refs...)
	}
	return out, nil
}

func seeTooltip(c *Context, tooltip string) error {
	refs, err := tooltipped(c, tooltip)
	if err != nil {
		return err
	}
	return Assert(len(refs) > 0, "no item with tooltip %q", tooltip)
}

func notSeeTooltip(c *Context, tooltip string) error {
	refs, err := tooltipped(c, tooltip)
	if err != nil {
		return err
	}
	return Refute(len(refs) > 0, "found %d item(s) with tooltip %q", len(refs), tooltip)
}

// clickTooltip clicks the first tooltipped item that accepts the click.
func clickTooltip(c *Context, tooltip string) error {
	refs, err := tooltipped(c, tooltip)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return Failf("no item with tooltip %q", tooltip)
	}
	var last error
	for _, ref := range refs {
		if last = c.Click(ref); last == nil {
			return nil
		}
	}
	return last
}
