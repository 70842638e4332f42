package steps

import "strings"

func registerNavigation(r *Registry) {
	r.Register(`I visit "(.*?)"`, visit)
	r.Register(`I go to "(.*?)"`, visit)
	r.Register(`I visit site page "([^"]*)"`, visitSitePage)
	r.Register(`I should be at "(.*?)"`, urlShouldBe)
	r.Register(`The browser's URL should be "(.*?)"`, urlShouldBe)
	r.Register(`The browser's URL should contain "(.*?)"`, urlShouldContain)
	r.Register(`The browser's URL should not contain "(.*?)"`, urlShouldNotContain)
}

func visit(c *Context, url string) error {
	return Scoped(func() error { return c.Tree.Navigate(c.Ctx(), url) })
}

func visitSitePage(c *Context, page string) error {
	url, err := c.SiteURL(page)
	if err != nil {
		return err
	}
	return visit(c, url)
}

func urlShouldBe(c *Context, want string) error {
	got, err := c.Tree.CurrentURL(c.Ctx())
	if err != nil {
		return err
	}
	return Assert(got == want, "browser is at %q, expected %q", got, want)
}

func urlShouldContain(c *Context, part string) error {
	got, err := c.Tree.CurrentURL(c.Ctx())
	if err != nil {
		return err
	}
	return Assert(strings.Contains(got, part), "browser URL %q does not contain %q", got, part)
}

func urlShouldNotContain(c *Context, part string) error {
	got, err := c.Tree.CurrentURL(c.Ctx())
	if err != nil {
		return err
	}
	return Refute(strings.Contains(got, part), "browser URL %q contains %q", got, part)
}
