package steps

import (
	"fmt"
	"strings"
)

func registerContent(r *Registry) {
	r.Register(`I should see "([^"]+)" within (\d+) seconds?`, seeWithin)
	r.Register(`I should see "([^"]+)"`, see)
	r.Register(`I see "([^"]+)"`, see)
	r.Register(`I should not see "([^"]+)"`, notSee)

	r.Register(`I should see an element with id of "(.*?)" within (\d+) seconds?`, seeElementWithin)
	r.Register(`I should see an element with id of "(.*?)"`, seeElement)
	r.Register(`I should not see an element with id of "(.*?)"`, notSeeElement)
	r.Register(`The element with id of "(.*?)" contains "(.*?)"`, elementContains)
	r.Register(`The element with id of "(.*?)" does not contain "(.*?)"`, elementNotContains)
}

func seeWithin(c *Context, text string, n int) error {
	return c.Eventually(seconds(n), fmt.Sprintf("text %q to be visible", text), func() (bool, error) {
		return c.SeesText(text)
	})
}

func see(c *Context, text string) error {
	ok, err := c.SeesText(text)
	if err != nil {
		return err
	}
	return Assert(ok, "text %q is not visible on the page", text)
}

func notSee(c *Context, text string) error {
	ok, err := c.SeesText(text)
	if err != nil {
		return err
	}
	return Refute(ok, "text %q is visible on the page", text)
}

func seeElementWithin(c *Context, id string, n int) error {
	return c.Eventually(seconds(n), fmt.Sprintf("element with id %q to be visible", id), func() (bool, error) {
		ref, err := c.ElementByID(id)
		if err != nil || ref == nil {
			return false, err
		}
		return c.Tree.IsVisible(c.Ctx(), ref)
	})
}

func seeElement(c *Context, id string) error {
	ref, err := c.ElementByID(id)
	if err != nil {
		return err
	}
	if ref == nil {
		return Failf("no element with id %q", id)
	}
	var visible bool
	err = Scoped(func() (err error) {
		visible, err = c.Tree.IsVisible(c.Ctx(), ref)
		return err
	})
	if err != nil {
		return err
	}
	return Assert(visible, "element with id %q is not visible", id)
}

// notSeeElement passes when the element is absent or hidden.
func notSeeElement(c *Context, id string) error {
	ref, err := c.ElementByID(id)
	if err != nil || ref == nil {
		return err
	}
	var visible bool
	err = Scoped(func() (err error) {
		visible, err = c.Tree.IsVisible(c.Ctx(), ref)
		return err
	})
	if err != nil {
		return err
	}
	return Refute(visible, "element with id %q is visible", id)
}

func elementContains(c *Context, id, s string) error {
	refs, err := c.FindAll(idQuery(id))
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return Failf("no element with id %q", id)
	}
	q := idQuery(id)
	q.Contains = s
	ok, err := c.Exists(q)
	if err != nil {
		return err
	}
	return Assert(ok, "element with id %q does not contain %q", id, s)
}

func elementNotContains(c *Context, id, s string) error {
	ref, err := c.ElementByID(id)
	if err != nil {
		return err
	}
	if ref == nil {
		return Failf("no element with id %q", id)
	}
	var text string
	err = Scoped(func() (err error) {
		text, err = c.Tree.Text(c.Ctx(), ref)
		return err
	})
	if err != nil {
		return err
	}
	return Refute(strings.Contains(text, s), "element with id %q contains %q", id, s)
}
