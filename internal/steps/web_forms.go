package steps

import (
	"github.com/mj1618/websteps/internal/locator"
	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/platform"
)

func registerForms(r *Registry) {
	r.Register(`I should see a form that goes to "(.*?)"`, seeForm)
	r.Register(`I fill in "(.*?)" with "(.*?)"`, fillIn)
	r.Register(`I press "(.*?)"`, press)
	r.Register(`I click on label "([^"]*)"`, clickLabel)
	r.Register(`Input "([^"]*)" (?:has|should have) value "([^"]*)"`, inputHasValue)

	r.Register(`I check "(.*?)"`, func(c *Context, name string) error { return setChecked(c, name, true) })
	r.Register(`I uncheck "(.*?)"`, func(c *Context, name string) error { return setChecked(c, name, false) })
	r.Register(`The "(.*?)" checkbox should be checked`, func(c *Context, name string) error {
		return fieldShouldBe(c, model.KindCheckbox, name, true)
	})
	r.Register(`The "(.*?)" checkbox should not be checked`, func(c *Context, name string) error {
		return fieldShouldBe(c, model.KindCheckbox, name, false)
	})

	r.Register(`I select "(.*?)" from "(.*?)"`, selectOption)
	r.Register(`I select the following from "([^"]*?)":?`, selectFollowing)
	r.Register(`The "(.*?)" option from "(.*?)" should be selected`, optionShouldBeSelected)
	r.Register(`The following options from "([^"]*?)" should be selected:?`, followingShouldBeSelected)

	r.Register(`I choose "(.*?)"`, choose)
	r.Register(`The "(.*?)" option should be chosen`, func(c *Context, name string) error {
		return fieldShouldBe(c, model.KindRadio, name, true)
	})
	r.Register(`The "(.*?)" option should not be chosen`, func(c *Context, name string) error {
		return fieldShouldBe(c, model.KindRadio, name, false)
	})
}

func seeForm(c *Context, url string) error {
	ok, err := c.Exists(platform.Query{Tag: "form"}.WithAttr("action", url))
	if err != nil {
		return err
	}
	return Assert(ok, "no form that goes to %q", url)
}

func fillIn(c *Context, field, value string) error {
	ref, err := c.Locator.FindField(c.Ctx(), model.KindText, field)
	if err != nil {
		return err
	}
	return Scoped(func() error {
		if err := c.Tree.Clear(c.Ctx(), ref); err != nil {
			return err
		}
		return c.Tree.Type(c.Ctx(), ref, value)
	})
}

func press(c *Context, name string) error {
	ref, err := c.Locator.FindButton(c.Ctx(), name)
	if err != nil {
		return err
	}
	return c.Click(ref)
}

func clickLabel(c *Context, label string) error {
	refs, err := c.FindAll(platform.Query{Tag: "label", Text: label})
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return Failf("no label %q", label)
	}
	return c.Click(refs[0])
}

func inputHasValue(c *Context, field, want string) error {
	ref, err := c.Locator.FindValueField(c.Ctx(), field)
	if err != nil {
		return err
	}
	var got string
	err = Scoped(func() (err error) {
		got, _, err = c.Tree.Attribute(c.Ctx(), ref, "value")
		return err
	})
	if err != nil {
		return err
	}
	return Assert(got == want, "input %q has value %q, expected %q", field, got, want)
}

func selected(c *Context, ref platform.ElementRef) (bool, error) {
	var on bool
	err := Scoped(func() (err error) {
		on, err = c.Tree.IsSelected(c.Ctx(), ref)
		return err
	})
	return on, err
}

// setChecked clicks the checkbox only when it is not already in the wanted
// state.
func setChecked(c *Context, name string, want bool) error {
	ref, err := c.Locator.FindField(c.Ctx(), model.KindCheckbox, name)
	if err != nil {
		return err
	}
	on, err := selected(c, ref)
	if err != nil || on == want {
		return err
	}
	return c.Click(ref)
}

func fieldShouldBe(c *Context, kind model.FieldKind, name string, want bool) error {
	ref, err := c.Locator.FindField(c.Ctx(), kind, name)
	if err != nil {
		return err
	}
	on, err := selected(c, ref)
	if err != nil {
		return err
	}
	if want {
		return Assert(on, "%s %q is not selected", kind, name)
	}
	return Refute(on, "%s %q is selected", kind, name)
}

func choose(c *Context, name string) error {
	ref, err := c.Locator.FindField(c.Ctx(), model.KindRadio, name)
	if err != nil {
		return err
	}
	return c.Click(ref)
}

func selectOption(c *Context, option, sel string) error {
	ref, err := c.Locator.FindOption(c.Ctx(), sel, option)
	if err != nil {
		return err
	}
	return c.Click(ref)
}

// selectFollowing makes the listed options the whole selection of a multiple
// select. Each name is matched by option value first, then visible text.
func selectFollowing(c *Context, sel string) error {
	if len(c.Multiline) == 0 {
		return Failf("step needs a list of options")
	}
	box, err := c.Locator.FindField(c.Ctx(), model.KindSelect, sel)
	if err != nil {
		return err
	}
	_, multiple, err := c.Tree.Attribute(c.Ctx(), box, "multiple")
	if err != nil {
		return err
	}
	if !multiple {
		return Failf("select %q does not allow multiple selections", sel)
	}

	options, err := c.FindAll(platform.Query{Tag: "option", Within: box})
	if err != nil {
		return err
	}
	for _, opt := range options {
		on, err := selected(c, opt)
		if err != nil {
			return err
		}
		if on {
			if err := c.Click(opt); err != nil {
				return err
			}
		}
	}

	for _, name := range c.Multiline {
		opt, err := optionByValueOrText(c, box, name)
		if err != nil {
			return err
		}
		if opt == nil {
			return &locator.NotFoundError{Query: model.FieldQuery{Kind: model.KindOption, Name: name, Within: sel}}
		}
		on, err := selected(c, opt)
		if err != nil {
			return err
		}
		if !on {
			if err := c.Click(opt); err != nil {
				return err
			}
		}
	}
	return nil
}

func optionByValueOrText(c *Context, box platform.ElementRef, name string) (platform.ElementRef, error) {
	base := platform.Query{Tag: "option", Within: box}
	byText := base
	byText.Text = name
	for _, q := range []platform.Query{base.WithAttr("value", name), byText} {
		refs, err := c.FindAll(q)
		if err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			return refs[0], nil
		}
	}
	return nil, nil
}

func optionShouldBeSelected(c *Context, option, sel string) error {
	ref, err := c.Locator.FindOption(c.Ctx(), sel, option)
	if err != nil {
		return err
	}
	on, err := selected(c, ref)
	if err != nil {
		return err
	}
	return Assert(on, "option %q from %q is not selected", option, sel)
}

// followingShouldBeSelected checks the selection state of every option of
// the select. An option is expected to be selected when its id, name, value
// or text appears in the list, so an empty list means none may be selected.
func followingShouldBeSelected(c *Context, sel string) error {
	box, err := c.Locator.FindField(c.Ctx(), model.KindSelect, sel)
	if err != nil {
		return err
	}
	listed := make(map[string]bool, len(c.Multiline))
	for _, name := range c.Multiline {
		listed[name] = true
	}

	options, err := c.FindAll(platform.Query{Tag: "option", Within: box, ChildrenOnly: true})
	if err != nil {
		return err
	}
	for _, opt := range options {
		keys, err := optionKeys(c, opt)
		if err != nil {
			return err
		}
		want := false
		for _, k := range keys {
			if listed[k] {
				want = true
				break
			}
		}
		on, err := selected(c, opt)
		if err != nil {
			return err
		}
		if want && !on {
			return Failf("option %q from %q should be selected", keys[len(keys)-1], sel)
		}
		if !want && on {
			return Failf("option %q from %q should not be selected", keys[len(keys)-1], sel)
		}
	}
	return nil
}

// optionKeys returns the present id, name and value attributes of opt,
// followed by its text.
func optionKeys(c *Context, opt platform.ElementRef) ([]string, error) {
	var keys []string
	err := Scoped(func() error {
		for _, attr := range []string{"id", "name", "value"} {
			v, ok, err := c.Tree.Attribute(c.Ctx(), opt, attr)
			if err != nil {
				return err
			}
			if ok {
				keys = append(keys, v)
			}
		}
		text, err := c.Tree.Text(c.Ctx(), opt)
		if err != nil {
			return err
		}
		keys = append(keys, text)
		return nil
	})
	return keys, err
}
