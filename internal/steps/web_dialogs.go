package steps

import (
	"errors"

	"github.com/mj1618/websteps/internal/platform"
)

func registerDialogs(r *Registry) {
	r.Register(`I accept the alert`, acceptAlert)
	r.Register(`I dismiss the alert`, dismissAlert)
}

// Both are no-ops when no dialog is showing.

func acceptAlert(c *Context) error {
	if err := c.Session.AcceptDialog(c.Ctx()); err != nil && !errors.Is(err, platform.ErrNoDialog) {
		return err
	}
	return nil
}

func dismissAlert(c *Context) error {
	if err := c.Session.DismissDialog(c.Ctx()); err != nil && !errors.Is(err, platform.ErrNoDialog) {
		return err
	}
	return nil
}
