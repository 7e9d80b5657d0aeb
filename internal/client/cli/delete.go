package cli

import (
	"context"
	"strings"
)

// Delete removes an entry after a y/N confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {

	id, err := a.target(args, "Enter entry number or id to delete")
	if err != nil {
		return err
	}

	name := id
	if e, ok := a.entries.Lookup(id); ok {
		name = e.Title
	}

	answer, err := getSimpleText(a.reader, "Delete \""+name+"\"? [y/N]", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled")
		return nil
	}

	if err := a.entries.Remove(ctx, id); err != nil {
		return err
	}

	a.listing = nil
	a.println("Deleted")
	return nil
}
