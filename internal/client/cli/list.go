package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// List prints the snapshot newest first and remembers the order for
// commands that take a list number.
func (a *App) List(context.Context) error {
	a.listing = a.entries.Sorted()
	if len(a.listing) == 0 {
		a.println("No entries yet. Use 'new' to add one.")
		return nil
	}
	for i, e := range a.listing {
		a.printf("%2d. %s\n", i+1, summary(e))
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.entries.Refresh(ctx); err != nil {
		return err
	}
	return a.List(ctx)
}

// Show fetches the entry from the backend so the user sees its latest state.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.target(args, "Enter entry number or id to show")
	if err != nil {
		return err
	}

	e, err := a.entries.Get(ctx, id)
	if err != nil {
		return err
	}

	a.printf("%s\n", e.Title)
	a.printf("  location: %s\n", e.Location)
	a.printf("  created:  %s\n", e.CreatedAt)
	a.printf("  id:       %s\n", e.ID)
	a.printf("\n%s\n", e.Content)
	if len(e.Images) > 0 {
		a.println()
		for i, ref := range e.Images {
			a.printf("  [%d] %s\n", i+1, ref)
		}
	}
	return nil
}

// target resolves "<n|id>". A number within the last listing picks that
// entry; anything else is taken as an id. With no argument the user is
// prompted.
func (a *App) target(args []string, prompt string) (string, error) {
	var ref string
	if len(args) > 0 {
		ref = args[0]
	} else {
		s, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return "", err
		}
		ref = s
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(a.listing) {
		return a.listing[n-1].ID, nil
	}
	return ref, nil
}

func summary(e models.TravelEntry) string {
	var b strings.Builder
	b.WriteString(e.Title)
	if e.Location != "" {
		b.WriteString(" @ ")
		b.WriteString(e.Location)
	}
	if at, err := models.ParseCreatedAt(e.CreatedAt); err == nil {
		b.WriteString(" (")
		b.WriteString(at.Format("2006-01-02"))
		b.WriteString(")")
	}
	if n := len(e.Images); n > 0 {
		b.WriteString(" [")
		b.WriteString(strconv.Itoa(n))
		b.WriteString(" img]")
	}
	if !e.Synced() {
		b.WriteString(" *")
	}
	return b.String()
}
