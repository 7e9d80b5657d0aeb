package cli

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/client/services"
)

// New walks the user through a draft and saves it. The draft is checked
// by the entry service before anything is sent.
func (a *App) New(ctx context.Context) error {

	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}

	location, err := getSimpleText(a.reader, "Enter location", a.out)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Enter your story", a.out)
	if err != nil {
		return err
	}

	images := services.NewAttachments()
	if _, err := a.editImages(images); err != nil {
		return err
	}

	e, err := a.entries.Create(ctx, models.DraftEntry{
		Title:    title,
		Content:  content,
		Location: location,
		Images:   images.Snapshot(),
	})
	if err != nil {
		return err
	}

	a.printf("Saved %q (%s)\n", e.Title, e.ID)
	return nil
}

// Edit asks for each field with the current value as default. Only
// changed fields go into the patch, unless the entry is not in the local
// list, in which case every field is sent.
func (a *App) Edit(ctx context.Context, args []string) error {

	id, err := a.target(args, "Enter entry number or id to edit")
	if err != nil {
		return err
	}

	current, loaded := a.entries.Lookup(id)
	if !loaded {
		fetched, err := a.entries.Get(ctx, id)
		if err != nil {
			return err
		}
		current = *fetched
	}

	var patch models.EntryPatch
	if patch.Title, err = GetOptionalText(a.reader, "Title", current.Title, a.out); err != nil {
		return err
	}
	if patch.Location, err = GetOptionalText(a.reader, "Location", current.Location, a.out); err != nil {
		return err
	}

	a.printf("Current story:\n%s\n", current.Content)
	content, err := GetMultiline(a.reader, "Enter a new story (empty keeps it)", a.out)
	if err != nil {
		return err
	}
	if content != "" {
		patch.Content = &content
	}

	images := services.AttachmentsFor(current)
	changed, err := a.editImages(images)
	if err != nil {
		return err
	}
	if changed {
		patch.Images, patch.SetImages = images.Snapshot(), true
	}

	if !loaded {
		fields := patch.Apply(current.Fields())
		patch = models.EntryPatch{
			Title:     &fields.Title,
			Content:   &fields.Content,
			Location:  &fields.Location,
			Images:    fields.Images,
			SetImages: true,
		}
	}

	e, err := a.entries.Update(ctx, id, patch)
	if err != nil {
		return err
	}

	a.printf("Updated %q\n", e.Title)
	return nil
}

// editImages runs the image sub-prompt until "done" or end of input and
// reports whether the list was changed.
//
//	add <ref...>   append one or more image references
//	rm <n>         remove the n-th image
//	done           finish
func (a *App) editImages(att *services.Attachments) (bool, error) {
	changed := false
	for {
		refs := att.Snapshot()
		if len(refs) == 0 {
			a.println("Images: none")
		} else {
			a.println("Images:")
			for i, ref := range refs {
				a.printf("  [%d] %s\n", i+1, ref)
			}
		}

		line, err := getSimpleText(a.reader, "Images: add <ref...>, rm <n>, done", a.out)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return changed, nil
			}
			return changed, err
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "add":
			if len(parts) < 2 {
				a.println("Usage: add <ref...>")
				continue
			}
			att.Add(parts[1:]...)
			changed = true

		case "rm":
			if len(parts) != 2 {
				a.println("Usage: rm <n>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				a.println("Usage: rm <n>")
				continue
			}
			if err := att.RemoveAt(n - 1); err != nil {
				a.println(describeError(err))
				continue
			}
			changed = true

		case "done":
			return changed, nil

		default:
			a.println("Unknown image command:", parts[0])
		}
	}
}
