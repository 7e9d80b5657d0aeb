package services

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

var ErrIndexOutOfRange = errors.New("image index out of range")

// Attachments is the ordered list of images picked during one create or
// edit visit. Duplicates are kept. It is not safe for concurrent use.
type Attachments struct {
	refs []string
}

func NewAttachments() *Attachments {
	return &Attachments{refs: []string{}}
}

// AttachmentsFor seeds the list with the images of an entry being edited.
func AttachmentsFor(e models.TravelEntry) *Attachments {
	return &Attachments{refs: append([]string{}, e.Images...)}
}

func (a *Attachments) Add(refs ...string) {
	a.refs = append(a.refs, refs...)
}

// RemoveAt drops the image at i, keeping the order of the rest.
func (a *Attachments) RemoveAt(i int) error {
	if i < 0 || i >= len(a.refs) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(a.refs))
	}
	a.refs = slices.Delete(a.refs, i, i+1)
	return nil
}

// Snapshot returns a copy suitable for a create or update call.
func (a *Attachments) Snapshot() []string {
	return append([]string{}, a.refs...)
}

func (a *Attachments) Len() int {
	return len(a.refs)
}
