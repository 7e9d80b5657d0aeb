package models

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

// CreatedAtLayout is the ISO-8601 form written for defaulted creation
// timestamps, matching what browsers emit for Date.toISOString.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// TravelEntry is a journal entry as stored remotely.
type TravelEntry struct {
	ID        string
	Title     string
	Content   string
	Location  string
	Images    []string
	CreatedAt string
	Owner     string
}

// Persisted reports whether the remote store has assigned an identifier.
func (e TravelEntry) Persisted() bool {
	return e.ID != ""
}

// Synced reports whether the entry is persisted and none of its images point
// at a device-local file.
func (e TravelEntry) Synced() bool {
	if !e.Persisted() {
		return false
	}
	return !slices.ContainsFunc(e.Images, IsLocalRef)
}

// Clone returns a deep copy.
func (e TravelEntry) Clone() TravelEntry {
	e.Images = cloneRefs(e.Images)
	return e
}

// Fields returns the user-editable part of the entry.
func (e TravelEntry) Fields() EntryFields {
	return EntryFields{
		Title:    e.Title,
		Content:  e.Content,
		Location: e.Location,
		Images:   cloneRefs(e.Images),
	}
}

// EntryFields is the set of values sent on update.
type EntryFields struct {
	Title    string   `validate:"required"`
	Content  string   `validate:"required"`
	Location string   `validate:"required"`
	Images   []string `validate:"dive,required"`
}

// DraftEntry is an entry under construction that has no identifier yet.
// Images may mix remote URLs and device-local references.
type DraftEntry struct {
	Title     string   `validate:"required"`
	Content   string   `validate:"required"`
	Location  string   `validate:"required"`
	Images    []string `validate:"dive,required"`
	CreatedAt string   `validate:"omitempty,iso8601"`
}

// EntryPatch carries the fields to change on update. Nil means unchanged.
type EntryPatch struct {
	Title    *string
	Content  *string
	Location *string
	Images   []string
	// SetImages distinguishes "clear all images" from "leave images alone".
	SetImages bool
}

// Apply returns base with the patch applied. base is not modified.
func (p EntryPatch) Apply(base EntryFields) EntryFields {
	out := base
	out.Images = cloneRefs(base.Images)
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.SetImages {
		out.Images = cloneRefs(p.Images)
	}
	return out
}

// Complete reports whether every field is set, so the patch can stand in for
// an entry that is not loaded locally.
func (p EntryPatch) Complete() bool {
	return p.Title != nil && p.Content != nil && p.Location != nil && p.SetImages
}

// IsLocalRef reports whether an image reference points at a device-local
// file (file://, content://, a bare path, ...) rather than an http(s) URL.
func IsLocalRef(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host == ""
	default:
		return true
	}
}

// ParseCreatedAt parses an ISO-8601 creation timestamp.
func ParseCreatedAt(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatCreatedAt renders t the way defaulted entries store it.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// SortedByCreatedDesc returns a new slice, newest first. Entries whose
// timestamp does not parse go last; ties keep their input order, so calling
// it repeatedly gives the same result. The input is left untouched.
func SortedByCreatedDesc(entries []TravelEntry) []TravelEntry {
	type keyed struct {
		entry TravelEntry
		at    time.Time
		ok    bool
	}

	tmp := make([]keyed, len(entries))
	for i, e := range entries {
		at, err := ParseCreatedAt(e.CreatedAt)
		tmp[i] = keyed{entry: e.Clone(), at: at, ok: err == nil}
	}

	slices.SortStableFunc(tmp, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	out := make([]TravelEntry, len(tmp))
	for i, k := range tmp {
		out[i] = k.entry
	}
	return out
}

// CloneEntries deep-copies a list of entries. A nil input gives an empty,
// non-nil slice.
func CloneEntries(entries []TravelEntry) []TravelEntry {
	out := make([]TravelEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

func cloneRefs(refs []string) []string {
	if refs == nil {
		return nil
	}
	return slices.Clone(refs)
}
