// Package services holds the client-side application services of the travel
// diary: the Session that gates everything, the EntryService that keeps the
// local entry snapshot in step with the backend, Attachments for picking
// images, TipService and the optional ImageSync upload step.
//
// Services never apply a mutation before the backend confirmed it. When a
// call fails the state a reader can observe is exactly what it was before.
package services
