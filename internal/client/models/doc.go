// Package models defines the client-side data model of the travel diary:
// users, travel entries (persisted and draft), update patches, travel tips
// and the upload ledger records.
//
// Values here are plain data. Slices are never shared between a snapshot
// held by a service and a copy handed to a caller; use Clone when passing
// entries across that boundary.
package models
