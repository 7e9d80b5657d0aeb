// Package client talks to the travel diary backend.
//
// # Overview
//
// The package provides:
//  1. The Gateway contract used by the services: identity (Register, Login,
//     CurrentUser, Logout), entry documents (create, list by owner, get,
//     update, delete) and the read-only tips listing.
//  2. AppwriteClient, an implementation over the Appwrite REST API. It keeps
//     the session secret, mints short-lived JWTs for document calls and
//     guards every round trip with a circuit breaker.
//  3. InstrumentedGateway, a Prometheus decorator around any Gateway.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) and the
//     CredentialStore implementations that let a session survive restarts.
//
// # Error Handling
//
// Failures are classified by sentinel errors matched with errors.Is:
// ErrValidation, ErrNotAuthenticated, ErrAuthFailure, ErrNotFound,
// ErrConflict, ErrNetwork, ErrDuplicateAccount and ErrInvalidCredentials.
// Gateway failures are *GatewayError values carrying the operation, the HTTP
// status and the backend's own error type and message.
//
// Concurrency & Contexts
//
// AppwriteClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation and deadlines.
package client
