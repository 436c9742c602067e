// Package client contains the transport layer of the diario CLI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract of the diary backend (see the Client
//     interface): auth endpoints, entry CRUD and attachment download.
//  2. A REST/JSON implementation (see HTTPClient) that injects the bearer
//     token read from a TokenSource and streams multipart bodies so staged
//     files are never fully buffered.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Responses are mapped to sentinel errors matched with errors.Is:
// ErrAuthRequired (missing token or 401), ErrForbidden (403), ErrNotFound
// (404), ErrPayloadTooLarge (413), ErrUnavailable (transport failures and
// gateway errors), ErrMalformedResponse and ErrUnexpectedStatus. Status
// failures are *StatusError values carrying method, path and code. KindOf
// folds any error into the categories shown to the user.
//
// Entry create and update treat only HTTP 200 as success.
package client
