// Package common contains constants and small helpers shared by the diary
// client packages.
package common

// AuthorizationHeaderName carries the bearer token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// Keys of the persisted session values. They match the names the web client
// kept in browser storage.
const (
	SessionKeyToken  = "token"
	SessionKeyUserID = "usuarioId"
)

// DefaultAPIURL is the backend origin used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8080"
