// Package session persists the client's auth session as key/value rows in
// the local SQLite database. Only two keys are ever written: the access token
// and the user identifier.
package session
