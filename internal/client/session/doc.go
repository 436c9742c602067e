// Package session holds the authenticated session of the client: the access
// token and the user identifier returned by login.
//
// A single *Store is created at startup, loaded from persistence once and
// then mutated only by Login and Logout. Components that issue authenticated
// requests receive the Store explicitly and read the token through it;
// components that react to login state changes register with Subscribe.
package session
