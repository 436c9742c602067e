// Package cli is the terminal front end of the diary client.
//
// App wires configuration, the persisted session, the REST client, the
// navigation router and the views. Commands are available two ways: as
// cobra subcommands (diario list, diario new --title ...) and inside an
// interactive REPL started by running diario without arguments. Creating
// and editing entries without flags opens an editor sub-prompt.
//
// Navigation goes through the router on the same paths the web client
// used, so every guarded view redirects to the login view when no session
// is present, before any request is sent.
package cli
