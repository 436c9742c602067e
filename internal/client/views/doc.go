// Package views holds the view models behind the entry table and the entry
// detail screen. They own the state the CLI renders and issue the requests
// that change it; rendering itself lives in the cli package.
package views
