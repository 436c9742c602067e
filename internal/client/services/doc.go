// Package services contains application services of the diario client that
// combine the backend client with local state: authentication (which owns
// the session store transitions) and attachment download.
package services
