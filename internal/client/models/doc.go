// Package models defines the client-side data model of the diary: entries,
// their attachments, files staged for upload and the auth payloads exchanged
// with the backend.
//
// JSON tags follow the backend wire format (Portuguese field names such as
// "titulo" and "midias"); Go names describe what the fields hold.
package models
