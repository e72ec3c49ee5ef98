// Package remote reads and writes the shared sync document.
//
// The document travels as a single JSON object, optionally sealed with
// AES-GCM, stored under a fixed key in an S3-compatible bucket. The sync
// engine only sees the Client interface; transport concerns such as bucket
// bootstrap, missing objects and corrupt payloads stay inside this package.
package remote
