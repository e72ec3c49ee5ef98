// Package services implements the editing operations exposed to the user
// interface. All writes go through the local replica and trigger a debounced
// sync.
package services
