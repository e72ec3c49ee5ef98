// Package syncer schedules and executes sync rounds.
//
// A round downloads the shared document, merges it with the local replica,
// saves the result locally and uploads it. Rounds are triggered on demand,
// on a fixed interval, and by debounced local-change notifications; at most
// one round runs at a time and extra triggers are dropped.
package syncer
