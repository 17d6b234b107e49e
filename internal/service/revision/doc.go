// Package revision coordinates bounded review sessions: snapshotting a due
// queue, applying outcomes as they arrive, re-drilling failed items before
// the session ends, and finalizing aggregate statistics.
package revision
