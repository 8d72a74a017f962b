// Package editor loads, edits and saves the two permission forms of the
// console: a user's overrides and a role's menu assignments.
//
// An editor fetches what its form needs from a backend.Backend, holds the
// in-memory permission state and turns it into the save payload. Editors
// are not safe for concurrent use.
package editor
