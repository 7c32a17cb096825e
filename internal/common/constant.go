// Package common contains shared constants, sentinel errors and small helpers
// used across taskkeeper components.
package common

// SessionCookieName is the cookie carrying the session token issued at login.
const SessionCookieName = "session_token"

// DueDateLayout is the textual format accepted for task due dates
// (HTML datetime-local input).
const DueDateLayout = "2006-01-02T15:04"
