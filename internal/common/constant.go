// Package common contains shared constants, sentinel errors and small helpers
// used across the Vinony engine.
package common

// DefaultThreadTitle is the title of a thread that has no user message yet.
const DefaultThreadTitle = "New Chat"

// TitleLength is the number of characters of the first user message kept in
// a derived thread title.
const TitleLength = 30

// TitleEllipsis is appended to every derived thread title.
const TitleEllipsis = "..."

// StarterCredits is the credit balance granted on registration.
const StarterCredits = 100

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6
