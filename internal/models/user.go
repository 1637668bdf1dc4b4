// Package models defines the records owned by the engine: credentials and
// users, conversation threads and messages, generation records and jobs.
package models

import "fmt"

// Plan is a subscription tier.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanStarter || p == PlanPro
}

// Credential is a stored account. Only the salted verifier of the password is
// kept. Credentials never leave the session manager.
type Credential struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Plan     Plan   `json:"plan"`
	Credits  int    `json:"credits"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

// User returns the externally visible identity derived from c.
func (c Credential) User() User {
	return User{ID: c.ID, Name: c.Name, Email: c.Email, Plan: c.Plan, Credits: c.Credits}
}

// User is the identity record exposed to collaborators.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Plan    Plan   `json:"plan"`
	Credits int    `json:"credits"`
}

func (u User) String() string {
	return fmt.Sprintf("%s <%s> plan=%s credits=%d", u.Name, u.Email, u.Plan, u.Credits)
}

// UserUpdate carries the fields to merge into the active user; nil fields are
// left unchanged.
type UserUpdate struct {
	Name    *string
	Email   *string
	Plan    *Plan
	Credits *int
}

// Apply returns u with the non-nil fields of upd merged in.
func (upd UserUpdate) Apply(u User) User {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Plan != nil {
		u.Plan = *upd.Plan
	}
	if upd.Credits != nil {
		u.Credits = *upd.Credits
	}
	return u
}
