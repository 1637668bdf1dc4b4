// Package services holds the engine's managers: the session manager, the
// conversation manager and the generation scheduler. All three persist
// through a shared store.Store and serialize their read-modify-write
// sequences with Store.Atomic.
package services
