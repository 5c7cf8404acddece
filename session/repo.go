package session

// Repo persists the session snapshot. Implementations decide the medium
// (BoltDB file, in-memory fake); the store only requires load/save
// semantics so persistence is swappable in tests.
type Repo interface {
	// Load returns the persisted session and whether one was found.
	Load() (Session, bool, error)
	// Save overwrites the persisted session.
	Save(Session) error
	// Delete removes the persisted session. Deleting a missing session is
	// not an error.
	Delete() error
}
