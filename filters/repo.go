package filters

// Repo persists the whole filter table under a fixed key.
type Repo interface {
	// Load returns the persisted filter table; nil when none was saved.
	Load() (map[string]Values, error)
	// Save overwrites the persisted filter table.
	Save(map[string]Values) error
}
