package scorerestorer

// DefaultOptions returns the recommended set of options for production use.
// Currently this is panic recovery only.
func DefaultOptions() []Option {
	return []Option{
		WithRecovery(),
	}
}
