package repository

// NoopCache disables result caching.
type NoopCache struct{}

func (NoopCache) Get(string) (string, bool) { return "", false }

func (NoopCache) Set(string, string) error { return nil }
