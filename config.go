package slicepool

import "log/slog"

type Config struct {
	// Logger receives debug records for allocation misses and storage teardown,
	// and error records when closing the storage fails. Nil means slog.Default().
	Logger *slog.Logger

	// ClearOnRelease zeroes a view before its chunk is returned to the pool,
	// so the next handle over the same range starts from zero values.
	ClearOnRelease bool
}

func DefaultConfig() Config {
	return Config{
		Logger:         slog.Default(),
		ClearOnRelease: false,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
