package engine

// Options represents configuration options for the Engine.
type Options struct {
	// TradeCapacity pre-sizes the in-memory trade record.
	TradeCapacity int
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		TradeCapacity: 1024,
	}
}
