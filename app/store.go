package app

// Store ...
type Store interface {
	Close() error
	Views(page string) (int64, error)
	IncViews(page string) (int64, error)
}
