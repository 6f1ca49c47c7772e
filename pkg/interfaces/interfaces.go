package interfaces

type UoW interface {
	Commit() error
	Rollback() error
	Finalize(err *error)
}

type Event interface {
	GetType() string
	// GetKey names the aggregate the event concerns, used to look up its tasks.
	GetKey() string
}
