package config

import "context"

// ConfigSource represents a source of configuration data that can be loaded
// and optionally watched for changes.
//
// Implementations include TOML files, environment variables and command-line
// flags. Sources are folded in order, later sources overriding earlier ones.
type ConfigSource interface {
	// Load retrieves the source's data as a Table. The returned Table belongs
	// to the caller, which may merge it into an accumulator.
	//
	// The context can be used to cancel long-running loads. Implementations
	// should check ctx.Done() and return ctx.Err() if cancelled.
	//
	// Returns an error if the source cannot be accessed, read, or parsed.
	Load(ctx context.Context) (Table, error)

	// Watch starts monitoring the source and sends an Event on ch each time
	// it changes. It must return once monitoring is set up; delivery stops
	// when ctx is cancelled. The channel must not be closed by the
	// implementation.
	//
	// Sources that cannot change during the process lifetime return nil
	// immediately and never send.
	Watch(ctx context.Context, ch chan<- Event) error

	// Name returns a human-readable identifier for this source, used in
	// error messages and logs. File sources use their path.
	Name() string
}

// Event represents a change notification.
//
// Sources send an Event with only Source set when their data may have changed.
// A Manager sends an Event to its subscribers after every reload attempt:
// either with the old and new documents and the changed keys, or with Err set
// when the reload failed and the previous document was kept.
type Event struct {
	// Source names the source that triggered the reload, if any.
	Source string

	// ChangedKeys lists the top-level keys whose values differ between
	// OldDocument and NewDocument, sorted.
	ChangedKeys []string

	OldDocument Table
	NewDocument Table

	// Err is the reload failure, if any.
	Err error
}
