package core

import "context"

// Module is one part of the cfgstack service (HTTP server, actuator) that
// takes part in the App lifecycle.
type Module interface {
	Name() string
	// DependsOn names modules that must be configured and started first.
	DependsOn() []string
	// Configure registers the module's objects into the container.
	Configure(c *Container) error
	// Start begins long-running work. It must not block.
	Start(ctx context.Context, c *Container) error
	// Stop releases what Start acquired.
	Stop(ctx context.Context, c *Container) error
}
