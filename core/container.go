package core

import (
	"fmt"
	"reflect"
	"sync"
)

// Container holds one shared object per type: settings, logger, router.
type Container struct {
	mu  sync.RWMutex
	reg map[reflect.Type]any
}

func NewContainer() *Container {
	return &Container{reg: make(map[reflect.Type]any)}
}

// Provide stores v as the container's T, replacing any previous one.
func Provide[T any](c *Container, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg[reflect.TypeFor[T]()] = v
}

// Lookup returns the container's T, if one was provided.
func Lookup[T any](c *Container) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.reg[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Must returns the container's T and panics if none was provided; modules
// use it for dependencies wired at startup.
func Must[T any](c *Container) T {
	v, ok := Lookup[T](c)
	if !ok {
		panic(fmt.Errorf("container: missing dependency %v", reflect.TypeFor[T]()))
	}
	return v
}
