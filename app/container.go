package app

import (
	"fmt"
	"reflect"
	"sync"
)

// Container is a simple dependency injection container using generics
type Container struct {
	mu       sync.RWMutex
	services map[reflect.Type]any
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{
		services: make(map[reflect.Type]any),
	}
}

// Register adds a service to the container
func Register[T any](c *Container, service T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Get the actual type, not the generic type parameter
	actualType := reflect.TypeOf(service)
	c.services[actualType] = service
}

// Get retrieves a service from the container
func Get[T any](c *Container) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	if service, ok := c.services[t]; ok {
		if s, ok := service.(T); ok {
			return s, nil
		}
	}

	return zero, fmt.Errorf("service %v not found", t)
}

// MustGet retrieves a service from the container, panics if not found
func MustGet[T any](c *Container) T {
	service, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return service
}
