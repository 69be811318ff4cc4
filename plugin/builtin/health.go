// Package builtin provides plugins that ship with the toolkit.
package builtin

import (
	"time"

	"github.com/appstack-io/appstack/core/types"
	"github.com/appstack-io/appstack/plugin"
	"github.com/appstack-io/appstack/router"
)

// HealthPath is the route the health plugin installs.
const HealthPath = "/health"

// HealthStatus is the health endpoint's response body.
type HealthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Health returns the built-in health check plugin. Install registers a
// GET /health route; Uninstall removes it again.
func Health() *plugin.Plugin {
	var started time.Time

	return &plugin.Plugin{
		Name:    "health",
		Version: "1.0.0",
		Install: func(app plugin.App, options map[string]any) error {
			started = time.Now()
			route := router.NewRoute(router.GET, HealthPath,
				func(c types.Context, input any) (*router.Result, error) {
					return &router.Result{Content: &HealthStatus{
						Status: "ok",
						Uptime: time.Since(started).Round(time.Second).String(),
					}}, nil
				})
			app.Routes().Register(route)
			return nil
		},
		Uninstall: func(app plugin.App) error {
			app.Routes().Remove(router.GET, HealthPath)
			return nil
		},
	}
}
