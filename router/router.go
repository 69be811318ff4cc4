package router

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/appstack-io/appstack/core/types"
	"github.com/appstack-io/appstack/middleware"
)

// Framework is the adapter onto the underlying web framework's method
// dispatch. Adapters may additionally expose CONNECT and TRACE with the
// same signature; MountRoute finds them by name on the concrete type.
type Framework interface {
	GET(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	POST(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	PUT(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	PATCH(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	DELETE(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	HEAD(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	OPTIONS(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
	Any(path string, h types.HandlerFunc, m ...types.MiddlewareFunc)
}

// registerFunc is the signature every framework verb method must have.
type registerFunc = func(string, types.HandlerFunc, ...types.MiddlewareFunc)

// Providers carries the configured middleware providers. Nil providers mean
// the corresponding option key is ignored when assembling a pipeline.
type Providers struct {
	Auth        *middleware.AuthProvider
	Validation  *middleware.ValidationProvider
	Cors        *middleware.CorsProvider
	RateLimiter *middleware.RateLimiterProvider
	Throttler   *middleware.ThrottlerProvider
}

// Router assembles per-route middleware pipelines from declarative options
// and mounts them onto a Framework adapter.
type Router struct {
	framework Framework
	providers Providers
	logger    *zap.Logger
}

// New creates a router over the given framework adapter.
func New(framework Framework, providers Providers, logger *zap.Logger) *Router {
	return &Router{
		framework: framework,
		providers: providers,
		logger:    logger,
	}
}

// SetupMiddlewares builds the ordered middleware list for a route's options.
// The order is fixed: auth, validation, cors, rate limit, throttle, then any
// explicit middlewares verbatim. Authentication runs before validation so
// unauthenticated requests are rejected before payload work; rate limiting
// runs before throttling so quota and burst rejections stay distinct policy
// checks.
func (r *Router) SetupMiddlewares(opts *Options) []types.MiddlewareFunc {
	var mws []types.MiddlewareFunc
	if opts == nil {
		return mws
	}

	if opts.Auth != nil && r.providers.Auth != nil {
		mws = append(mws, r.providers.Auth.GetMiddleware(opts.Auth))
	}
	if opts.Validation != nil && r.providers.Validation != nil {
		mws = append(mws, r.providers.Validation.GetMiddleware(opts.Validation))
	}
	if opts.CORS != nil && r.providers.Cors != nil {
		mws = append(mws, r.providers.Cors.GetMiddleware(opts.CORS))
	}
	if opts.RateLimit != nil && r.providers.RateLimiter != nil {
		mws = append(mws, r.providers.RateLimiter.GetMiddleware(opts.RateLimit))
	}
	if opts.Throttle != nil && r.providers.Throttler != nil {
		mws = append(mws, r.providers.Throttler.GetMiddleware(opts.Throttle))
	}

	mws = append(mws, opts.Middlewares...)
	return mws
}

// Handler wraps a business handler and its IO mapper into a framework
// handler. Mapper and handler failures never leak to the client: any error
// or panic is logged and becomes a generic 500.
func (r *Router) Handler(h Handler, io *IO) types.HandlerFunc {
	return func(c types.Context) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				if r.logger != nil {
					r.logger.Error("Handler panicked", zap.Any("panic", rec))
				}
				err = c.String(http.StatusInternalServerError, "Internal Server Error")
			}
		}()

		var input any
		if io != nil && io.FromRequest != nil {
			input, err = io.FromRequest(c)
			if err != nil {
				if r.logger != nil {
					r.logger.Error("Request mapping failed", zap.Error(err))
				}
				return c.String(http.StatusInternalServerError, "Internal Server Error")
			}
		}

		result, err := h(c, input)
		if err != nil {
			if r.logger != nil {
				r.logger.Error("Handler failed", zap.Error(err))
			}
			return c.String(http.StatusInternalServerError, "Internal Server Error")
		}

		if io != nil && io.ToResponse != nil {
			if err := io.ToResponse(c, result); err != nil {
				if r.logger != nil {
					r.logger.Error("Response mapping failed", zap.Error(err))
				}
				return c.String(http.StatusInternalServerError, "Internal Server Error")
			}
			return nil
		}

		if result != nil && result.Failed {
			return c.String(http.StatusInternalServerError, "Internal Server Error")
		}
		if result == nil || result.Content == nil {
			return c.String(http.StatusOK, "OK")
		}
		return c.JSON(http.StatusOK, result.Content)
	}
}

// MountRoute mounts one route: each method resolves to the framework
// adapter's registration method of the same name (ALL maps to Any), and the
// route is mounted once per path element with the same pipeline. An unknown
// verb is a configuration error.
func (r *Router) MountRoute(rt *Route) error {
	mws := r.SetupMiddlewares(rt.Options)
	handler := r.Handler(rt.Handler, rt.IO)

	for _, m := range rt.Methods {
		register, err := r.resolveMethod(m)
		if err != nil {
			return err
		}
		for _, p := range rt.Paths {
			register(NormalizePath(p), handler, mws...)
			if r.logger != nil {
				r.logger.Debug("Route mounted",
					zap.String("method", string(m)),
					zap.String("path", NormalizePath(p)),
					zap.Int("middlewares", len(mws)))
			}
		}
	}
	return nil
}

// Mount mounts every given route, failing fast on the first bad verb.
func (r *Router) Mount(routes ...*Route) error {
	for _, rt := range routes {
		if err := r.MountRoute(rt); err != nil {
			return err
		}
	}
	return nil
}

// resolveMethod finds the adapter's registration method for a verb,
// case-insensitively. Verbs outside the Framework interface (CONNECT,
// TRACE) are looked up on the adapter's concrete type.
func (r *Router) resolveMethod(m Method) (registerFunc, error) {
	name := strings.ToUpper(string(m))
	if name == "ALL" {
		name = "Any"
	}

	fn := reflect.ValueOf(r.framework).MethodByName(name)
	if !fn.IsValid() {
		return nil, fmt.Errorf("framework adapter does not support method %q", string(m))
	}

	register, ok := fn.Interface().(registerFunc)
	if !ok {
		return nil, fmt.Errorf("framework adapter method %q has an unexpected signature", name)
	}
	return register, nil
}
