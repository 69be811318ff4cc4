package echoadapter_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstack-io/appstack/core/types"
	"github.com/appstack-io/appstack/router"
	"github.com/appstack-io/appstack/transport/echoadapter"
)

func serve(e *echo.Echo, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdapterVerbs(t *testing.T) {
	e := echo.New()
	adapter := echoadapter.New(e)

	handler := func(c types.Context) error {
		return c.String(http.StatusOK, c.Request().Method)
	}
	adapter.GET("/verb", handler)
	adapter.POST("/verb", handler)
	adapter.PUT("/verb", handler)
	adapter.PATCH("/verb", handler)
	adapter.DELETE("/verb", handler)
	adapter.OPTIONS("/verb", handler)

	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	} {
		t.Run(method, func(t *testing.T) {
			rec := serve(e, method, "/verb", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, method, rec.Body.String())
		})
	}

	t.Run("Any", func(t *testing.T) {
		adapter.Any("/any", handler)

		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			rec := serve(e, method, "/any", "")
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestAdapterMiddlewareOrder(t *testing.T) {
	e := echo.New()
	adapter := echoadapter.New(e)

	var trace []string
	label := func(name string) types.MiddlewareFunc {
		return func(next types.HandlerFunc) types.HandlerFunc {
			return func(c types.Context) error {
				trace = append(trace, name)
				return next(c)
			}
		}
	}

	adapter.GET("/ordered", func(c types.Context) error {
		trace = append(trace, "handler")
		return c.NoContent(http.StatusOK)
	}, label("first"), label("second"))

	serve(e, http.MethodGet, "/ordered", "")
	assert.Equal(t, []string{"first", "second", "handler"}, trace)
}

func TestAdapterContext(t *testing.T) {
	e := echo.New()
	adapter := echoadapter.New(e)

	t.Run("PathParams", func(t *testing.T) {
		adapter.GET("/users/:id", func(c types.Context) error {
			return c.String(http.StatusOK, c.Param("id"))
		})

		rec := serve(e, http.MethodGet, "/users/42", "")
		assert.Equal(t, "42", rec.Body.String())
	})

	t.Run("RequestPathNotPattern", func(t *testing.T) {
		adapter.GET("/orders/:id", func(c types.Context) error {
			return c.String(http.StatusOK, c.Path())
		})

		rec := serve(e, http.MethodGet, "/orders/7", "")
		assert.Equal(t, "/orders/7", rec.Body.String())
	})

	t.Run("QueryAndValues", func(t *testing.T) {
		adapter.GET("/search", func(c types.Context) error {
			c.Set("key", "value")
			if c.Get("key") != "value" {
				return c.NoContent(http.StatusInternalServerError)
			}
			return c.String(http.StatusOK, c.QueryParam("q"))
		})

		rec := serve(e, http.MethodGet, "/search?q=golang", "")
		assert.Equal(t, "golang", rec.Body.String())
	})

	t.Run("Bind", func(t *testing.T) {
		type payload struct {
			Name string `json:"name"`
		}
		adapter.POST("/bind", func(c types.Context) error {
			var p payload
			if err := c.Bind(&p); err != nil {
				return c.NoContent(http.StatusBadRequest)
			}
			return c.String(http.StatusOK, p.Name)
		})

		rec := serve(e, http.MethodPost, "/bind", `{"name":"alice"}`)
		assert.Equal(t, "alice", rec.Body.String())
	})

	t.Run("ResponseWriterState", func(t *testing.T) {
		adapter.GET("/state", func(c types.Context) error {
			if c.Response().Written() {
				return c.NoContent(http.StatusInternalServerError)
			}
			if err := c.String(http.StatusCreated, "done"); err != nil {
				return err
			}
			if !c.Response().Written() || c.Response().Status() != http.StatusCreated {
				panic("response state not tracked")
			}
			return nil
		})

		rec := serve(e, http.MethodGet, "/state", "")
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestAdapterWithRouter(t *testing.T) {
	e := echo.New()
	adapter := echoadapter.New(e)
	rt := router.New(adapter, router.Providers{}, nil)

	route := router.NewRoute(router.GET, "/items", func(c types.Context, input any) (*router.Result, error) {
		return &router.Result{Content: map[string]string{"item": "pencil"}}, nil
	})
	require.NoError(t, rt.Mount(route))

	rec := serve(e, http.MethodGet, "/items", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pencil")

	t.Run("AllVerbMountsAny", func(t *testing.T) {
		require.NoError(t, rt.Mount(router.NewRoute(router.ALL, "/everything", func(c types.Context, input any) (*router.Result, error) {
			return nil, nil
		})))

		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := serve(e, method, "/everything", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK", rec.Body.String())
		}
	})
}
