package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"employee-manager/internal/domain"
	"employee-manager/internal/logger"
)

// Server is an in-memory implementation of the employee backend, used for
// local runs and integration tests.
type Server struct {
	Echo  *echo.Echo
	store *Store
}

func New(store *Store) *Server {
	if store == nil {
		store = NewStore()
	}
	s := &Server{Echo: echo.New(), store: store}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.RegisterMiddlewares()
	s.RegisterRoutes()
	return s
}

func (s *Server) Store() *Store { return s.store }

func (s *Server) RegisterMiddlewares() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.DebugLog(c.Request().Context(), "stubserver: %s %s status=%d latency=%s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
}

func (s *Server) RegisterRoutes() {
	g := s.Echo.Group("/employee")
	g.GET("/all", s.listHandler)
	g.GET("/find/:id", s.findHandler)
	g.POST("/add", s.addHandler)
	g.PUT("/update", s.updateHandler)
	g.DELETE("/delete/:id", s.deleteHandler)
}

// ServeHTTP lets the server be mounted on httptest or any mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Echo.ServeHTTP(w, r)
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start(addr string) error {
	logger.InfoLog(context.Background(), "stubserver: listening on %s", addr)
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) listHandler(c echo.Context) error {
	list := s.store.All()
	if list == nil {
		list = []domain.Employee{}
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) findHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	e, err := s.store.Find(id)
	if err != nil {
		return notFound(id, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) addHandler(c echo.Context) error {
	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	e := s.store.Add(req.EmployeeInput)
	logger.InfoLog(c.Request().Context(), "stubserver: added employee %d", e.ID)
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) updateHandler(c echo.Context) error {
	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.ID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Employee id is required")
	}
	e, err := s.store.Update(req)
	if err != nil {
		return notFound(req.ID, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) deleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return notFound(id, err)
	}
	return c.NoContent(http.StatusOK)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid employee ID")
	}
	return id, nil
}

func notFound(id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Employee by id %d was not found", id))
	}
	return err
}
