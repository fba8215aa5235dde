package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
)

// Server is the development backend of the roster: students REST API + operator login.
type Server struct {
	conf     *core.Config
	logger   core.Logger
	app      *echo.Echo
	auth     *authenticator
	shutdown chan os.Signal
	errors   chan error
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	svc student.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) (*Server, error) {
	auth, err := newAuthenticator(conf)
	if err != nil {
		return nil, errors.Wrap(err, "setting up authentication")
	}

	s := &Server{
		conf:     conf,
		logger:   logger,
		app:      echo.New(),
		auth:     auth,
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.setup(svc, validate, translator)
	return s, nil
}

func (s *Server) setup(svc student.ServiceInterface, validate *validator.Validate, translator ut.Translator) {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(requestIDMiddleware())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, translator, s.signalShutdown)

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerAuthAPI(api, s.auth, validate)
	registerStudentAPI(api, jwt, operatorMiddleware(s.auth), svc, validate)
}

// Start listens on conf.Server.Address until Shutdown. Failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// Shutdown stops accepting connections and waits for outstanding requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Masomo Roster API!")
}
