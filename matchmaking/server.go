package matchmaking

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hallyl1978/AheryusGameBOX/auth"
	"github.com/hallyl1978/AheryusGameBOX/broadcast"
	"github.com/hallyl1978/AheryusGameBOX/config"
	"github.com/hallyl1978/AheryusGameBOX/datastore"
	"github.com/hallyl1978/AheryusGameBOX/rating"
)

const (
	GRACEFUL_SHUTDOWN_TIME_S = 10
)

// MatchmakingServer is the thin HTTP shell around the coordinator. It owns
// no matchmaking state of its own; handlers translate requests into
// coordinator calls and format the results.
type MatchmakingServer struct {
	config   *config.MatchmakingServerConfig
	serveMux *http.ServeMux
	server   *http.Server
	logger   *logrus.Logger

	coordinator  *Coordinator
	engine       *rating.Engine
	hub          *broadcast.Hub
	authProvider auth.AuthProvider
}

func New(
	conf *config.MatchmakingServerConfig,
	logger *logrus.Logger,
	ap auth.AuthProvider,
	ds datastore.Datastore,
	hub *broadcast.Hub,
) (s *MatchmakingServer) {
	engine := rating.NewEngine(logger, ds)

	s = &MatchmakingServer{
		config:       conf,
		logger:       logger,
		authProvider: ap,
		engine:       engine,
		hub:          hub,
		coordinator:  NewCoordinator(logger, conf, ds, engine, hub),
		serveMux:     http.NewServeMux(),
	}

	s.setupHandlers()
	s.server = &http.Server{
		Handler: s,
	}

	return
}

// Coordinator exposes the orchestration layer for embedding callers that
// bypass HTTP
func (sms *MatchmakingServer) Coordinator() *Coordinator {
	return sms.coordinator
}

// Start the matchmaking server
func (sms *MatchmakingServer) Start() (err error) {
	var listener net.Listener
	if listener, err = net.Listen("tcp", fmt.Sprintf(":%s", sms.config.Port)); err != nil {
		err = errors.Wrap(err, "failed to start matchmaking server")
		sms.logger.Error(err)
		return
	}

	// Start the http server
	errc := make(chan error, 1)
	go func() {
		sms.logger.Infof("Starting matchmaking server on: %s", listener.Addr().String())
		errc <- sms.server.Serve(listener)
	}()

	// Wait for termination or errors
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err = <-errc:
		sms.logger.Errorf("failed to serve: %s", err.Error())
	case sig := <-sigs:
		sms.logger.Errorf("terminating on sig: %v", sig)
	}

	// Gracefully shutdown with timeout of 10s
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*GRACEFUL_SHUTDOWN_TIME_S)
	defer cancel()
	return sms.server.Shutdown(ctx)
}
