package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hallyl1978/AheryusGameBOX/auth"
	"github.com/hallyl1978/AheryusGameBOX/broadcast"
	"github.com/hallyl1978/AheryusGameBOX/config"
	"github.com/hallyl1978/AheryusGameBOX/datastore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/memstore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/pgstore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/redisstore"
	"github.com/hallyl1978/AheryusGameBOX/matchmaking"
)

func main() {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	logger := logrus.New()

	conf, err := config.LoadMatchmakingServerConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %s", err)
	}
	if conf.DebugMode {
		logger.SetLevel(logrus.DebugLevel)
	}

	ds, err := newDatastore(conf)
	if err != nil {
		logger.Fatalf("failed to initialize datastore: %s", err)
	}
	logger.Infof("using %s datastore", conf.Store)

	hub := broadcast.NewHub(logger)
	server := matchmaking.New(conf, logger, auth.NewHeaderAuthProvider(), ds, hub)

	if err := server.Start(); err != nil {
		logger.Fatalf("server stopped: %s", err)
	}
}

func newDatastore(conf *config.MatchmakingServerConfig) (datastore.Datastore, error) {
	switch conf.Store {
	case "redis":
		return redisstore.New(&conf.Redis)
	case "postgres":
		return pgstore.New(&conf.Postgres)
	default:
		return memstore.New(), nil
	}
}
