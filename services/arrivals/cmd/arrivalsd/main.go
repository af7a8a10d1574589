package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlopes/slack"
	"github.com/rmrobinson/arrivals/services/arrivals"
	"github.com/rmrobinson/arrivals/services/arrivals/stops"
	"github.com/rmrobinson/arrivals/services/mind"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	envVarConfigPath     = "CONFIG_PATH"
	envVarStopsDB        = "STOPS_DB"
	envVarSlackKey       = "SLACK_KEY"
	envVarSlackChannelID = "SLACK_CHANNEL_ID"
)

func newLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	viper.SetEnvPrefix("NVS")
	viper.BindEnv(envVarConfigPath)
	viper.BindEnv(envVarStopsDB)
	viper.BindEnv(envVarSlackKey)
	viper.BindEnv(envVarSlackChannelID)

	config := arrivals.DefaultConfig()
	if configPath := viper.GetString(envVarConfigPath); len(configPath) > 0 {
		var err error
		config, err = arrivals.LoadConfig(configPath)
		if err != nil {
			panic(err)
		}
	}
	if stopsDB := viper.GetString(envVarStopsDB); len(stopsDB) > 0 {
		config.StopsDB = stopsDB
	}

	logger, err := newLogger(config.Log.Production)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := &stops.DB{}
	if err := db.Open(config.StopsDB); err != nil {
		logger.Fatal("error opening stops db",
			zap.String("stops_db", config.StopsDB),
			zap.Error(err),
		)
	}
	defer db.Close()

	retriever := arrivals.NewRetriever(logger, arrivals.NewHTTPFetcher(logger, config.Fetch))
	svc := arrivals.NewService(logger, db, retriever, config)

	watcher, err := arrivals.NewWatcher(logger, svc, config.Watch)
	if err != nil {
		logger.Fatal("error creating watcher",
			zap.String("schedule", config.Watch.Schedule),
			zap.Error(err),
		)
	}
	updates := watcher.Updates()
	defer updates.Close()

	watcher.Start()
	defer watcher.Stop()

	mindSvc := mind.NewService(logger)
	mindSvc.RegisterHandler(mind.NewArrivals(logger, svc, watcher))

	slackKey := viper.GetString(envVarSlackKey)
	if len(slackKey) < 1 {
		logger.Fatal("slack key is required",
			zap.String("env_var", "NVS_"+envVarSlackKey),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slackbot := mind.NewSlackBot(logger, mindSvc, slack.New(slackKey), updates)

	logger.Info("arrivals bot starting",
		zap.String("stops_db", config.StopsDB),
		zap.String("watch_schedule", config.Watch.Schedule),
	)
	slackbot.Run(ctx, viper.GetString(envVarSlackChannelID))
	logger.Info("arrivals bot stopped")
}
