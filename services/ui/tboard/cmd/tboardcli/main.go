package main

import (
	"context"
	"flag"
	"time"

	"github.com/rivo/tview"
	"github.com/rmrobinson/arrivals/services/arrivals"
	"github.com/rmrobinson/arrivals/services/arrivals/stops"
	"github.com/rmrobinson/arrivals/services/ui/tboard/widget"
	"go.uber.org/zap/zapcore"
)

func main() {
	var (
		configPath = flag.String("config", "", "The path to the arrivals config file")
		dbPath     = flag.String("db", "", "The path to the stops database, overriding the config file")
		stop       = flag.String("stop", "", "The name of the stop to display")
		route      = flag.String("route", "", "The route number to display; all routes if empty")
		refresh    = flag.Duration("refresh", time.Minute, "How often to refresh the arrivals")
		timezone   = flag.String("timezone", "Europe/Moscow", "The timezone of the clock")
		rows       = flag.Int("rows", 10, "The number of arrivals to display")
	)
	flag.Parse()

	config := arrivals.DefaultConfig()
	if len(*configPath) > 0 {
		var err error
		config, err = arrivals.LoadConfig(*configPath)
		if err != nil {
			panic(err)
		}
	}
	if len(*dbPath) > 0 {
		config.StopsDB = *dbPath
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		panic(err)
	}

	db := &stops.DB{}
	if err := db.Open(config.StopsDB); err != nil {
		panic(err)
	}
	defer db.Close()

	app := tview.NewApplication()
	status := widget.NewStatus(app)

	// The terminal is owned by the board, so log lines are shown on the status widget.
	logger := newWidgetLogger(NewWidgetSink(status), zapcore.WarnLevel)

	retriever := arrivals.NewRetriever(logger, arrivals.NewHTTPFetcher(logger, config.Fetch))
	svc := arrivals.NewService(logger, db, retriever, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := widget.NewTime(app, loc)
	go clock.Run(ctx)

	arrivalsView := widget.NewArrivals(app, *stop, *rows)
	go func() {
		for {
			answer, err := svc.Query(ctx, *stop, *route)
			status.RefreshAnswer(answer, err)
			if err == nil && answer.Result.Kind == arrivals.ResultSuccess {
				arrivalsView.Refresh(answer.Result.Records)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(*refresh):
			}
		}
	}()

	layout := tview.NewFlex().
		AddItem(arrivalsView, 0, 1, true).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(clock, 4, 1, false).
			AddItem(status, 0, 1, false), 32, 1, false)
	if err := app.SetRoot(layout, true).SetFocus(layout).Run(); err != nil {
		panic(err)
	}
}
