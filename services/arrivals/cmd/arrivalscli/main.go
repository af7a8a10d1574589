package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rmrobinson/arrivals/services/arrivals"
	"github.com/rmrobinson/arrivals/services/arrivals/stops"
	"go.uber.org/zap"
)

const (
	urlStopName = "url"
)

// urlDirectory resolves a single stop to the URL given on the command line.
type urlDirectory struct {
	url string
}

func (d urlDirectory) StopNames(ctx context.Context) ([]string, error) {
	return []string{urlStopName}, nil
}

func (d urlDirectory) LookupStop(ctx context.Context, name string) (string, bool, error) {
	return d.url, name == urlStopName, nil
}

type options struct {
	url   string
	stop  string
	route string

	attempts int
	delay    time.Duration
	timeout  time.Duration
}

// applyOverrides sets the flags the user supplied on top of the loaded config.
// The attempt bound and delay only apply to the mode the query runs in.
func applyOverrides(config *arrivals.Config, opts options, set map[string]bool) {
	policy := &config.Retry.AllRoutes
	if len(opts.route) > 0 {
		policy = &config.Retry.SingleRoute
	}

	if set["attempts"] {
		policy.MaxAttempts = opts.attempts
	}
	if set["delay"] {
		policy.Delay = opts.delay
	}
	if set["timeout"] {
		config.QueryTimeout = opts.timeout
	}
}

func query(ctx context.Context, svc *arrivals.Service, opts options) (*arrivals.Answer, string, error) {
	stop := opts.stop
	if len(opts.url) > 0 {
		stop = urlStopName
	}

	answer, err := svc.Query(ctx, stop, opts.route)
	if errors.Is(err, arrivals.ErrUnknownStop) {
		return nil, arrivals.RenderUnknownStop(stop), err
	} else if errors.Is(err, arrivals.ErrInvalidRoute) {
		return nil, fmt.Sprintf("invalid route number %q", opts.route), err
	} else if err != nil {
		return nil, "", err
	}
	return answer, answer.Text, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "The path to the arrivals config file")
		url        = flag.String("url", "", "The map page of the stop to query")
		stop       = flag.String("stop", "", "The name of the stop to query from the stops database")
		dbPath     = flag.String("db", "", "The path to the stops database, overriding the config file")
		route      = flag.String("route", "", "The route number to query; all routes if empty")
		attempts   = flag.Int("attempts", 10, "The maximum number of attempts, overriding the config file")
		delay      = flag.Duration("delay", 0, "The delay between attempts, overriding the config file")
		timeout    = flag.Duration("timeout", time.Minute, "The overall time limit of the query, overriding the config file")
		debug      = flag.Bool("debug", false, "Dump the full result")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	config := arrivals.DefaultConfig()
	if len(*configPath) > 0 {
		config, err = arrivals.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("error loading config",
				zap.String("config_path", *configPath),
				zap.Error(err),
			)
		}
	}
	if len(*dbPath) > 0 {
		config.StopsDB = *dbPath
	}

	opts := options{
		url:      *url,
		stop:     *stop,
		route:    *route,
		attempts: *attempts,
		delay:    *delay,
		timeout:  *timeout,
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	applyOverrides(config, opts, set)

	var directory arrivals.Directory
	if len(opts.url) > 0 {
		directory = urlDirectory{url: opts.url}
	} else if len(opts.stop) > 0 {
		db := &stops.DB{}
		if err := db.Open(config.StopsDB); err != nil {
			logger.Fatal("error opening stops db",
				zap.String("stops_db", config.StopsDB),
				zap.Error(err),
			)
		}
		defer db.Close()
		directory = db
	} else {
		flag.Usage()
		os.Exit(2)
	}

	retriever := arrivals.NewRetriever(logger, arrivals.NewHTTPFetcher(logger, config.Fetch))
	svc := arrivals.NewService(logger, directory, retriever, config)

	answer, text, err := query(context.Background(), svc, opts)
	if len(text) > 0 {
		fmt.Println(text)
	}
	if err != nil {
		logger.Error("error querying arrivals",
			zap.String("url", opts.url),
			zap.String("stop_name", opts.stop),
			zap.Error(err),
		)
		os.Exit(1)
	}

	if *debug {
		spew.Dump(answer)
	}
}
