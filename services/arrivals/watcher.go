package arrivals

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rmrobinson/arrivals/lib/stream"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	// ErrTooManyWatches is returned if the subscriber already has the maximum number of watches.
	ErrTooManyWatches = errors.New("too many watches for subscriber")
	// ErrWatchNotFound is returned if the watch ID is not registered.
	ErrWatchNotFound = errors.New("watch not found")
)

// Querier answers arrival queries for a named stop.
type Querier interface {
	Query(ctx context.Context, stop string, routeNumber string) (*Answer, error)
}

// Update is broadcast every time a watched stop is queried.
type Update struct {
	WatchID     string
	Subscriber  string
	Stop        string
	RouteNumber string
	Text        string
}

// String implements the stream.Message interface.
func (u *Update) String() string {
	return u.Stop + " (" + u.RouteNumber + "): " + u.Text
}

type watch struct {
	id          string
	subscriber  string
	stop        string
	routeNumber string

	entryID cron.EntryID
}

// Watcher repeatedly queries stops on a cron schedule and broadcasts the answers.
type Watcher struct {
	logger  *zap.Logger
	querier Querier
	source  *stream.Source
	cron    *cron.Cron

	schedule         cron.Schedule
	maxPerSubscriber int

	watches     map[string]*watch
	watchesLock sync.Mutex
}

// NewWatcher creates a watcher using the schedule and limits in config.
func NewWatcher(logger *zap.Logger, querier Querier, config WatchConfig) (*Watcher, error) {
	schedule, err := cron.ParseStandard(config.Schedule)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:           logger,
		querier:          querier,
		source:           stream.NewSource(logger),
		cron:             cron.New(),
		schedule:         schedule,
		maxPerSubscriber: config.MaxPerSubscriber,
		watches:          map[string]*watch{},
	}, nil
}

// Updates creates a sink receiving every update broadcast by this watcher.
func (w *Watcher) Updates() *stream.Sink {
	return w.source.NewSink()
}

// Start begins running the scheduled queries.
func (w *Watcher) Start() {
	w.cron.Start()
}

// Stop halts the schedule and waits for in-flight queries to complete.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
}

// Watch registers a periodic query of stop on behalf of subscriber, returning the watch ID.
// The stop is queried once immediately so an unknown stop is rejected up front.
func (w *Watcher) Watch(ctx context.Context, subscriber string, stop string, routeNumber string) (string, error) {
	w.watchesLock.Lock()
	full := w.subscriberFull(subscriber)
	w.watchesLock.Unlock()

	if full {
		return "", ErrTooManyWatches
	}

	answer, err := w.querier.Query(ctx, stop, routeNumber)
	if err != nil {
		return "", err
	}

	wt := &watch{
		id:          uuid.New().String(),
		subscriber:  subscriber,
		stop:        stop,
		routeNumber: routeNumber,
	}

	w.watchesLock.Lock()
	// Other watches may have been added while the stop was queried.
	if w.subscriberFull(subscriber) {
		w.watchesLock.Unlock()
		return "", ErrTooManyWatches
	}
	wt.entryID = w.cron.Schedule(w.schedule, cron.FuncJob(func() {
		w.run(wt)
	}))
	w.watches[wt.id] = wt
	w.watchesLock.Unlock()

	w.logger.Info("added watch",
		zap.String("watch_id", wt.id),
		zap.String("subscriber", subscriber),
		zap.String("stop_name", stop),
		zap.String("route_number", routeNumber),
	)

	w.publish(wt, answer.Text)
	return wt.id, nil
}

// Unwatch removes a single watch.
func (w *Watcher) Unwatch(id string) error {
	w.watchesLock.Lock()
	defer w.watchesLock.Unlock()

	wt, ok := w.watches[id]
	if !ok {
		return ErrWatchNotFound
	}

	w.cron.Remove(wt.entryID)
	delete(w.watches, id)
	return nil
}

// UnwatchSubscriber removes every watch of the subscriber and returns how many were removed.
func (w *Watcher) UnwatchSubscriber(subscriber string) int {
	w.watchesLock.Lock()
	defer w.watchesLock.Unlock()

	removed := 0
	for id, wt := range w.watches {
		if wt.subscriber != subscriber {
			continue
		}
		w.cron.Remove(wt.entryID)
		delete(w.watches, id)
		removed++
	}
	return removed
}

// subscriberFull must be called with the lock held.
func (w *Watcher) subscriberFull(subscriber string) bool {
	if w.maxPerSubscriber < 1 {
		return false
	}

	count := 0
	for _, existing := range w.watches {
		if existing.subscriber == subscriber {
			count++
		}
	}
	return count >= w.maxPerSubscriber
}

func (w *Watcher) run(wt *watch) {
	answer, err := w.querier.Query(context.Background(), wt.stop, wt.routeNumber)
	if err != nil {
		w.logger.Warn("error running watch",
			zap.String("watch_id", wt.id),
			zap.String("stop_name", wt.stop),
			zap.Error(err),
		)
		if errors.Is(err, ErrUnknownStop) {
			w.publish(wt, RenderUnknownStop(wt.stop))
		}
		return
	}

	w.publish(wt, answer.Text)
}

func (w *Watcher) publish(wt *watch, text string) {
	w.source.SendMessage(&Update{
		WatchID:     wt.id,
		Subscriber:  wt.subscriber,
		Stop:        wt.stop,
		RouteNumber: wt.routeNumber,
		Text:        text,
	})
}
