package arrivals

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

var (
	errBlockMissing = errors.New("arrival block missing")
	errRouteMissing = errors.New("route not listed yet")
)

// Query describes a single retrieval. An empty RouteNumber requests every route at the stop.
type Query struct {
	URL         string
	RouteNumber string

	MaxAttempts int
	Delay       time.Duration
}

// Retriever fetches a stop page until its arrival widget can answer the query.
// It holds no per-query state and may be shared between goroutines.
type Retriever struct {
	logger  *zap.Logger
	fetcher Fetcher
}

// NewRetriever creates a retriever on top of the supplied fetcher.
func NewRetriever(logger *zap.Logger, fetcher Fetcher) *Retriever {
	return &Retriever{
		logger:  logger,
		fetcher: fetcher,
	}
}

// Retrieve runs the query to one of the terminal result kinds.
// A fetch failure is never retried. A missing widget, or a widget which does not list the route yet,
// is retried up to MaxAttempts times with Delay between attempts.
// The only error returned is the context's, if it is cancelled before a result is reached.
func (r *Retriever) Retrieve(ctx context.Context, q Query) (*Result, error) {
	maxAttempts := q.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempts := 0
	var result *Result

	attempt := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++

		snapshot, err := r.fetcher.Fetch(ctx, q.URL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return backoff.Permanent(ctxErr)
			}

			r.logger.Info("fetch failed, not retrying",
				zap.String("url", q.URL),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			result = &Result{
				Kind:        ResultFetchFailed,
				RouteNumber: q.RouteNumber,
				Attempts:    attempts,
				Err:         err,
			}
			return nil
		}

		text, ok := LocateBlock(snapshot)
		if !ok {
			return errBlockMissing
		}

		if len(q.RouteNumber) < 1 {
			result = &Result{
				Kind:     ResultSuccess,
				Records:  ExtractAll(text),
				Attempts: attempts,
			}
			return nil
		}

		if record, ok := ExtractOne(text, q.RouteNumber); ok {
			result = &Result{
				Kind:        ResultSuccess,
				Records:     []ArrivalRecord{record},
				RouteNumber: q.RouteNumber,
				Attempts:    attempts,
			}
			return nil
		}

		// A fully parsed widget without the route is a definitive answer.
		// Anything less (nothing parsed, or the route listed without times) may still fill in.
		if records := ExtractAll(text); len(records) > 0 && !hasRoute(records, q.RouteNumber) {
			result = &Result{
				Kind:        ResultRouteNotFound,
				RouteNumber: q.RouteNumber,
				Attempts:    attempts,
			}
			return nil
		}
		return errRouteMissing
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if maxAttempts > 1 {
		policy = backoff.WithMaxRetries(backoff.NewConstantBackOff(q.Delay), uint64(maxAttempts-1))
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		r.logger.Debug("arrivals not available yet, retrying",
			zap.String("url", q.URL),
			zap.String("route_number", q.RouteNumber),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", next),
			zap.String("reason", err.Error()),
		)
	})

	if result != nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(err, errBlockMissing) || errors.Is(err, errRouteMissing) {
		r.logger.Info("giving up on arrivals",
			zap.String("url", q.URL),
			zap.String("route_number", q.RouteNumber),
			zap.Int("attempts", attempts),
		)
		return &Result{
			Kind:        ResultExhausted,
			RouteNumber: q.RouteNumber,
			Attempts:    attempts,
		}, nil
	}
	return nil, err
}

func hasRoute(records []ArrivalRecord, routeNumber string) bool {
	for _, record := range records {
		if record.RouteNumber() == routeNumber {
			return true
		}
	}
	return false
}
