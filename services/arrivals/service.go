package arrivals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnknownStop is returned if the stop is not present in the directory.
	ErrUnknownStop = errors.New("unknown stop")
	// ErrInvalidRoute is returned if a route number is not made up of digits.
	ErrInvalidRoute = errors.New("invalid route number")
)

// Directory resolves stop names into the map page showing the stop's arrival widget.
type Directory interface {
	StopNames(ctx context.Context) ([]string, error)
	LookupStop(ctx context.Context, name string) (string, bool, error)
}

// Answer is a rendered reply to a stop query.
type Answer struct {
	Stop        string
	RouteNumber string

	Result *Result
	Text   string
}

// Service answers arrival queries for named stops.
type Service struct {
	logger    *zap.Logger
	directory Directory
	retriever *Retriever

	retry        RetryConfig
	queryTimeout time.Duration
}

// NewService creates a new arrivals service.
func NewService(logger *zap.Logger, directory Directory, retriever *Retriever, config *Config) *Service {
	return &Service{
		logger:       logger,
		directory:    directory,
		retriever:    retriever,
		retry:        config.Retry,
		queryTimeout: config.QueryTimeout,
	}
}

// StopNames lists the stops which can be queried.
func (s *Service) StopNames(ctx context.Context) ([]string, error) {
	return s.directory.StopNames(ctx)
}

// Query retrieves the arrivals at stop, for every route if routeNumber is empty.
// ErrUnknownStop is returned, without fetching anything, if the stop cannot be resolved.
func (s *Service) Query(ctx context.Context, stop string, routeNumber string) (*Answer, error) {
	routeNumber = strings.TrimSpace(routeNumber)
	if len(routeNumber) > 0 && !ValidRouteNumber(routeNumber) {
		return nil, ErrInvalidRoute
	}

	url, found, err := s.directory.LookupStop(ctx, stop)
	if err != nil {
		s.logger.Warn("error looking up stop",
			zap.String("stop_name", stop),
			zap.Error(err),
		)
		return nil, fmt.Errorf("looking up stop %q: %w", stop, err)
	} else if !found {
		s.logger.Info("stop not found",
			zap.String("stop_name", stop),
		)
		return nil, ErrUnknownStop
	}

	policy := s.retry.AllRoutes
	if len(routeNumber) > 0 {
		policy = s.retry.SingleRoute
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	result, err := s.retriever.Retrieve(ctx, Query{
		URL:         url,
		RouteNumber: routeNumber,
		MaxAttempts: policy.MaxAttempts,
		Delay:       policy.Delay,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query complete",
		zap.String("stop_name", stop),
		zap.String("route_number", routeNumber),
		zap.Stringer("result", result.Kind),
		zap.Int("attempts", result.Attempts),
	)

	return &Answer{
		Stop:        stop,
		RouteNumber: routeNumber,
		Result:      result,
		Text:        RenderResult(result),
	}, nil
}

// ValidRouteNumber checks that the route is a short run of digits.
func ValidRouteNumber(routeNumber string) bool {
	if len(routeNumber) < 1 || len(routeNumber) > maxRouteNumberDigits {
		return false
	}
	for i := 0; i < len(routeNumber); i++ {
		if !isDigit(routeNumber[i]) {
			return false
		}
	}
	return true
}
