package mind

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rmrobinson/arrivals/services/arrivals"
	"go.uber.org/zap"
)

const (
	textChooseStop      = "Выбери остановку:"
	textChooseOtherStop = "Выбери другую остановку:"
	textEnterRoute      = "Теперь введи номер маршрута:"
	textInvalidRoute    = "Неверный формат маршрута. Попробуй снова."
	textRestart         = "Начнём сначала."
	textDialogEnded     = "Диалог завершён. Чтобы начать заново, напиши /start."
	textNoStops         = "Список остановок пуст."
	textQueryFailed     = "Не удалось получить информацию. Попробуй позже."
	textWatchAdded      = "Подписка оформлена, обновления будут приходить регулярно."
	textWatchLimit      = "Слишком много подписок. Напиши unwatch, чтобы отменить их."
	textWatchDisabled   = "Подписки сейчас недоступны."
	textUnwatched       = "Отменено подписок: %d."

	helpText = "Привет!\n" +
		"/start - выбрать остановку и маршрут\n" +
		"/stop - завершить диалог\n" +
		"stops - список остановок\n" +
		"arrivals at <остановка> - все маршруты на остановке\n" +
		"bus <маршрут> at <остановка> - один маршрут\n" +
		"watch <маршрут|all> at <остановка> - присылать обновления\n" +
		"unwatch - отменить подписки"
)

var (
	startRegex          = regexp.MustCompile(`(?i)^/?(start|привет)$`)
	stopRegex           = regexp.MustCompile(`(?i)^/?stop$`)
	restartRegex        = regexp.MustCompile(`(?i)^(/restart|restart|начать сначала)$`)
	backRegex           = regexp.MustCompile(`(?i)^(back|назад)$`)
	helpRegex           = regexp.MustCompile(`(?i)^/?(help|помощь)$`)
	listStopsRegex      = regexp.MustCompile(`(?i)^(/stops|stops|остановки)$`)
	stopArrivalsRegex   = regexp.MustCompile(`(?i)^arrivals (?:at|for) (?P<stop>.+?)\??$`)
	routeArrivalsRegex  = regexp.MustCompile(`(?i)^bus (?P<route>\S+) (?:at|to) (?P<stop>.+?)\??$`)
	routeArrivalsRegex2 = regexp.MustCompile(`(?i)^when('s| is| can i expect)? the (?:bus )?(?P<route>\S+) (coming to|arriving at|getting to|at) (?P<stop>.+?)\??$`)
	watchRegex          = regexp.MustCompile(`(?i)^watch (?P<route>\S+) (?:at|to) (?P<stop>.+?)$`)
	unwatchRegex        = regexp.MustCompile(`(?i)^/?unwatch$`)
)

// ArrivalsService answers arrival queries for named stops.
type ArrivalsService interface {
	StopNames(ctx context.Context) ([]string, error)
	Query(ctx context.Context, stop string, routeNumber string) (*arrivals.Answer, error)
}

// ArrivalsWatcher schedules periodic arrival queries on behalf of a subscriber.
type ArrivalsWatcher interface {
	Watch(ctx context.Context, subscriber string, stop string, routeNumber string) (string, error)
	UnwatchSubscriber(subscriber string) int
}

type dialogState int

const (
	dialogChoosingStop dialogState = iota
	dialogChoosingRoute
)

// dialog tracks a subscriber working through the stop then route prompts.
type dialog struct {
	state dialogState
	stop  string
}

// Arrivals is a stop arrivals request handler
type Arrivals struct {
	logger *zap.Logger

	svc     ArrivalsService
	watcher ArrivalsWatcher

	dialogs     map[string]*dialog
	dialogsLock sync.Mutex
}

// NewArrivals creates a new arrivals handler. The watcher may be nil, in which case watches are refused.
func NewArrivals(logger *zap.Logger, svc ArrivalsService, watcher ArrivalsWatcher) *Arrivals {
	return &Arrivals{
		logger:  logger,
		svc:     svc,
		watcher: watcher,
		dialogs: map[string]*dialog{},
	}
}

// ProcessStatement implements the handler interface.
func (a *Arrivals) ProcessStatement(ctx context.Context, stmt *Statement) (*Statement, error) {
	if stmt.MimeType != mimeTypeText {
		return nil, ErrStatementNotHandled
	}

	content := strings.Join(strings.Fields(stmt.Content), " ")
	reply := func(text string) (*Statement, error) {
		return statementFromText(stmt.Subscriber, text), nil
	}

	switch {
	case startRegex.MatchString(content):
		a.setDialog(stmt.Subscriber, &dialog{state: dialogChoosingStop})
		return reply(a.stopList(ctx, helpText+"\n\n"+textChooseStop))
	case restartRegex.MatchString(content):
		a.setDialog(stmt.Subscriber, &dialog{state: dialogChoosingStop})
		return reply(textRestart + "\n" + a.stopList(ctx, textChooseStop))
	case stopRegex.MatchString(content):
		a.clearDialog(stmt.Subscriber)
		return reply(textDialogEnded)
	case helpRegex.MatchString(content):
		return reply(helpText)
	case listStopsRegex.MatchString(content):
		return reply(a.stopList(ctx, textChooseStop))
	case unwatchRegex.MatchString(content):
		return reply(a.unwatch(stmt.Subscriber))
	}

	if params := matchParams(stopArrivalsRegex, content); params != nil {
		return reply(a.query(ctx, params["stop"], ""))
	} else if params := matchParams(routeArrivalsRegex, content); params != nil {
		return reply(a.queryRoute(ctx, params["stop"], params["route"]))
	} else if params := matchParams(routeArrivalsRegex2, content); params != nil {
		return reply(a.queryRoute(ctx, params["stop"], params["route"]))
	} else if params := matchParams(watchRegex, content); params != nil {
		return reply(a.watch(ctx, stmt.Subscriber, params["stop"], params["route"]))
	}

	d := a.getDialog(stmt.Subscriber)
	if d == nil {
		return nil, ErrStatementNotHandled
	}

	if backRegex.MatchString(content) {
		a.setDialog(stmt.Subscriber, &dialog{state: dialogChoosingStop})
		return reply(a.stopList(ctx, textChooseOtherStop))
	}

	switch d.state {
	case dialogChoosingStop:
		names, err := a.svc.StopNames(ctx)
		if err != nil {
			a.logger.Warn("error listing stops",
				zap.Error(err),
			)
			return reply(textQueryFailed)
		}
		for _, name := range names {
			if strings.EqualFold(name, content) {
				a.setDialog(stmt.Subscriber, &dialog{state: dialogChoosingRoute, stop: name})
				return reply(textEnterRoute)
			}
		}
		return reply(arrivals.RenderUnknownStop(content) + "\n" + a.stopList(ctx, textChooseStop))
	case dialogChoosingRoute:
		// The dialog stays on the chosen stop so another route can be checked straight away.
		return reply(a.queryRoute(ctx, d.stop, content))
	}

	return nil, ErrStatementNotHandled
}

func (a *Arrivals) queryRoute(ctx context.Context, stop string, routeNumber string) string {
	if !isDigits(routeNumber) {
		return textInvalidRoute
	}
	return a.query(ctx, stop, routeNumber)
}

func (a *Arrivals) query(ctx context.Context, stop string, routeNumber string) string {
	answer, err := a.svc.Query(ctx, stop, routeNumber)
	if errors.Is(err, arrivals.ErrUnknownStop) {
		return arrivals.RenderUnknownStop(stop)
	} else if errors.Is(err, arrivals.ErrInvalidRoute) {
		return textInvalidRoute
	} else if err != nil {
		a.logger.Warn("unable to get stop arrivals",
			zap.String("stop_name", stop),
			zap.String("route_number", routeNumber),
			zap.Error(err),
		)
		return textQueryFailed
	}

	return answer.Text
}

func (a *Arrivals) watch(ctx context.Context, subscriber string, stop string, route string) string {
	if a.watcher == nil {
		return textWatchDisabled
	}

	routeNumber := route
	if strings.EqualFold(route, "all") || strings.EqualFold(route, "все") {
		routeNumber = ""
	} else if !isDigits(route) {
		return textInvalidRoute
	}

	id, err := a.watcher.Watch(ctx, subscriber, stop, routeNumber)
	if errors.Is(err, arrivals.ErrUnknownStop) {
		return arrivals.RenderUnknownStop(stop)
	} else if errors.Is(err, arrivals.ErrInvalidRoute) {
		return textInvalidRoute
	} else if errors.Is(err, arrivals.ErrTooManyWatches) {
		return textWatchLimit
	} else if err != nil {
		a.logger.Warn("unable to watch stop",
			zap.String("stop_name", stop),
			zap.String("route_number", routeNumber),
			zap.Error(err),
		)
		return textQueryFailed
	}

	a.logger.Debug("watch added",
		zap.String("watch_id", id),
		zap.String("subscriber", subscriber),
	)
	return textWatchAdded
}

func (a *Arrivals) unwatch(subscriber string) string {
	if a.watcher == nil {
		return textWatchDisabled
	}
	return fmt.Sprintf(textUnwatched, a.watcher.UnwatchSubscriber(subscriber))
}

func (a *Arrivals) stopList(ctx context.Context, header string) string {
	names, err := a.svc.StopNames(ctx)
	if err != nil {
		a.logger.Warn("error listing stops",
			zap.Error(err),
		)
		return textQueryFailed
	} else if len(names) < 1 {
		return textNoStops
	}

	return header + "\n" + strings.Join(names, "\n")
}

func (a *Arrivals) getDialog(subscriber string) *dialog {
	a.dialogsLock.Lock()
	defer a.dialogsLock.Unlock()

	if d, ok := a.dialogs[subscriber]; ok {
		snapshot := *d
		return &snapshot
	}
	return nil
}

func (a *Arrivals) setDialog(subscriber string, d *dialog) {
	a.dialogsLock.Lock()
	defer a.dialogsLock.Unlock()

	a.dialogs[subscriber] = d
}

func (a *Arrivals) clearDialog(subscriber string) {
	a.dialogsLock.Lock()
	defer a.dialogsLock.Unlock()

	delete(a.dialogs, subscriber)
}

func matchParams(re *regexp.Regexp, content string) map[string]string {
	matched := re.FindStringSubmatch(content)
	if matched == nil {
		return nil
	}

	params := map[string]string{}
	for idx, name := range re.SubexpNames() {
		if name != "" {
			params[name] = matched[idx]
		}
	}
	return params
}

func isDigits(s string) bool {
	if len(s) < 1 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
