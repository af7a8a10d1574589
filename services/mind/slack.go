package mind

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nlopes/slack"
	"github.com/rmrobinson/arrivals/lib/stream"
	"github.com/rmrobinson/arrivals/services/arrivals"
	"go.uber.org/zap"
)

// imPoster is the part of the slack API used to reply to users.
type imPoster interface {
	OpenIMChannel(user string) (bool, bool, string, error)
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackBot is a message service implementation.
type SlackBot struct {
	logger *zap.Logger
	s      *Service
	api    *slack.Client
	im     imPoster

	updates *stream.Sink
	selfID  string

	inflight sync.WaitGroup
}

// NewSlackBot creates a new slackbot using the supplied slack implementation.
// Watch updates received on updates are sent to their subscriber; updates may be nil.
func NewSlackBot(logger *zap.Logger, s *Service, api *slack.Client, updates *stream.Sink) *SlackBot {
	return &SlackBot{
		logger:  logger,
		s:       s,
		api:     api,
		im:      api,
		updates: updates,
	}
}

// Run begins the event loop and posts a greeting to the specified channel.
// It returns when the context is cancelled or the credentials are rejected.
func (sb *SlackBot) Run(ctx context.Context, channelID string) {
	rtm := sb.api.NewRTM()
	go rtm.ManageConnection()
	defer rtm.Disconnect()
	defer sb.inflight.Wait()

	var updates <-chan stream.Message
	if sb.updates != nil {
		updates = sb.updates.Messages()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			sb.forwardUpdate(msg)

		case msg, ok := <-rtm.IncomingEvents:
			if !ok {
				return
			}

			switch ev := msg.Data.(type) {
			case *slack.InvalidAuthEvent:
				sb.logger.Warn("credentials invalid")
				return

			case *slack.ConnectedEvent:
				sb.logger.Debug("connected to slack",
					zap.String("team_id", ev.Info.Team.ID),
					zap.String("team_name", ev.Info.Team.Name),
					zap.Int("connection_count", ev.ConnectionCount),
				)

				if ev.Info.User != nil {
					sb.selfID = ev.Info.User.ID
				}

				if len(channelID) > 0 {
					rtm.SendMessage(rtm.NewOutgoingMessage("Готов показать, когда придёт автобус.", channelID))
				}

			case *slack.MessageEvent:
				if len(ev.BotID) > 0 || len(ev.SubType) > 0 || ev.User == sb.selfID {
					continue
				}

				ts, err := parseUnixTime(ev.Timestamp)
				if err != nil {
					sb.logger.Info("error parsing timestamp for message",
						zap.String("user_name", ev.User),
						zap.String("message", ev.Text),
					)
					ts = time.Now()
				}

				sb.dispatch(ctx, ev.User, ev.Text, ts)

			case *slack.PresenceChangeEvent:
				sb.logger.Debug("presence changed",
					zap.String("username", ev.User),
				)

			case *slack.LatencyReport:
				sb.logger.Debug("latency report",
					zap.Float64("latency_secs", ev.Value.Seconds()),
				)

			case *slack.RTMError:
				sb.logger.Info("rtm error",
					zap.Error(ev),
				)
			}
		}
	}
}

// dispatch handles the message on its own goroutine so a slow query does not hold up the event loop.
func (sb *SlackBot) dispatch(ctx context.Context, userID string, text string, ts time.Time) {
	sb.inflight.Add(1)
	go func() {
		defer sb.inflight.Done()
		sb.handleMessage(ctx, userID, text, ts)
	}()
}

func (sb *SlackBot) handleMessage(ctx context.Context, userID string, text string, ts time.Time) {
	stmt := &Statement{
		ID:           uuid.New().String(),
		Subscriber:   userID,
		CreateAt:     ts,
		LanguageCode: "ru-RU",
		MimeType:     mimeTypeText,
		Content:      text,
	}

	reply, err := sb.s.SendStatement(ctx, stmt)
	if errors.Is(err, ErrStatementIgnored) {
		reply = statementFromText(userID, helpText)
	} else if err != nil {
		sb.logger.Info("error sending statement",
			zap.String("statement_id", stmt.ID),
			zap.Error(err),
		)
		return
	}

	if reply == nil {
		return
	}
	if err := sb.replyText(userID, reply.Content); err != nil {
		sb.logger.Info("error replying to statement",
			zap.String("statement_id", stmt.ID),
			zap.Error(err),
		)
	}
}

func (sb *SlackBot) forwardUpdate(msg stream.Message) {
	update, ok := msg.(*arrivals.Update)
	if !ok {
		sb.logger.Debug("ignoring unknown update",
			zap.String("message", msg.String()),
		)
		return
	}

	if err := sb.replyText(update.Subscriber, update.Stop+"\n"+update.Text); err != nil {
		sb.logger.Info("error forwarding watch update",
			zap.String("watch_id", update.WatchID),
			zap.String("user_id", update.Subscriber),
			zap.Error(err),
		)
	}
}

func (sb *SlackBot) replyText(userID string, text string) error {
	if len(userID) < 1 {
		return nil
	}

	_, _, channelID, err := sb.im.OpenIMChannel(userID)
	if err != nil {
		sb.logger.Debug("error creating IM channel",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	_, _, err = sb.im.PostMessage(channelID, slack.MsgOptionText(text, false))
	return err
}

func parseUnixTime(ts string) (time.Time, error) {
	parts := strings.SplitN(ts, ".", 2)
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Now(), err
	}
	if len(parts) < 2 {
		return time.Unix(sec, 0), nil
	}

	// Slack timestamps carry microseconds after the dot.
	usec, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Now(), err
	}

	return time.Unix(sec, usec*int64(time.Microsecond)), nil
}
