package mind

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	mimeTypeText = "text/plain"
)

var (
	// ErrStatementNotHandled is returned if a particular handler fails to process the statement
	ErrStatementNotHandled = errors.New("statement not handled")
	// ErrStatementIgnored is returned if no registered handlers chose to process the statement
	ErrStatementIgnored = errors.New("statement ignored")
)

// Statement is a single message exchanged with a user.
type Statement struct {
	ID         string
	Subscriber string

	MimeType     string
	LanguageCode string
	Content      string
	CreateAt     time.Time
}

// Handler describes an implementation to process statements and potentially take actions on them.
type Handler interface {
	ProcessStatement(context.Context, *Statement) (*Statement, error)
}

// Service is a messaging service.
type Service struct {
	logger *zap.Logger

	handlers []Handler
}

// NewService creates a new messaging service.
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// RegisterHandler adds another implementation to the call chain.
func (s *Service) RegisterHandler(handler Handler) {
	s.handlers = append(s.handlers, handler)
}

// SendStatement takes a supplied statement and passes it into the handler chain.
// The first handler which does not return ErrStatementNotHandled supplies the reply.
func (s *Service) SendStatement(ctx context.Context, stmt *Statement) (*Statement, error) {
	for _, handler := range s.handlers {
		resp, err := handler.ProcessStatement(ctx, stmt)
		if errors.Is(err, ErrStatementNotHandled) {
			continue
		} else if err != nil {
			s.logger.Info("error processing statement",
				zap.String("statement_id", stmt.ID),
				zap.String("subscriber", stmt.Subscriber),
				zap.Error(err),
			)
		}

		return resp, err
	}

	return nil, ErrStatementIgnored
}

func statementFromText(subscriber string, content string) *Statement {
	return &Statement{
		ID:         uuid.New().String(),
		Subscriber: subscriber,
		MimeType:   mimeTypeText,
		Content:    content,
		CreateAt:   time.Now(),
	}
}
