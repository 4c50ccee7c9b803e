package mail

import (
    "context"

    "go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them.  It is
// used when no SMTP host is configured.
type LogSender struct {
    log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
    return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    s.log.Info("mail (not sent, SMTP disabled)",
        zap.String("to", m.To),
        zap.String("subject", m.Subject),
        zap.String("text", m.Text),
    )
    return nil
}
