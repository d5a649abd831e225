// Package notification delivers customer-facing event notices. The default
// implementation only logs; a real transport (email, push) plugs in behind
// the same interface.
package notification

import (
	"context"
	"log"
	"sort"
	"strings"
)

type Notifier interface {
	Notify(ctx context.Context, templateKey, recipient string, vars map[string]string) error
}

// LogNotifier writes each notification as a single key=value log line.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, templateKey, recipient string, vars map[string]string) error {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(vars[k])
	}
	n.logger.Printf("level=info msg=notification template=%s recipient=%s%s", templateKey, recipient, b.String())
	return nil
}
