package email

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier sends mail in the background. A failed send is logged and
// never reaches the request that triggered it.
type Notifier struct {
	sender  Sender
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewNotifier(sender Sender, log *zap.Logger) *Notifier {
	return &Notifier{sender: sender, timeout: 15 * time.Second, log: log.With(zap.String("component", "email"))}
}

// Notify returns immediately. The send is detached from the caller's
// context so a finished request does not cancel it.
func (n *Notifier) Notify(msg Message) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.sender.Send(ctx, msg); err != nil {
			n.log.Warn("notification not delivered", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		n.log.Debug("notification sent", zap.String("subject", msg.Subject))
	}()
}

// Wait blocks until every pending send has finished. Called on shutdown.
func (n *Notifier) Wait() { n.wg.Wait() }
