package optimistic

import (
	"context"
	"strings"
)

// Notifier surfaces the outcome of a persisted change to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// Options tune one Apply call.
type Options struct {
	Notifier Notifier
	// SuccessMessage is shown after a successful save. Empty means stay silent.
	SuccessMessage string
	// FallbackError is shown when the persistence error has no message.
	FallbackError string
}

// Pending tracks the asynchronous persistence started by Apply.
type Pending struct {
	done       chan struct{}
	err        error
	rolledBack bool
}

// Failed returns an already-finished Pending carrying err.
func Failed(err error) *Pending {
	p := &Pending{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Wait blocks until persistence finished and returns its error.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Done is closed once persistence finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// RolledBack reports whether the local change was reverted. Valid after Wait.
func (p *Pending) RolledBack() bool {
	<-p.done
	return p.rolledBack
}

// Apply computes next from the holder's current value, stores it immediately and
// persists it in the background. If persist fails, the holder goes back to the value
// it had right before this change, unless the holder was reset in the meantime.
//
// A reducer error leaves the holder untouched, is reported through the notifier and
// nothing is persisted.
func Apply[T any](ctx context.Context, h *Holder[T], reduce func(prev T) (T, error), persist func(ctx context.Context, next T) error, opts Options) *Pending {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	prev, next, gen, err := h.update(reduce)
	if err != nil {
		notifier.Error(errorMessage(err, opts.FallbackError))
		return Failed(err)
	}

	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		if err := persist(ctx, next); err != nil {
			p.err = err
			p.rolledBack = h.SetIf(gen, prev)
			if p.rolledBack {
				notifier.Error(errorMessage(err, opts.FallbackError))
			}
			return
		}
		if opts.SuccessMessage != "" && h.Generation() == gen {
			notifier.Success(opts.SuccessMessage)
		}
	}()
	return p
}

func errorMessage(err error, fallback string) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return "Something went wrong. Please try again."
}
