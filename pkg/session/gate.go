package session

import "context"

// EventSource delivers auth-state events until unsubscribe is called.
type EventSource interface {
	Subscribe(ctx context.Context) (events <-chan Event, unsubscribe func(), err error)
}

// LookupFunc returns the current session, or nil when signed out.
type LookupFunc func(ctx context.Context) (*Session, error)

// Gate decides the initial route on launch and re-decides it on every auth event.
type Gate struct {
	lookup LookupFunc
	source EventSource
}

func NewGate(lookup LookupFunc, source EventSource) *Gate {
	return &Gate{lookup: lookup, source: source}
}

// Run reports the launch route, then one route per event, until ctx ends or the
// source closes. The subscription is released on every return path.
func (g *Gate) Run(ctx context.Context, onRoute func(Route)) error {
	onRoute(ClassifyLookup(g.lookup(ctx)))

	events, unsubscribe, err := g.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			onRoute(Classify(ev.Session))
		}
	}
}
