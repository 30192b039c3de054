package cli

import (
	"sync"

	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/logging"
	"github.com/sofiamatics/hospdir/internal/state"
)

// eventTracer logs every state transition published on a bus. It reads from
// a SubscribeAll channel on its own goroutine, so a slow terminal never
// stalls the controller; overflow shows up in the dropped count.
type eventTracer struct {
	bus    *events.EventBus
	ch     <-chan events.Event
	log    *logging.Logger
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
	traced int
}

func startEventTracer(bus *events.EventBus, log *logging.Logger) *eventTracer {
	t := &eventTracer{
		bus:  bus,
		ch:   bus.SubscribeAll(),
		log:  log,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *eventTracer) loop() {
	defer close(t.done)
	for {
		select {
		case e, ok := <-t.ch:
			if !ok {
				return
			}
			t.trace(e)
		case <-t.quit:
			// drain what was buffered before the unsubscribe
			for {
				select {
				case e, ok := <-t.ch:
					if !ok {
						return
					}
					t.trace(e)
				default:
					return
				}
			}
		}
	}
}

func (t *eventTracer) trace(e events.Event) {
	t.traced++
	switch ev := e.(type) {
	case *state.ListingChangedEvent:
		snap := ev.Snapshot
		t.log.Debug().
			Str("reason", string(ev.Reason)).
			Str("country", snap.SelectedCountry).
			Str("state", snap.SelectedState).
			Str("search", snap.SearchQuery).
			Int("page", snap.CurrentPage).
			Int("per_page", snap.ItemsPerPage).
			Bool("loading", snap.Loading).
			Int("hospitals", len(snap.Hospitals)).
			Str("error", snap.Error).
			Msg("listing changed")
	case *state.CountriesChangedEvent:
		t.log.Debug().
			Str("reason", string(ev.Reason)).
			Int("countries", len(ev.Countries)).
			Bool("loading", ev.Loading).
			Str("error", ev.Error).
			Msg("countries changed")
	default:
		t.log.Debug().Str("type", string(e.Type())).Msg("event")
	}
}

// stop unsubscribes, waits for the buffered events to be logged and reports
// how many events the tracer saw and how many the bus dropped. It is safe to
// call more than once.
func (t *eventTracer) stop() {
	t.once.Do(func() {
		t.bus.UnsubscribeAll(t.ch)
		close(t.quit)
		<-t.done
		t.log.Debug().
			Int("traced", t.traced).
			Int64("dropped", t.bus.GetDroppedEventCount()).
			Msg("event trace finished")
	})
}
