// ABOUTME: Watch subcommand
// ABOUTME: Prints change events published by other leadflow processes over Redis
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/leadflow/events"
)

// Listener delivers events from another process to a local publisher.
type Listener interface {
	Listen(ctx context.Context, bus events.Publisher) error
}

// WatchCommand prints every change event until ctx is cancelled.
func WatchCommand(ctx context.Context, listener Listener, out io.Writer) error {
	bus := events.NewInMemoryBus(nil)
	printEvent := events.HandlerFunc(func(_ context.Context, e events.Event) error {
		ids := make([]string, len(e.EntityIDs))
		for i, id := range e.EntityIDs {
			ids[i] = fmt.Sprint(id)
		}
		_, err := fmt.Fprintf(out, "%s  %-20s %-20s %s\n",
			e.OccurredAt.Local().Format("15:04:05"), e.Name, e.Reason, strings.Join(ids, ","))
		return err
	})
	for _, name := range []string{events.ContactsChanged, events.CompaniesChanged, events.DealsChanged, events.ActivitiesChanged} {
		defer bus.Subscribe(name, printEvent)()
	}

	return listener.Listen(ctx, bus)
}
