// Package browser owns the controllable browser a scrape run drives.
//
// Extractors only see the Session and Element interfaces; Launch provides
// the Rod-backed implementation.
package browser

import (
	"context"
	"time"
)

// Session is one live browser tab plus the process behind it.
type Session interface {
	// Navigate loads url in the tab and waits for the load event.
	Navigate(url string) error

	// WaitFor waits up to timeout for selector to match. It never fails the
	// caller; the result only reports whether the element showed up.
	WaitFor(selector string, timeout time.Duration) bool

	// HTML returns the currently rendered document.
	HTML() (string, error)

	// Elements returns every element matching selector, in document order.
	// No match is an empty slice, not an error.
	Elements(selector string) ([]Element, error)

	// Back navigates one step back in history.
	Back() error

	// Close shuts the tab and the browser down.
	Close() error
}

// Element is a handle on a node of the current page.
type Element interface {
	Click() error
}

// Opener creates a fresh Session bound to ctx.
type Opener func(ctx context.Context) (Session, error)
