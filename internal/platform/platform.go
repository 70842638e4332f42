package platform

import "context"

// ElementRef is an opaque handle to a node in the rendered document.
// Only the Tree that returned it knows how to interpret it.
type ElementRef interface{}

// Tree queries and manipulates the rendered document of a browser session.
type Tree interface {
	// FindAll returns every element matching q, in document order.
	FindAll(ctx context.Context, q Query) ([]ElementRef, error)

	// Attribute returns the named attribute and whether it is present.
	// For form controls "value" reads the live value.
	Attribute(ctx context.Context, ref ElementRef, name string) (string, bool, error)

	// Text returns the rendered text of the element, whitespace-collapsed.
	Text(ctx context.Context, ref ElementRef) (string, error)

	IsVisible(ctx context.Context, ref ElementRef) (bool, error)
	IsSelected(ctx context.Context, ref ElementRef) (bool, error)

	Click(ctx context.Context, ref ElementRef) error
	Type(ctx context.Context, ref ElementRef, text string) error
	Clear(ctx context.Context, ref ElementRef) error

	CurrentURL(ctx context.Context) (string, error)
	Navigate(ctx context.Context, url string) error
}

// DialogHandler accepts or dismisses modal JavaScript dialogs.
// Both methods return ErrNoDialog when no dialog is showing.
type DialogHandler interface {
	AcceptDialog(ctx context.Context) error
	DismissDialog(ctx context.Context) error
}

// Screenshotter captures the current viewport as PNG bytes.
type Screenshotter interface {
	CaptureScreenshot(ctx context.Context) ([]byte, error)
}
