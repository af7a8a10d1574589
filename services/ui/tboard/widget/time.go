package widget

import (
	"context"
	"time"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
)

// Time is a widget to display the time for the current location.
type Time struct {
	*tview.TextView

	app *tview.Application

	location *time.Location
}

// NewTime creates a new time widget using the supplied timezone.
func NewTime(app *tview.Application, location *time.Location) *Time {
	t := &Time{
		TextView: tview.NewTextView(),
		app:      app,
		location: location,
	}

	t.SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorLime).
		SetBorder(true).
		SetTitle(location.String())

	return t
}

func clockText(now time.Time) string {
	return now.Format("Mon, 02 Jan 2006") + "\n" + now.Format("15:04:05 MST")
}

// Run updates the time widget until the context is cancelled.
func (t *Time) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond * 100)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.app.QueueUpdateDraw(func() {
				t.SetText(clockText(time.Now().In(t.location)))
			})
		}
	}
}
