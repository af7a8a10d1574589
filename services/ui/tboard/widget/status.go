package widget

import (
	"fmt"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
	"github.com/rmrobinson/arrivals/services/arrivals"
)

// Status is a widget to display the outcome of the latest query.
type Status struct {
	*tview.TextView

	app *tview.Application
}

// NewStatus creates a new status widget.
func NewStatus(app *tview.Application) *Status {
	s := &Status{
		TextView: tview.NewTextView(),
		app:      app,
	}

	s.SetTextAlign(tview.AlignLeft).
		SetTextColor(tcell.ColorBlue).
		SetBorder(true).
		SetTitle("Status")

	return s
}

// Refresh updates the contents of the status widget.
func (s *Status) Refresh(contents string) {
	s.app.QueueUpdateDraw(func() {
		s.Clear()
		s.SetText(contents)
	})
}

func statusText(answer *arrivals.Answer, err error) string {
	if err != nil {
		return "error: " + err.Error()
	} else if answer == nil || answer.Result == nil {
		return ""
	}

	res := answer.Result
	if res.Kind == arrivals.ResultSuccess {
		return fmt.Sprintf("%s after %d attempt(s)", res.Kind, res.Attempts)
	}
	return fmt.Sprintf("%s after %d attempt(s)\n%s", res.Kind, res.Attempts, answer.Text)
}

// RefreshAnswer shows the result of a query, or the error which prevented one.
func (s *Status) RefreshAnswer(answer *arrivals.Answer, err error) {
	s.Refresh(statusText(answer, err))
}
