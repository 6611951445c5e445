package runner

import (
	"fyne.io/fyne/v2"

	"intervaltimer/internal/cues"
)

// NotificationSink shows phase starts and completion as desktop notifications.
// Countdown cues are left to the run window.
type NotificationSink struct {
	app   fyne.App
	title string
}

func NewNotificationSink(app fyne.App, title string) *NotificationSink {
	return &NotificationSink{app: app, title: title}
}

func (sink *NotificationSink) Play(cue cues.Cue) error {
	switch cue.Kind {
	case cues.CuePhaseStart, cues.CueComplete:
		sink.app.SendNotification(fyne.NewNotification(sink.title, cue.String()))
	}
	return nil
}
