package narration

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between the controller and the UI.

// StateChangedMsg carries a new playback snapshot.
type StateChangedMsg struct {
	State PlaybackState
}

// SubscriptionClosedMsg indicates the controller closed the subscription.
type SubscriptionClosedMsg struct{}

// WaitForState returns a command that delivers the next snapshot from ch.
// The UI re-issues it after every StateChangedMsg.
func WaitForState(ch <-chan PlaybackState) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return SubscriptionClosedMsg{}
		}
		return StateChangedMsg{State: st}
	}
}

// StatusLine describes the playback state in a short sentence.
func StatusLine(st PlaybackState) string {
	switch {
	case st.IsNarrating:
		return fmt.Sprintf("🔊 Speaking point %d of %d...", st.CurrentIndex+1, st.Total)
	case st.IsActive():
		return "Preparing next point..."
	default:
		return "Ready to explain"
	}
}
