package narration

import (
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Default utterance parameters.
const (
	DefaultRate  = 0.9
	DefaultPitch = 1.0
)

// Voice is a synthesis voice offered by a Speaker.
type Voice struct {
	Name string
	Lang string // BCP 47 tag, e.g. en-US
}

// Utterance is one request to speak a piece of text. A Speaker reports its
// progress through the hooks: OnStart when audio begins, then exactly one
// of OnEnd or OnError.
type Utterance struct {
	Text  string
	Rate  float64
	Pitch float64

	OnStart func()
	OnEnd   func()
	OnError func(error)

	mu    sync.Mutex
	voice *Voice
}

// NewUtterance creates an utterance with the default rate and pitch.
func NewUtterance(text string) *Utterance {
	return &Utterance{
		Text:  text,
		Rate:  DefaultRate,
		Pitch: DefaultPitch,
	}
}

// SetVoice assigns the voice. It may be called after the utterance was
// handed to a Speaker, once voices become available.
func (u *Utterance) SetVoice(v *Voice) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.voice = v
}

// Voice returns the assigned voice, or nil to use the speaker's default.
func (u *Utterance) Voice() *Voice {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.voice
}

// NotifyStart runs the OnStart hook. Speakers call it when audio begins.
func (u *Utterance) NotifyStart() {
	if u.OnStart != nil {
		u.OnStart()
	}
}

// NotifyEnd runs the OnEnd hook.
func (u *Utterance) NotifyEnd() {
	if u.OnEnd != nil {
		u.OnEnd()
	}
}

// NotifyError runs the OnError hook.
func (u *Utterance) NotifyError(err error) {
	if u.OnError != nil {
		u.OnError(err)
	}
}

// Speaker is the text-to-speech capability.
//
// Implementations queue nothing: Speak replaces whatever is in flight.
// Voices may be empty until the speaker has discovered its voices, at which
// point it calls the function registered with OnVoicesChanged.
type Speaker interface {
	// Speak starts speaking u. A non-nil error means no hooks will fire.
	Speak(u *Utterance) error
	// Cancel stops the in-flight utterance.
	Cancel()
	// Pause suspends audio output.
	Pause()
	// Resume continues suspended audio output.
	Resume()
	// Voices lists the voices available right now.
	Voices() []Voice
	// OnVoicesChanged registers fn to run when the voice list changes,
	// replacing any previous registration.
	OnVoicesChanged(fn func())
}

// SelectVoice picks a voice from voices. A non-empty preferred name is
// fuzzy-matched first; otherwise the first English voice with "female" in
// its name wins, then any English voice, then the first voice. It returns
// nil for an empty list.
func SelectVoice(voices []Voice, preferred string) *Voice {
	if len(voices) == 0 {
		return nil
	}

	if preferred != "" {
		names := make([]string, len(voices))
		for i, v := range voices {
			names[i] = v.Name
		}
		if matches := fuzzy.Find(preferred, names); len(matches) > 0 {
			return &voices[matches[0].Index]
		}
	}

	for i, v := range voices {
		if isEnglish(v) && strings.Contains(strings.ToLower(v.Name), "female") {
			return &voices[i]
		}
	}
	for i, v := range voices {
		if isEnglish(v) {
			return &voices[i]
		}
	}
	return &voices[0]
}

func isEnglish(v Voice) bool {
	return strings.HasPrefix(v.Lang, "en")
}
