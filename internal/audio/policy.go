package audio

import (
	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/video"
)

// Policy holds the gain constants of the mix.
type Policy struct {
	IntroDuration     float64
	IntroGain         float64
	IntroMusicGain    float64
	AltIntro          bool
	AltIntroMusicGain float64
	BodyGain          float64
	BodyMusicGain     float64
	ShortGain         float64
	ShortMusicGain    float64
	MusicOnlyGain     float64
}

// DefaultPolicy returns the stock gains.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Audio)
}

func PolicyFromConfig(a config.Audio) Policy {
	return Policy{
		IntroDuration:     a.IntroDuration,
		IntroGain:         a.IntroGain,
		IntroMusicGain:    a.IntroMusicGain,
		AltIntro:          a.AltIntro,
		AltIntroMusicGain: a.AltIntroMusicGain,
		BodyGain:          a.BodyGain,
		BodyMusicGain:     a.BodyMusicGain,
		ShortGain:         a.ShortGain,
		ShortMusicGain:    a.ShortMusicGain,
		MusicOnlyGain:     a.MusicOnlyGain,
	}
}

// Envelopes returns the gain curves for the segment's own audio and for the
// music. ownUsed is false when the segment has no audio of its own.
func (p Policy) Envelopes(seg segment.Segment) (own, music video.Envelope, ownUsed bool) {
	if !seg.HasAudio {
		return video.Envelope{}, video.Envelope{Tail: p.MusicOnlyGain}, false
	}
	if seg.Duration < p.IntroDuration {
		return video.Envelope{Tail: p.ShortGain}, video.Envelope{Tail: p.ShortMusicGain}, true
	}
	introMusic := p.IntroMusicGain
	if p.AltIntro {
		introMusic = p.AltIntroMusicGain
	}
	own = video.Envelope{Split: p.IntroDuration, Head: p.IntroGain, Tail: p.BodyGain}
	music = video.Envelope{Split: p.IntroDuration, Head: introMusic, Tail: p.BodyMusicGain}
	return own, music, true
}
