// Package speakerout plays an audio.FX mix through the default sound device.
//
// The speaker backend needs cgo and the platform audio library, so only the
// local terminal build imports this package. The SSH server and the gameplay
// packages depend on audio alone.
package speakerout

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/speaker"
	"github.com/tomz197/capylabs/internal/audio"
)

// bufferTime is the speaker's buffer length. Longer buffers add latency to
// every shot.
const bufferTime = 100 * time.Millisecond

// Start initializes the speaker and streams fx to it until the returned stop
// function is called.
func Start(fx *audio.FX) (stop func(), err error) {
	if err := speaker.Init(audio.SampleRate, audio.SampleRate.N(bufferTime)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	fx.Attach()
	speaker.Play(fx)
	return func() {
		speaker.Clear()
		speaker.Close()
		fx.Detach()
	}, nil
}
