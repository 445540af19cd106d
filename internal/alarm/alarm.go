package alarm

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Players tried in order when no player is configured.
var players = []string{"paplay", "aplay", "afplay"}

// DetectPlayer returns the audio player to use. An explicit override wins;
// otherwise the first player found on PATH, or "" if none is installed.
func DetectPlayer(override string) string {
	if override != "" {
		return override
	}
	for _, p := range players {
		if _, err := exec.LookPath(p); err == nil {
			return p
		}
	}
	return ""
}

// Alarm loops a sound until stopped. Start and Stop are idempotent.
type Alarm struct {
	sound  string
	player string
	bell   io.Writer
	pause  time.Duration
	play   func(ctx context.Context) error

	mu      sync.Mutex
	playing bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an alarm that loops sound through player. With no sound or
// no player it rings the terminal bell once a second instead.
func New(sound, player string) *Alarm {
	a := &Alarm{
		sound:  sound,
		player: player,
		bell:   os.Stderr,
		pause:  time.Second,
	}
	a.play = a.playOnce
	return a
}

// Start begins looping the alarm. It reports whether the alarm was silent
// before the call.
func (a *Alarm) Start() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.playing {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.playing = true

	go a.loop(ctx, a.done)

	log.WithFields(log.Fields{"component": "alarm", "player": a.player, "sound": a.sound}).Info("alarm started")
	return true
}

// Stop silences the alarm and rewinds it, so the next Start plays from the
// beginning. It reports whether the alarm was playing.
func (a *Alarm) Stop() bool {
	a.mu.Lock()
	if !a.playing {
		a.mu.Unlock()
		return false
	}
	a.playing = false
	a.cancel()
	done := a.done
	a.mu.Unlock()

	<-done
	log.WithField("component", "alarm").Info("alarm stopped")
	return true
}

// Playing reports whether the alarm is currently sounding.
func (a *Alarm) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

func (a *Alarm) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if err := a.play(ctx); err != nil && ctx.Err() == nil {
			log.WithField("component", "alarm").WithError(err).Warn("playback failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.pause):
		}
	}
}

// playOnce plays the sound to completion, or rings the bell.
func (a *Alarm) playOnce(ctx context.Context) error {
	if a.sound == "" || a.player == "" {
		_, err := io.WriteString(a.bell, "\a")
		return err
	}
	return exec.CommandContext(ctx, a.player, a.sound).Run()
}
