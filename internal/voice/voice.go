// Package voice passes recorded speech to a recognizer and delivers the
// final transcript. Partial results are never exposed.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/zulandar/mandi/internal/i18n"
)

var (
	// ErrBusy is returned by Start while a recognition is running.
	ErrBusy = errors.New("voice: already listening")
	// ErrNoSpeech is returned when recognition finished without a
	// transcript.
	ErrNoSpeech = errors.New("voice: no speech recognized")
)

// Recognizer turns audio into text for a speech locale such as "hi-IN".
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, locale string) (string, error)
}

// EchoRecognizer treats the audio bytes as UTF-8 text. It stands in for a
// real speech service.
type EchoRecognizer struct{}

// Recognize implements Recognizer.
func (EchoRecognizer) Recognize(_ context.Context, audio []byte, _ string) (string, error) {
	return strings.TrimSpace(string(audio)), nil
}

// Input is one microphone: it runs at most one recognition at a time.
type Input struct {
	rec    Recognizer
	locale string
	out    chan string

	mu        sync.Mutex
	listening bool
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// NewInput creates an Input recognizing speech in lang.
func NewInput(rec Recognizer, lang string) *Input {
	if rec == nil {
		rec = EchoRecognizer{}
	}
	done := make(chan struct{})
	close(done)
	return &Input{
		rec:    rec,
		locale: i18n.SpeechLocale(i18n.Normalize(lang)),
		out:    make(chan string, 1),
		done:   done,
	}
}

// Locale returns the speech locale in use.
func (in *Input) Locale() string { return in.locale }

// Start begins recognizing audio in the background.
func (in *Input) Start(ctx context.Context, audio []byte) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.listening {
		return ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	in.listening = true
	in.cancel = cancel
	in.done = make(chan struct{})
	in.err = nil
	go in.run(runCtx, audio, in.done)
	return nil
}

func (in *Input) run(ctx context.Context, audio []byte, done chan struct{}) {
	text, err := in.rec.Recognize(ctx, audio, in.locale)
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = ErrNoSpeech
	}

	stopped := ctx.Err() != nil

	in.mu.Lock()
	defer in.mu.Unlock()
	defer close(done)
	in.listening = false
	in.cancel()
	if stopped && err != nil {
		// Stopped by the caller; nothing to report.
		in.err = context.Canceled
		return
	}
	if err != nil {
		log.Printf("voice: recognize (%s): %v", in.locale, err)
		in.err = err
		return
	}
	// Keep only the newest transcript.
	select {
	case <-in.out:
	default:
	}
	in.out <- text
}

// Stop abandons a running recognition.
func (in *Input) Stop() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.cancel != nil {
		in.cancel()
	}
}

// IsListening reports whether a recognition is running.
func (in *Input) IsListening() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.listening
}

// Transcript delivers final transcripts.
func (in *Input) Transcript() <-chan string { return in.out }

// Done is closed when the current recognition ends.
func (in *Input) Done() <-chan struct{} {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.done
}

// Err returns the error of the last recognition, if any.
func (in *Input) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err
}

// Transcribe runs one recognition and waits for its transcript.
func (in *Input) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if err := in.Start(ctx, audio); err != nil {
		return "", err
	}
	done := in.Done()
	select {
	case <-ctx.Done():
		in.Stop()
		return "", ctx.Err()
	case <-done:
	}
	select {
	case t := <-in.out:
		return t, nil
	default:
	}
	if err := in.Err(); err != nil {
		return "", fmt.Errorf("voice: transcribe: %w", err)
	}
	return "", ErrNoSpeech
}
