package services

import (
	"errors"
	"sync"
	"time"
)

// MaxRecordingTime is the hard ceiling for one take.
const MaxRecordingTime = 30 * time.Second

var (
	ErrRecordingActive    = errors.New("recording already in progress")
	ErrRecordingNotActive = errors.New("no recording in progress")
)

// RecordingSession is the per-session recording state value object: it
// buffers captured chunks between Start and Stop and yields zero or one
// blob per session. A session auto-stops when the ceiling elapses; chunks
// arriving after that are dropped.
type RecordingSession struct {
	mu        sync.Mutex
	ceiling   time.Duration
	now       func() time.Time
	recording bool
	startedAt time.Time
	chunks    []byte
	blob      []byte
}

func NewRecordingSession() *RecordingSession {
	return &RecordingSession{ceiling: MaxRecordingTime, now: time.Now}
}

// Start begins capture. The previous blob, if any, is discarded.
func (r *RecordingSession) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrRecordingActive
	}
	r.recording = true
	r.startedAt = r.now()
	r.chunks = nil
	r.blob = nil
	return nil
}

// Write appends a captured chunk. Chunks offered after the ceiling elapsed
// finalize the session instead of growing it.
func (r *RecordingSession) Write(chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return ErrRecordingNotActive
	}
	if r.now().Sub(r.startedAt) >= r.ceiling {
		r.finalizeLocked()
		return nil
	}
	r.chunks = append(r.chunks, chunk...)
	return nil
}

// Stop finalizes the blob from the buffered chunks.
func (r *RecordingSession) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return ErrRecordingNotActive
	}
	r.finalizeLocked()
	return nil
}

func (r *RecordingSession) finalizeLocked() {
	r.recording = false
	r.blob = r.chunks
	r.chunks = nil
}

// Blob returns the finalized take, if one exists.
func (r *RecordingSession) Blob() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording || r.blob == nil {
		return nil, false
	}
	return r.blob, true
}

// Remaining reports the countdown until auto-stop; zero when idle or done.
func (r *RecordingSession) Remaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return 0
	}
	left := r.ceiling - r.now().Sub(r.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Reset discards all session state.
func (r *RecordingSession) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	r.chunks = nil
	r.blob = nil
}
