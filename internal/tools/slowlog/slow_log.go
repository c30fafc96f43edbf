package slowlog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultThreshold is the duration from which a breakpoint is reported as slow.
const DefaultThreshold = 2 * time.Second

type Logger interface {
	Start(name string)
	Stop(name string) time.Duration
}

type slowLogger struct {
	mu        sync.Mutex
	log       *zerolog.Logger
	threshold time.Duration
	timers    map[string]time.Time
	now       func() time.Time
}

// Start (re)starts the breakpoint timer.
func (s *slowLogger) Start(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers[name] = s.now()
}

// Stop logs the breakpoint duration, at warn level once it reaches the threshold.
// A breakpoint that was never started returns zero and logs nothing.
func (s *slowLogger) Stop(name string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, ok := s.timers[name]
	if !ok {
		return 0
	}

	delete(s.timers, name)
	duration := s.now().Sub(start)

	event := s.log.Debug()
	if duration >= s.threshold {
		event = s.log.Warn().Bool("slow", true)
	}

	event.
		Float64("duration", duration.Seconds()).
		Str("breakpoint_name", name).
		Msg("")

	return duration
}

func CreateLogger(log *zerolog.Logger) *slowLogger {
	return CreateLoggerWithThreshold(log, DefaultThreshold)
}

func CreateLoggerWithThreshold(log *zerolog.Logger, threshold time.Duration) *slowLogger {
	logger := log.With().Str("label", "slowlog").Logger()

	return &slowLogger{
		log:       &logger,
		threshold: threshold,
		timers:    make(map[string]time.Time),
		now:       time.Now,
	}
}
