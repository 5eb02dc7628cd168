// Package logging provides the interpreter's internal structured logger.
//
// It logs the evaluator's own housekeeping (lifetime sweeps, dispatch queue
// drains, module loads) — never the `?`-terminated statement output, which
// always goes straight to the configured writer unformatted (spec §7).
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Format selects the on-the-wire log encoding.
type Format int

const (
	TextFormat Format = iota
	JSONFormat
)

// Entry is a single emitted log record.
type Entry struct {
	Timestamp     time.Time              `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
	Caller        string                 `json:"caller,omitempty"`
}

// Config configures a Logger.
type Config struct {
	MinLevel      Level
	Format        Format
	IncludeCaller bool
	BufferSize    int
	Outputs       []io.Writer
}

// Logger is the interpreter's structured logger. Writes are buffered and
// drained by a single goroutine so evaluator hot paths never block on I/O.
type Logger struct {
	cfg     Config
	buffer  chan *Entry
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
	syncCh  chan chan struct{}
}

// New creates a Logger. Defaults: DEBUG level (the zero Level), text
// format, stdout, a 256-entry buffer.
func New(cfg Config) *Logger {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}
	if len(cfg.Outputs) == 0 {
		cfg.Outputs = []io.Writer{os.Stdout}
	}
	l := &Logger{
		cfg:    cfg,
		buffer: make(chan *Entry, cfg.BufferSize),
		syncCh: make(chan chan struct{}, 1),
	}
	l.wg.Add(1)
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer l.wg.Done()
	for {
		select {
		case entry, ok := <-l.buffer:
			if !ok {
				select {
				case done := <-l.syncCh:
					close(done)
				default:
				}
				return
			}
			l.write(entry)
		case done := <-l.syncCh:
			for drained := false; !drained; {
				select {
				case entry := <-l.buffer:
					l.write(entry)
				default:
					drained = true
				}
			}
			close(done)
		}
	}
}

func (l *Logger) write(entry *Entry) {
	var line string
	if l.cfg.Format == JSONFormat {
		b, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: marshal failed: %v\n", err)
			return
		}
		line = string(b) + "\n"
	} else {
		line = formatText(entry)
	}
	for _, w := range l.cfg.Outputs {
		if _, err := w.Write([]byte(line)); err != nil {
			fmt.Fprintf(os.Stderr, "logging: write failed: %v\n", err)
		}
	}
}

func formatText(e *Entry) string {
	out := fmt.Sprintf("[%s] [%s]", e.Timestamp.Format("2006-01-02 15:04:05.000"), e.Level)
	if e.CorrelationID != "" {
		out += fmt.Sprintf(" [%s]", e.CorrelationID)
	}
	if e.Caller != "" {
		out += fmt.Sprintf(" [%s]", e.Caller)
	}
	out += " " + e.Message
	if len(e.Fields) > 0 {
		fieldsStr := ""
		for k, v := range e.Fields {
			if fieldsStr != "" {
				fieldsStr += ", "
			}
			fieldsStr += fmt.Sprintf("%s=%v", k, v)
		}
		out += fmt.Sprintf(" {%s}", fieldsStr)
	}
	return out + "\n"
}

func (l *Logger) log(level Level, msg string, fields map[string]interface{}, correlationID string) {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped || level < l.cfg.MinLevel {
		return
	}

	entry := &Entry{
		Timestamp:     time.Now(),
		Level:         level.String(),
		Message:       msg,
		CorrelationID: correlationID,
		Fields:        fields,
	}
	if l.cfg.IncludeCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	select {
	case l.buffer <- entry:
	default:
		l.write(entry)
	}
}

func (l *Logger) Debug(msg string)                                    { l.log(DEBUG, msg, nil, "") }
func (l *Logger) Info(msg string)                                     { l.log(INFO, msg, nil, "") }
func (l *Logger) Warn(msg string)                                     { l.log(WARN, msg, nil, "") }
func (l *Logger) Error(msg string)                                    { l.log(ERROR, msg, nil, "") }
func (l *Logger) DebugFields(msg string, f map[string]interface{})    { l.log(DEBUG, msg, f, "") }
func (l *Logger) InfoFields(msg string, f map[string]interface{})     { l.log(INFO, msg, f, "") }
func (l *Logger) WarnFields(msg string, f map[string]interface{})     { l.log(WARN, msg, f, "") }
func (l *Logger) ErrorFields(msg string, f map[string]interface{})    { l.log(ERROR, msg, f, "") }

// Sync blocks until every buffered entry has been written. Tests use this to
// observe log output deterministically.
func (l *Logger) Sync() {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return
	}
	done := make(chan struct{})
	l.syncCh <- done
	<-done
}

// Close drains and stops the logger.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	l.mu.Unlock()
	close(l.buffer)
	l.wg.Wait()
	return nil
}

// NewCorrelationID mints a fresh id for a REPL session or a WhenDispatcher
// subscription, so related log lines and `:when` introspection output can be
// joined without leaking any interpreter state.
func NewCorrelationID() string {
	return uuid.New().String()
}

// WithCorrelation returns a logger bound to a correlation id (e.g. a
// subscription id from internal/whendispatch or a REPL session id).
func (l *Logger) WithCorrelation(id string) *Context {
	return &Context{logger: l, correlationID: id, fields: map[string]interface{}{}}
}

// Context is a Logger pre-bound to a correlation id and a field set.
type Context struct {
	logger        *Logger
	correlationID string
	fields        map[string]interface{}
	mu            sync.Mutex
}

// WithField returns a derived Context carrying an additional field.
func (c *Context) WithField(key string, value interface{}) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make(map[string]interface{}, len(c.fields)+1)
	for k, v := range c.fields {
		next[k] = v
	}
	next[key] = value
	return &Context{logger: c.logger, correlationID: c.correlationID, fields: next}
}

func (c *Context) Debug(msg string) { c.logger.log(DEBUG, msg, c.fields, c.correlationID) }
func (c *Context) Info(msg string)  { c.logger.log(INFO, msg, c.fields, c.correlationID) }
func (c *Context) Warn(msg string)  { c.logger.log(WARN, msg, c.fields, c.correlationID) }
func (c *Context) Error(msg string) { c.logger.log(ERROR, msg, c.fields, c.correlationID) }
