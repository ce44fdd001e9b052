package log

import "sync"

// WithFields returns a Logger that adds fields to every entry written through l.
// Fields passed at the call site win over the bound ones.
func WithFields(l Logger, fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	bound := make(map[string]any, len(fields))
	for k, v := range fields {
		bound[k] = v
	}
	return &fieldLogger{next: l, bound: bound}
}

type fieldLogger struct {
	next  Logger
	bound map[string]any
}

func (f *fieldLogger) merge(fields map[string]any) map[string]any {
	out := make(map[string]any, len(f.bound)+len(fields))
	for k, v := range f.bound {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (f *fieldLogger) Info(fields map[string]any, msg string)  { f.next.Info(f.merge(fields), msg) }
func (f *fieldLogger) Error(fields map[string]any, msg string) { f.next.Error(f.merge(fields), msg) }
func (f *fieldLogger) Debug(fields map[string]any, msg string) { f.next.Debug(f.merge(fields), msg) }
func (f *fieldLogger) Warn(fields map[string]any, msg string)  { f.next.Warn(f.merge(fields), msg) }
func (f *fieldLogger) Panic(fields map[string]any, msg string) { f.next.Panic(f.merge(fields), msg) }
func (f *fieldLogger) Fatal(fields map[string]any, msg string) { f.next.Fatal(f.merge(fields), msg) }

// Entry is one message captured by a Recorder.
type Entry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// Recorder is a Logger that keeps every entry in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level string, fields map[string]any, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: fields})
}

func (r *Recorder) Info(fields map[string]any, msg string)  { r.add("info", fields, msg) }
func (r *Recorder) Error(fields map[string]any, msg string) { r.add("error", fields, msg) }
func (r *Recorder) Debug(fields map[string]any, msg string) { r.add("debug", fields, msg) }
func (r *Recorder) Warn(fields map[string]any, msg string)  { r.add("warn", fields, msg) }
func (r *Recorder) Panic(fields map[string]any, msg string) { r.add("panic", fields, msg) }
func (r *Recorder) Fatal(fields map[string]any, msg string) { r.add("fatal", fields, msg) }

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the recorded entries at level, message text only.
func (r *Recorder) Messages(level string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}
