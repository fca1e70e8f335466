package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	consoleTimestampLayout = "2006-01-02 15:04:05"
	infoFieldLimit         = 6
)

// infoHighlightKeys are promoted ahead of other attributes in INFO output.
var infoHighlightKeys = []string{
	FieldEventType,
	FieldErrorHint,
	FieldImpact,
	"error",
	FieldMovieID,
	"title",
	"year",
	"key_person",
	"status",
	"attempt",
	"delay",
	"duration",
}

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var hdr header
	hdr.level = record.Level
	hdr.ts = timestamp
	filtered := make([]kv, 0, len(kvs))
	for _, entry := range kvs {
		switch entry.key {
		case FieldComponent:
			if hdr.component == "" {
				hdr.component = attrString(entry.value)
			}
			continue
		case FieldGenerationID:
			if hdr.generation == "" {
				hdr.generation = attrString(entry.value)
			}
		case FieldStep:
			if hdr.step == "" {
				hdr.step = attrString(entry.value)
			}
		}
		filtered = append(filtered, entry)
	}
	filtered = dedupeKVsByKey(filtered)

	hdr.message = strings.TrimSpace(record.Message)
	if hdr.message == "" {
		hdr.message = "(no message)"
	}
	if h.addSource {
		hdr.source = record.Source()
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(filtered)*32)
	hdr.write(&buf)
	if record.Level < slog.LevelInfo {
		writeDebugFields(&buf, filtered)
	} else {
		writeInfoFields(&buf, filtered)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

type header struct {
	ts         time.Time
	level      slog.Level
	component  string
	generation string
	step       string
	message    string
	source     *slog.Source
}

func (hdr header) write(buf *bytes.Buffer) {
	buf.WriteString(hdr.ts.Local().Format(consoleTimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(hdr.level))
	if hdr.component != "" {
		buf.WriteString(" [")
		buf.WriteString(hdr.component)
		buf.WriteByte(']')
	}
	if subject := composeSubject(hdr.generation, hdr.step); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(hdr.message)
	if hdr.source != nil && hdr.source.File != "" {
		buf.WriteString(" [")
		buf.WriteString(filepath.Base(hdr.source.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(hdr.source.Line))
		buf.WriteByte(']')
	}
	buf.WriteByte('\n')
}

// composeSubject renders "Gen 1a2b3c4d · Step 3" style prefixes.
func composeSubject(generation, step string) string {
	generation = strings.TrimSpace(generation)
	step = strings.TrimSpace(step)
	parts := make([]string, 0, 2)
	if generation != "" {
		if len(generation) > 8 {
			generation = generation[:8]
		}
		parts = append(parts, "Gen "+generation)
	}
	if step != "" {
		parts = append(parts, "Step "+step)
	}
	return strings.Join(parts, " · ")
}

func writeInfoFields(buf *bytes.Buffer, attrs []kv) {
	selected, hidden := selectInfoFields(attrs)
	for _, entry := range selected {
		buf.WriteString("    - ")
		buf.WriteString(entry.key)
		buf.WriteString(": ")
		buf.WriteString(attrString(entry.value))
		buf.WriteByte('\n')
	}
	if hidden > 0 {
		buf.WriteString("    + ")
		buf.WriteString(strconv.Itoa(hidden))
		buf.WriteString(" more field")
		if hidden != 1 {
			buf.WriteByte('s')
		}
		buf.WriteString(" hidden\n")
	}
}

func writeDebugFields(buf *bytes.Buffer, attrs []kv) {
	for _, entry := range attrs {
		buf.WriteString("    ")
		buf.WriteString(entry.key)
		buf.WriteString(": ")
		buf.WriteString(formatValue(entry.value))
		buf.WriteByte('\n')
	}
}

// selectInfoFields orders highlighted keys first and caps the result.
func selectInfoFields(attrs []kv) ([]kv, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	selected := make([]kv, 0, infoFieldLimit)
	used := make(map[string]struct{}, len(attrs))
	for _, key := range infoHighlightKeys {
		for _, entry := range attrs {
			if entry.key == key {
				selected = append(selected, entry)
				used[key] = struct{}{}
				break
			}
		}
	}
	for _, entry := range attrs {
		if _, ok := used[entry.key]; ok {
			continue
		}
		if entry.key == FieldGenerationID || entry.key == FieldStep || entry.key == FieldCorrelationID || entry.key == FieldSessionID {
			continue
		}
		selected = append(selected, entry)
	}
	if len(selected) <= infoFieldLimit {
		return selected, 0
	}
	return selected[:infoFieldLimit], len(selected) - infoFieldLimit
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	return &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
		attrs:     append([]slog.Attr(nil), h.attrs...),
		groups:    append([]string(nil), h.groups...),
	}
}

type kv struct {
	key   string
	value slog.Value
}

// dedupeKVsByKey keeps the first position of each key with its last value.
func dedupeKVsByKey(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	positions := make(map[string]int, len(attrs))
	deduped := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, ok := positions[attr.key]; ok {
			deduped[pos].value = attr.value
			continue
		}
		positions[attr.key] = len(deduped)
		deduped = append(deduped, attr)
	}
	return deduped
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
