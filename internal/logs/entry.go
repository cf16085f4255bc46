package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is one decoded log line.
type Entry struct {
	Time    string
	Level   string
	Message string
	Fields  map[string]any
}

// ParseEntry decodes a JSON log line. Lines that are not JSON objects are
// returned as a bare message.
func ParseEntry(line string) Entry {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{Message: line}
	}
	entry := Entry{Fields: make(map[string]any, len(raw))}
	for key, value := range raw {
		switch key {
		case "ts":
			entry.Time, _ = value.(string)
		case "level":
			entry.Level, _ = value.(string)
		case "msg":
			entry.Message, _ = value.(string)
		default:
			entry.Fields[key] = value
		}
	}
	return entry
}

// Field returns the string form of a field, or "" when absent.
func (e Entry) Field(key string) string {
	value, ok := e.Fields[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Format renders the entry on one line: time, level, message, then the
// remaining fields sorted by key.
func (e Entry) Format() string {
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(e.Time)
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := e.Field(key)
		if strings.ContainsAny(value, " \t\"=") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %s=%s", key, value)
	}
	return b.String()
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	RunID    string
	Artifact string
	MinLevel string
}

func (f Filter) empty() bool {
	return f.RunID == "" && f.Artifact == "" && f.MinLevel == ""
}

// Match reports whether entry passes every set criterion. Artifact matches
// as a substring of the artifact field.
func (f Filter) Match(entry Entry) bool {
	if f.RunID != "" && entry.Field("run_id") != f.RunID {
		return false
	}
	if f.Artifact != "" && !strings.Contains(entry.Field("artifact"), f.Artifact) {
		return false
	}
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToLower(f.MinLevel)]
		if ok && levelRank[strings.ToLower(entry.Level)] < want {
			return false
		}
	}
	return true
}

// MatchLine decodes line and applies Match.
func (f Filter) MatchLine(line string) bool {
	if f.empty() {
		return true
	}
	return f.Match(ParseEntry(line))
}
