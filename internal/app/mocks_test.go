package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bft-labs/extauth/internal/domain"
	"github.com/bft-labs/extauth/internal/ports"
)

// logEntry is one captured log call.
type logEntry struct {
	level  string
	msg    string
	fields []ports.Field
}

// String renders the entry with its field values for substring checks.
func (e logEntry) String() string {
	var b strings.Builder
	b.WriteString(e.level + " " + e.msg)
	for _, f := range e.fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

// mockLogger records log calls for testing.
type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) add(level, msg string, fields []ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (m *mockLogger) Debug(msg string, fields ...ports.Field) { m.add("debug", msg, fields) }
func (m *mockLogger) Info(msg string, fields ...ports.Field)  { m.add("info", msg, fields) }
func (m *mockLogger) Warn(msg string, fields ...ports.Field)  { m.add("warn", msg, fields) }
func (m *mockLogger) Error(msg string, fields ...ports.Field) { m.add("error", msg, fields) }

// contains reports whether any entry at level mentions s.
func (m *mockLogger) contains(level, s string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.level == level && strings.Contains(e.String(), s) {
			return true
		}
	}
	return false
}

// backendCall records one invocation of mockBackend.
type backendCall struct {
	op       string
	user     string
	domain   string
	password string
}

// mockBackend implements ports.Backend with canned results per operation.
type mockBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	results map[string]domain.BackendResult
	hook    func(op string)
}

func newMockBackend() *mockBackend {
	return &mockBackend{results: map[string]domain.BackendResult{}}
}

func (m *mockBackend) record(op, user, dom, password string) domain.BackendResult {
	m.mu.Lock()
	m.calls = append(m.calls, backendCall{op: op, user: user, domain: dom, password: password})
	res, hook := m.results[op], m.hook
	m.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return res
}

func (m *mockBackend) Authenticate(_ context.Context, user, dom, password string) domain.BackendResult {
	return m.record("auth", user, dom, password)
}

func (m *mockBackend) Exists(_ context.Context, user, dom string) domain.BackendResult {
	return m.record("isuser", user, dom, "")
}

func (m *mockBackend) SetPassword(_ context.Context, user, dom, password string) domain.BackendResult {
	return m.record("setpass", user, dom, password)
}

func (m *mockBackend) Calls() []backendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]backendCall{}, m.calls...)
}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}
