package services

import (
	"fmt"
	"sync"
	"testing"
)

func TestEventLogAppend(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"bucket string", `{"bucket":"x"}`, true},
		{"bucket with extra fields", `{"bucket":"b","name":"obj.txt","size":12}`, true},
		{"bucket null", `{"bucket":null}`, false},
		{"bucket empty string", `{"bucket":""}`, true},
		{"empty object", `{}`, false},
		{"other fields", `{"name":"obj.txt"}`, false},
		{"array", `[{"bucket":"x"}]`, false},
		{"malformed", `{"bucket":`, false},
		{"empty body", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewEventLog()
			if got := l.Append([]byte(tt.body)); got != tt.want {
				t.Errorf("Append(%s) = %v, want %v", tt.body, got, tt.want)
			}
			wantLen := 0
			if tt.want {
				wantLen = 1
			}
			if l.Len() != wantLen {
				t.Errorf("Len() = %d, want %d", l.Len(), wantLen)
			}
		})
	}
}

func TestEventLogOrder(t *testing.T) {
	l := NewEventLog()
	for i := 0; i < 5; i++ {
		l.Append([]byte(fmt.Sprintf(`{"bucket":"b%d"}`, i)))
	}

	events := l.List()
	if len(events) != 5 {
		t.Fatalf("List() returned %d events, want 5", len(events))
	}
	for i, ev := range events {
		want := fmt.Sprintf(`{"bucket":"b%d"}`, i)
		if string(ev) != want {
			t.Errorf("event %d = %s, want %s", i, ev, want)
		}
	}
}

func TestEventLogListIsSnapshot(t *testing.T) {
	l := NewEventLog()
	l.Append([]byte(`{"bucket":"a"}`))

	snapshot := l.List()
	l.Append([]byte(`{"bucket":"b"}`))

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew to %d events after a later Append", len(snapshot))
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestEventLogKeepsCallerBufferIndependent(t *testing.T) {
	l := NewEventLog()
	body := []byte(`{"bucket":"a"}`)
	l.Append(body)
	body[11] = 'z'

	if got := string(l.List()[0]); got != `{"bucket":"a"}` {
		t.Errorf("stored event changed with caller buffer: %s", got)
	}
}

func TestEventLogConcurrentAppend(t *testing.T) {
	l := NewEventLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append([]byte(fmt.Sprintf(`{"bucket":"b%d"}`, i)))
		}(i)
	}
	wg.Wait()

	if l.Len() != 50 {
		t.Errorf("Len() = %d, want 50", l.Len())
	}
}

func TestNewEventLogListIsEmptyNotNil(t *testing.T) {
	if events := NewEventLog().List(); events == nil || len(events) != 0 {
		t.Errorf("List() on empty log = %#v, want empty slice", events)
	}
}
