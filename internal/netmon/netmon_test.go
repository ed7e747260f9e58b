package netmon

import (
	"sync"
	"testing"
	"time"
)

// flakyProber answers from a scripted sequence of states.
type flakyProber struct {
	mu    sync.Mutex
	state bool
}

func (p *flakyProber) Ping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *flakyProber) set(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = online
}

func TestInitialProbe(t *testing.T) {
	m := New(&flakyProber{state: true}, time.Hour)
	if !m.Online() {
		t.Error("initial probe should report online")
	}

	m = New(&flakyProber{state: false}, time.Hour)
	if m.Online() {
		t.Error("initial probe should report offline")
	}
}

func TestTransitionsFireCallbacks(t *testing.T) {
	p := &flakyProber{state: false}
	m := New(p, time.Hour)

	var mu sync.Mutex
	var transitions []bool
	m.Subscribe(func(online bool) {
		mu.Lock()
		transitions = append(transitions, online)
		mu.Unlock()
	})

	// Same state: no callback.
	m.probe()
	// Offline -> online.
	p.set(true)
	m.probe()
	// Steady online: no callback.
	m.probe()
	// Online -> offline.
	p.set(false)
	m.probe()

	mu.Lock()
	defer mu.Unlock()
	want := []bool{true, false}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(&flakyProber{state: true}, 10*time.Millisecond)
	m.Start()
	m.Stop()
	m.Stop()
}
