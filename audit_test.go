package goSaaS

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/goSaaS/memstore"
	"github.com/MrEthical07/goSaaS/session"
)

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditEngine(t *testing.T, sink AuditSink, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	if mutate != nil {
		mutate(&cfg)
	}
	engine, err := New().WithConfig(cfg).WithStore(memstore.New()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return engine
}

// awaitEvent drains events until one of the given type arrives.
func awaitEvent(t *testing.T, events <-chan AuditEvent, eventType string) AuditEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event", eventType)
		}
	}
}

func TestAuditEventsForAuthFlows(t *testing.T) {
	sink := NewChannelSink(64)
	engine := buildAuditEngine(t, sink, nil)
	defer engine.Close()

	b := newBrowser()
	b.mustSubmit(t, engine.SignUp, "email", "owner@example.test", "password", "password123")
	ev := awaitEvent(t, sink.Events(), "sign_up_success")
	if !ev.Success || ev.UserID == 0 || ev.TeamID == 0 || ev.IP != testIP {
		t.Fatalf("sign-up event = %+v", ev)
	}

	newBrowser().mustSubmit(t, engine.SignIn, "email", "owner@example.test", "password", "wrong-password")
	ev = awaitEvent(t, sink.Events(), "sign_in_failure")
	if ev.Success || ev.Error != "invalid_credentials" {
		t.Fatalf("sign-in failure event = %+v", ev)
	}

	forged := newBrowser()
	forged.cookies[session.DefaultCookieName] = &http.Cookie{Name: session.DefaultCookieName, Value: "not.a.token"}
	forged.do(func(ctx context.Context) { _, _ = engine.CurrentUser(ctx) })
	ev = awaitEvent(t, sink.Events(), "session_tampered")
	if ev.Error != "invalid_token" {
		t.Fatalf("tampered event = %+v", ev)
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	sink := NewChannelSink(8)
	engine := buildAuditEngine(t, sink, func(c *Config) { c.Audit.Enabled = false })
	defer engine.Close()

	newBrowser().mustSubmit(t, engine.SignUp, "email", "owner@example.test", "password", "password123")
	select {
	case ev := <-sink.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAuditDropsWhenBufferFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	engine := buildAuditEngine(t, sink, func(c *Config) {
		c.Audit.BufferSize = 1
		c.Audit.DropIfFull = true
	})

	for i := 0; i < 5; i++ {
		newBrowser().mustSubmit(t, engine.SignIn, "email", "nobody@example.test", "password", "wrong-password")
	}
	if engine.AuditDropped() == 0 {
		t.Fatal("expected dropped audit events with a blocked sink")
	}
	close(sink.gate)
	engine.Close()
}
