package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RuyaSavascisi/Flux-Networks/internal/device"
	"github.com/RuyaSavascisi/Flux-Networks/internal/fluxnet"
	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// discardSink is safe for concurrent use, unlike the recording fakeSink.
type discardSink struct{}

func (discardSink) Send(uint16, []byte) error { return nil }
func (discardSink) Kick(string)               {}

func TestDuplicateLoginReplacesAndSeversOld(t *testing.T) {
	sessions := NewSessions()
	playerID := uuid.New()

	oldSink := &fakeSink{}
	old := sessions.Attach(playerID, "p", oldSink)

	newSink := &fakeSink{}
	replacement := sessions.Attach(playerID, "p", newSink)

	if !old.Closed() {
		t.Fatalf("superseded session still open")
	}
	if !oldSink.kicked {
		t.Fatalf("superseded connection not severed")
	}
	if got, ok := sessions.ByPlayer(playerID); !ok || got != replacement {
		t.Fatalf("player does not resolve to the replacement session")
	}
	if len(sessions.All()) != 1 {
		t.Fatalf("expected one live session, got %d", len(sessions.All()))
	}
	if err := old.Send(protocol.S2CResponse, nil); err != ErrSessionClosed {
		t.Fatalf("send on superseded session: %v", err)
	}
}

// A transport goroutine may be answering a self-target edit while the
// executor replaces the same player's session. The closed flag is the only
// state both sides touch; this must stay clean under the race detector.
func TestSendDuringReattachIsSafe(t *testing.T) {
	registry := fluxnet.NewRegistry(0)
	sessions := NewSessions()
	world := &fakeWorld{
		devices: make(map[protocol.GlobalPos]device.Device),
		players: make(map[uuid.UUID]string),
	}
	exec := NewExecutor(256)
	exec.Start()
	defer exec.Close()
	d := NewDispatcher(registry, sessions, world, exec, nil, zerolog.Nop())

	playerID := uuid.New()
	attached := make(chan *Session, 1)
	exec.Submit(func() { attached <- sessions.Attach(playerID, "p", discardSink{}) })
	sess := <-attached

	done := make(chan struct{})
	go func() {
		defer close(done)
		body := editMemberBody(1, 1, playerID, fluxnet.OpPromote)
		for i := 0; i < 200; i++ {
			d.HandleMessage(sess, protocol.C2SEditMember, body)
		}
	}()

	reattached := make(chan *Session, 1)
	exec.Submit(func() { reattached <- sessions.Attach(playerID, "p", discardSink{}) })
	<-reattached
	<-done

	if !sess.Closed() {
		t.Fatalf("superseded session still open")
	}
}
