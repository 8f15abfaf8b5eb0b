package orch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core/coretest"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrch() *Orchestrator {
	return New(app.NewRegistry())
}

// captureLog redirects the global logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func findLogLine(t *testing.T, buf *bytes.Buffer, msg string) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == msg {
			return entry
		}
	}
	t.Fatalf("no log line %q in:\n%s", msg, buf.String())
	return nil
}

func TestConnect_RegistersSilently(t *testing.T) {
	o := newOrch()
	existing := coretest.NewConn()
	o.Connect(existing)

	fresh := coretest.NewConn()
	id := o.Connect(fresh)

	assert.Equal(t, domain.StateOpen, fresh.State())
	got, ok := o.Registry.Lookup(id)
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Empty(t, existing.Sent(), "join must not be announced")
	assert.Empty(t, fresh.Sent(), "no initial message on connect")
}

func TestHandleMessage_EchoAndBroadcast(t *testing.T) {
	o := newOrch()
	a, b, c := coretest.NewConn(), coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	o.Connect(b)
	o.Connect(c)

	o.HandleMessage(idA, "hello")

	assert.Equal(t, []string{fmt.Sprintf("You said: hello (Your ID: %s)", idA)}, a.Sent())
	want := []string{fmt.Sprintf("%s says: hello", idA)}
	assert.Equal(t, want, b.Sent())
	assert.Equal(t, want, c.Sent())
}

func TestHandleMessage_EchoFailureStillBroadcasts(t *testing.T) {
	o := newOrch()
	a, b := coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	o.Connect(b)
	a.FailSends()

	o.HandleMessage(idA, "still here")

	assert.Equal(t, []string{fmt.Sprintf("%s says: still here", idA)}, b.Sent())
}

func TestHandleMessage_UnknownSenderIsDropped(t *testing.T) {
	o := newOrch()
	b := coretest.NewConn()
	o.Connect(b)

	o.HandleMessage("ghost", "boo")

	assert.Empty(t, b.Sent())
}

func TestDisconnect_OpenConnectionGetsCloseFrame(t *testing.T) {
	o := newOrch()
	a, b := coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	o.Connect(b)

	o.Disconnect(idA)

	require.Equal(t, []coretest.CloseFrame{{Code: 1000, Reason: "Normal closure"}}, a.CloseFrames())
	assert.Empty(t, a.Sent(), "departing connection must not receive its own notice")
	assert.Equal(t, []string{fmt.Sprintf("%s connection dropped", idA)}, b.Sent())
	_, ok := o.Registry.Lookup(idA)
	assert.False(t, ok)
	assert.Equal(t, 1, o.Registry.Len())
}

func TestDisconnect_PeerInitiatedCloseSkipsCloseFrame(t *testing.T) {
	o := newOrch()
	a, b := coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	o.Connect(b)
	a.SetState(domain.StateClosing)

	o.Disconnect(idA)

	assert.Empty(t, a.CloseFrames())
	assert.Equal(t, []string{fmt.Sprintf("%s connection dropped", idA)}, b.Sent())
	assert.Equal(t, 1, o.Registry.Len())
}

func TestDisconnect_IsIdempotent(t *testing.T) {
	o := newOrch()
	a, b := coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	o.Connect(b)

	o.Disconnect(idA)
	o.Disconnect(idA)
	o.Disconnect("never-seen")

	assert.Len(t, a.CloseFrames(), 1)
	assert.Len(t, b.Sent(), 1)
	assert.Equal(t, 1, o.Registry.Len())
}

func TestDisconnect_NoFurtherMessagesReferenceDeparted(t *testing.T) {
	o := newOrch()
	a, b := coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	idB := o.Connect(b)

	o.Disconnect(idA)
	o.HandleMessage(idA, "late")
	o.HandleMessage(idB, "anyone?")

	assert.Equal(t, []string{
		fmt.Sprintf("%s connection dropped", idA),
		fmt.Sprintf("You said: anyone? (Your ID: %s)", idB),
	}, b.Sent())
}

func TestHandleMessage_UndeliveredBroadcastIsLogged(t *testing.T) {
	buf := captureLog(t)
	o := newOrch()
	a, b, c := coretest.NewConn(), coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	idB := o.Connect(b)
	o.Connect(c)
	b.FailSends()

	o.HandleMessage(idA, "hi")

	entry := findLogLine(t, buf, "broadcast partly failed")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, string(idA), entry["conn_id"])
	assert.EqualValues(t, 1, entry["sent_to"])
	assert.Equal(t, []any{string(idB)}, entry["undelivered"])
	assert.Len(t, c.Sent(), 1)
}

func TestDisconnect_UndeliveredNoticeIsLogged(t *testing.T) {
	buf := captureLog(t)
	o := newOrch()
	a, b := coretest.NewConn(), coretest.NewConn()
	idA := o.Connect(a)
	idB := o.Connect(b)
	b.FailSends()

	o.Disconnect(idA)

	entry := findLogLine(t, buf, "broadcast partly failed")
	assert.Equal(t, []any{string(idB)}, entry["undelivered"])
	assert.Equal(t, 1, o.Registry.Len())
}
