package backend_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	"github.com/atomicstack/popup-launcher/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoSearch(req protocol.Request) []protocol.Response {
	switch r := req.(type) {
	case protocol.Search:
		return []protocol.Response{protocol.Update{Items: []protocol.SearchResult{{ID: 0, Name: r.Query}}}}
	case protocol.Complete:
		return []protocol.Response{protocol.Fill{Text: "filled"}}
	}
	return nil
}

func startDriver(t *testing.T, b *testutil.ScriptedBackend, opts ...backend.Option) (*backend.Driver, backend.Handle) {
	t.Helper()
	d := backend.NewDriver(b, opts...)
	d.Start(context.Background())
	t.Cleanup(func() {
		d.Stop()
		d.Wait()
	})
	evt := testutil.NextEvent(t, d.Events())
	require.Equal(t, backend.EventStarted, evt.Kind)
	require.NotNil(t, evt.Session)
	require.NotEmpty(t, evt.Session.ID())
	return d, evt.Session
}

func TestDriverStartedThenResponses(t *testing.T) {
	b := testutil.NewScriptedBackend(echoSearch)
	d, sess := startDriver(t, b)

	require.NoError(t, sess.Send(protocol.Search{Query: "fire", Seq: 7}))
	evt := testutil.NextEvent(t, d.Events())
	require.Equal(t, backend.EventResponse, evt.Kind)
	assert.Equal(t, uint64(7), evt.Seq)
	update, ok := evt.Response.(protocol.Update)
	require.True(t, ok)
	assert.Equal(t, "fire", update.Items[0].Name)

	require.NoError(t, sess.Send(protocol.Complete{ID: 0}))
	evt = testutil.NextEvent(t, d.Events())
	assert.Equal(t, protocol.Fill{Text: "filled"}, evt.Response)
	assert.Zero(t, evt.Seq)
}

func TestDriverPreservesRequestOrder(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	_, sess := startDriver(t, b)

	want := []protocol.Request{
		protocol.Search{Query: "a", Seq: 1},
		protocol.Search{Query: "ab", Seq: 2},
		protocol.Activate{ID: 3},
		protocol.Interrupt{},
	}
	for _, req := range want {
		require.NoError(t, sess.Send(req))
	}
	got := b.WaitForRequests(t, len(want))
	assert.Equal(t, []protocol.Request{
		protocol.Search{Query: "a"},
		protocol.Search{Query: "ab"},
		protocol.Activate{ID: 3},
		protocol.Interrupt{},
	}, got)
}

func TestDriverTagsUpdateWithNewestPendingSearch(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, sess := startDriver(t, b)

	require.NoError(t, sess.Send(protocol.Search{Query: "f", Seq: 1}))
	require.NoError(t, sess.Send(protocol.Search{Query: "fi", Seq: 2}))
	require.NoError(t, sess.Send(protocol.Search{Query: "fir", Seq: 3}))
	b.WaitForRequests(t, 3)

	require.NoError(t, b.Push(protocol.Update{Items: []protocol.SearchResult{{ID: 7, Name: "Firefox"}}}))
	evt := testutil.NextEvent(t, d.Events())
	assert.Equal(t, uint64(3), evt.Seq)

	require.NoError(t, b.Push(protocol.Update{}))
	evt = testutil.NextEvent(t, d.Events())
	assert.Zero(t, evt.Seq, "searches answered by the previous update are not reused")

	require.NoError(t, sess.Send(protocol.Search{Query: "firef", Seq: 4}))
	b.WaitForRequests(t, 4)
	require.NoError(t, b.Push(protocol.Update{}))
	evt = testutil.NextEvent(t, d.Events())
	assert.Equal(t, uint64(4), evt.Seq)
}

func TestDriverUpdateAfterActivateIsUntagged(t *testing.T) {
	b := testutil.NewScriptedBackend(echoSearch)
	d, sess := startDriver(t, b)

	require.NoError(t, sess.Send(protocol.Search{Query: "f", Seq: 1}))
	evt := testutil.NextEvent(t, d.Events())
	require.Equal(t, uint64(1), evt.Seq)

	require.NoError(t, sess.Send(protocol.Activate{ID: 0}))
	b.WaitForRequests(t, 2)
	require.NoError(t, b.Push(protocol.Update{}))
	evt = testutil.NextEvent(t, d.Events())
	assert.Zero(t, evt.Seq)
}

func TestDriverUnsolicitedUpdateHasZeroSeq(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, _ := startDriver(t, b)

	require.NoError(t, b.Push(protocol.Update{}))
	evt := testutil.NextEvent(t, d.Events())
	assert.Equal(t, backend.EventResponse, evt.Kind)
	assert.Zero(t, evt.Seq)
}

func TestDriverUnknownTagIsForwarded(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, _ := startDriver(t, b)

	require.NoError(t, b.PushRaw(`{"Mystery":1}`))
	evt := testutil.NextEvent(t, d.Events())
	assert.Equal(t, protocol.Unknown{Tag: "Mystery"}, evt.Response)
}

func TestDriverBackendExitTerminatesSession(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, sess := startDriver(t, b)

	b.Hangup()
	evt := testutil.NextEvent(t, d.Events())
	require.Equal(t, backend.EventError, evt.Kind)
	assert.ErrorIs(t, evt.Err, backend.ErrBackendExited)

	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session not marked done")
	}
	assert.ErrorIs(t, sess.Send(protocol.Search{Query: "late"}), backend.ErrSessionClosed)

	_, ok := <-d.Events()
	assert.False(t, ok, "events channel should close after termination")
	assert.Equal(t, 1, b.Connects())
}

func TestDriverMalformedLineTerminatesSession(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, _ := startDriver(t, b)

	require.NoError(t, b.PushRaw(`{"Update":`))
	evt := testutil.NextEvent(t, d.Events())
	require.Equal(t, backend.EventError, evt.Kind)
	assert.Error(t, evt.Err)
}

func TestDriverConnectFailure(t *testing.T) {
	boom := errors.New("no backend")
	d := backend.NewDriver(testutil.FailingBackend(boom))
	d.Start(context.Background())
	defer d.Stop()

	evt := testutil.NextEvent(t, d.Events())
	require.Equal(t, backend.EventError, evt.Kind)
	assert.ErrorIs(t, evt.Err, boom)
	_, ok := <-d.Events()
	assert.False(t, ok)
}

func TestDriverStartIsIdempotent(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, _ := startDriver(t, b)
	d.Start(context.Background())
	d.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, b.Connects())
}

func TestDriverStopSendsExit(t *testing.T) {
	b := testutil.NewScriptedBackend(nil)
	d, sess := startDriver(t, b)

	require.NoError(t, sess.Send(protocol.Search{Query: "x", Seq: 1}))
	b.WaitForRequests(t, 1)
	d.Stop()
	d.Wait()

	reqs := b.WaitForRequests(t, 2)
	assert.Equal(t, protocol.Exit{}, reqs[len(reqs)-1])
	assert.ErrorIs(t, sess.Send(protocol.Interrupt{}), backend.ErrSessionClosed)
}
