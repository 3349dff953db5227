package rpc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prpc-protocol/prpc-go/pkg/frame"
)

// senderFunc adapts a function to the LineSender interface.
type senderFunc func(line string) error

func (f senderFunc) SendLine(line string) error { return f(line) }

// echoDevice answers every request with the given response builder,
// feeding the response back through HandleFrame asynchronously.
func echoDevice(t *testing.T, c **Client, respond func(req *frame.Frame) *frame.Frame) LineSender {
	t.Helper()
	return senderFunc(func(line string) error {
		req, err := frame.Parse(line)
		if err != nil {
			t.Errorf("client sent unparseable line %q: %v", line, err)
			return nil
		}
		if resp := respond(req); resp != nil {
			go (*c).HandleFrame(resp)
		}
		return nil
	})
}

func TestClientCallOK(t *testing.T) {
	var client *Client
	sender := echoDevice(t, &client, func(req *frame.Frame) *frame.Frame {
		resp, _ := frame.New(req.SeqID(), frame.IdentifierOK)
		return resp
	})
	client = NewClient(sender)

	resp, err := client.Call(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, frame.IdentifierOK, resp.Identifier())
}

func TestClientCallResult(t *testing.T) {
	var client *Client
	sender := echoDevice(t, &client, func(req *frame.Frame) *frame.Frame {
		resp, _ := frame.New(req.SeqID(), frame.IdentifierResult, frame.Int(42))
		return resp
	})
	client = NewClient(sender)

	resp, err := client.Call(context.Background(), "answer")
	require.NoError(t, err)
	assert.Equal(t, frame.IdentifierResult, resp.Identifier())

	v, ok := resp.Arg(0)
	require.True(t, ok)
	n, ok := v.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)
}

func TestClientCallErrorResponse(t *testing.T) {
	var client *Client
	sender := echoDevice(t, &client, func(req *frame.Frame) *frame.Frame {
		resp, _ := frame.New(req.SeqID(), frame.IdentifierError, frame.Str("pin busy"))
		return resp
	})
	client = NewClient(sender)

	_, err := client.Call(context.Background(), "gpio/led/set", frame.Bool(true))
	require.Error(t, err)

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "remote error: pin busy", respErr.Error())
}

func TestClientCallTimeout(t *testing.T) {
	// Device never answers
	client := NewClient(senderFunc(func(line string) error { return nil }))
	client.SetTimeout(20 * time.Millisecond)

	_, err := client.Call(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrRequestTimeout)
}

func TestClientCallContextCancelled(t *testing.T) {
	client := NewClient(senderFunc(func(line string) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Call(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientCallInvalidIdentifier(t *testing.T) {
	client := NewClient(senderFunc(func(line string) error { return nil }))

	_, err := client.Call(context.Background(), "no spaces")
	var valErr *frame.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestClientCallSendFailure(t *testing.T) {
	sendErr := errors.New("broken pipe")
	client := NewClient(senderFunc(func(line string) error { return sendErr }))

	_, err := client.Call(context.Background(), "hello")
	assert.ErrorIs(t, err, sendErr)
}

func TestClientWindowExhausted(t *testing.T) {
	// One slot, one request stuck in flight
	client := NewClientWithWindow(senderFunc(func(line string) error { return nil }), 1)
	client.SetTimeout(200 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		client.Call(context.Background(), "slow")
	}()

	// Wait until the first call holds the only id
	require.Eventually(t, func() bool {
		client.pendingMu.Lock()
		defer client.pendingMu.Unlock()
		return len(client.free) == 0
	}, time.Second, 5*time.Millisecond)

	_, err := client.Call(context.Background(), "second")
	assert.ErrorIs(t, err, ErrWindowExhausted)

	<-done
}

func TestClientTimedOutSlotNotReused(t *testing.T) {
	// With a window of one, the only id must stay occupied after the
	// caller times out: until the late response actually arrives, a
	// new call cannot reuse it.
	client := NewClientWithWindow(senderFunc(func(line string) error { return nil }), 1)
	client.SetTimeout(20 * time.Millisecond)

	_, err := client.Call(context.Background(), "slow")
	require.ErrorIs(t, err, ErrRequestTimeout)

	_, err = client.Call(context.Background(), "next")
	assert.ErrorIs(t, err, ErrWindowExhausted)
}

func TestClientLateResponseDiscarded(t *testing.T) {
	var client *Client
	respond := false
	sender := senderFunc(func(line string) error {
		if !respond {
			// First request goes unanswered.
			return nil
		}
		req, err := frame.Parse(line)
		require.NoError(t, err)
		resp, _ := frame.New(req.SeqID(), frame.IdentifierResult, frame.Str("fresh"))
		go client.HandleFrame(resp)
		return nil
	})
	client = NewClientWithWindow(sender, 1)
	client.SetTimeout(20 * time.Millisecond)

	_, err := client.Call(context.Background(), "slow")
	require.ErrorIs(t, err, ErrRequestTimeout)

	// The late response to the timed-out request is discarded and
	// only now frees the id.
	late, _ := frame.New(frame.Seq(0), frame.IdentifierResult, frame.Str("stale"))
	require.NoError(t, client.HandleFrame(late))

	// The next call reuses id 0 and must see its own answer, not the
	// stale one.
	respond = true
	resp, err := client.Call(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), resp.SeqID().Value())

	v, ok := resp.Arg(0)
	require.True(t, ok)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "fresh", s)
}

func TestClientCloseRacesResponseDelivery(t *testing.T) {
	// Close and an inbound response racing on the same slot must
	// never panic the reader goroutine.
	resp, err := frame.New(frame.Seq(0), frame.IdentifierResult, frame.Int(1))
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		client := NewClientWithWindow(senderFunc(func(line string) error { return nil }), 1)
		_, _, err := client.acquire()
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			client.HandleFrame(resp)
		}()
		go func() {
			defer wg.Done()
			client.Close()
		}()
		wg.Wait()
	}
}

func TestClientSeqIDReuse(t *testing.T) {
	var client *Client
	sender := echoDevice(t, &client, func(req *frame.Frame) *frame.Frame {
		resp, _ := frame.New(req.SeqID(), frame.IdentifierOK)
		return resp
	})
	client = NewClientWithWindow(sender, 2)

	// With a window of 2, sequential calls must keep reusing ids
	// below the window bound.
	for i := 0; i < 10; i++ {
		resp, err := client.Call(context.Background(), "ping")
		require.NoError(t, err)
		require.False(t, resp.SeqID().IsWildcard())
		require.Less(t, resp.SeqID().Value(), uint32(2))
	}
}

func TestClientConcurrentCalls(t *testing.T) {
	var client *Client
	sender := echoDevice(t, &client, func(req *frame.Frame) *frame.Frame {
		v, _ := req.Arg(0)
		resp, _ := frame.New(req.SeqID(), frame.IdentifierResult, v)
		return resp
	})
	client = NewClient(sender)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			resp, err := client.Call(context.Background(), "echo", frame.Int(n))
			if err != nil {
				t.Errorf("call %d failed: %v", n, err)
				return
			}
			v, _ := resp.Arg(0)
			got, _ := v.AsInt()
			if got != n {
				t.Errorf("call %d got mismatched response %d", n, got)
			}
		}(int64(i))
	}
	wg.Wait()
}

func TestClientNotifySendsWildcard(t *testing.T) {
	var sent string
	client := NewClient(senderFunc(func(line string) error {
		sent = line
		return nil
	}))

	require.NoError(t, client.Notify("status", frame.Str("ready")))
	assert.Equal(t, "*:status \"ready\"\n", sent)
}

func TestClientHandleFrameUnexpectedReply(t *testing.T) {
	client := NewClient(senderFunc(func(line string) error { return nil }))

	resp, _ := frame.New(frame.Seq(99), frame.IdentifierOK)
	err := client.HandleFrame(resp)
	assert.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestClientNotificationHandler(t *testing.T) {
	client := NewClient(senderFunc(func(line string) error { return nil }))

	received := make(chan *frame.Frame, 1)
	client.SetNotificationHandler(func(f *frame.Frame) {
		received <- f
	})

	notif, _ := frame.NewNotification("event", frame.Int(1))
	require.NoError(t, client.HandleFrame(notif))

	select {
	case f := <-received:
		assert.Equal(t, "event", f.Identifier())
	case <-time.After(time.Second):
		t.Fatal("notification handler not called")
	}
}

func TestClientCloseCancelsPending(t *testing.T) {
	client := NewClient(senderFunc(func(line string) error { return nil }))

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), "hello")
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		client.pendingMu.Lock()
		defer client.pendingMu.Unlock()
		return len(client.pending) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, client.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClientClosed)
	case <-time.After(time.Second):
		t.Fatal("pending call not cancelled")
	}

	_, err := client.Call(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrClientClosed)
}
