package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ipa/internal/gateway"
	"github.com/luxfi/ipa/internal/step"
	"github.com/luxfi/ipa/pkg/party"
)

func TestSendReceive_DeliversPayload(t *testing.T) {
	gwA := gateway.New(party.H0, nil)
	gwB := gateway.New(party.H1, nil)
	gwA.SetPeers(map[party.Role]gateway.Link{party.H1: gwB})
	gwB.SetPeers(map[party.Role]gateway.Link{party.H0: gwA})

	path := step.Root("q")
	record := party.RecordIdFromInt(0)

	require.NoError(t, gwA.Send(party.H1, path, record, []byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := gwB.Receive(ctx, party.H0, path, record)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestReceive_BeforeSendStillDelivers(t *testing.T) {
	gwA := gateway.New(party.H0, nil)
	gwB := gateway.New(party.H1, nil)
	gwA.SetPeers(map[party.Role]gateway.Link{party.H1: gwB})
	gwB.SetPeers(map[party.Role]gateway.Link{party.H0: gwA})

	path := step.Root("q")
	record := party.RecordIdFromInt(1)

	done := make(chan []byte, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		got, err := gwB.Receive(ctx, party.H0, path, record)
		require.NoError(t, err)
		done <- got
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, gwA.Send(party.H1, path, record, []byte("world")))

	select {
	case got := <-done:
		assert.Equal(t, []byte("world"), got)
	case <-time.After(time.Second):
		t.Fatal("receive never completed")
	}
}

func TestReceive_CancelledContext(t *testing.T) {
	gw := gateway.New(party.H0, nil)
	path := step.Root("q")
	record := party.RecordIdFromInt(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gw.Receive(ctx, party.H1, path, record)
	require.Error(t, err)
}

func TestSend_NoLinkConfigured(t *testing.T) {
	gw := gateway.New(party.H0, nil)
	path := step.Root("q")
	err := gw.Send(party.H1, path, party.RecordIdFromInt(0), []byte("x"))
	require.Error(t, err)
}

func TestSelf(t *testing.T) {
	gw := gateway.New(party.H2, nil)
	assert.Equal(t, party.H2, gw.Self())
}

func TestDistinctRecordsDoNotCollide(t *testing.T) {
	gwA := gateway.New(party.H0, nil)
	gwB := gateway.New(party.H1, nil)
	gwA.SetPeers(map[party.Role]gateway.Link{party.H1: gwB})
	gwB.SetPeers(map[party.Role]gateway.Link{party.H0: gwA})

	path := step.Root("q")
	require.NoError(t, gwA.Send(party.H1, path, party.RecordIdFromInt(0), []byte("a")))
	require.NoError(t, gwA.Send(party.H1, path, party.RecordIdFromInt(1), []byte("b")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got1, err := gwB.Receive(ctx, party.H0, path, party.RecordIdFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got1)

	got0, err := gwB.Receive(ctx, party.H0, path, party.RecordIdFromInt(0))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got0)
}
