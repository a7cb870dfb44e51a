package stream_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/web/api"
	"github.com/screwyprof/faucet/web/stream"
)

func TestHubBroadcast(t *testing.T) {
	t.Parallel()

	t.Run("it delivers audit entries to a connected client", func(t *testing.T) {
		t.Parallel()

		// Arrange
		hub := stream.NewHub()
		entries := make(chan audit.Entry)
		done := hub.Run(t.Context(), entries)

		server := httptest.NewServer(hub)
		defer server.Close()

		conn := dial(t, server.URL)
		defer conn.Close()
		waitForClients(t, hub, 1)

		account := ethaddr.MustParse("0x00000000000000000000000000000000000000a1")
		entry := audit.Entry{
			Sequence:   7,
			ID:         uuid.New(),
			Kind:       audit.KindTokensClaimed,
			OccurredAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			Event: audit.TokensClaimed{
				Account: account,
				Amount:  uint256.NewInt(100),
			},
		}

		// Act
		entries <- entry

		// Assert
		var ev api.Event
		require.NoError(t, readJSON(t, conn, &ev))
		assert.Equal(t, "7", ev.Sequence)
		assert.Equal(t, audit.KindTokensClaimed, ev.Kind)
		assert.Equal(t, account.String(), ev.Account)
		assert.Equal(t, "100", ev.Amount)
		assert.Equal(t, "2024-01-01T12:00:00Z", ev.OccurredAt)

		close(entries)
		<-done
	})

	t.Run("it delivers the same entry to every client", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		entries := make(chan audit.Entry)
		done := hub.Run(t.Context(), entries)

		server := httptest.NewServer(hub)
		defer server.Close()

		first := dial(t, server.URL)
		defer first.Close()
		second := dial(t, server.URL)
		defer second.Close()
		waitForClients(t, hub, 2)

		entries <- audit.Entry{
			Sequence:   1,
			ID:         uuid.New(),
			Kind:       audit.KindPauseChanged,
			OccurredAt: time.Unix(100, 0).UTC(),
			Event:      audit.PauseChanged{Paused: true},
		}

		for _, conn := range []*websocket.Conn{first, second} {
			var ev api.Event
			require.NoError(t, readJSON(t, conn, &ev))
			assert.Equal(t, audit.KindPauseChanged, ev.Kind)
			require.NotNil(t, ev.Paused)
			assert.True(t, *ev.Paused)
		}

		close(entries)
		<-done
	})

	t.Run("it disconnects clients when the stream closes", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		entries := make(chan audit.Entry)
		done := hub.Run(t.Context(), entries)

		server := httptest.NewServer(hub)
		defer server.Close()

		conn := dial(t, server.URL)
		defer conn.Close()

		// Act
		close(entries)
		<-done

		// Assert - the client read fails once the hub closed the connection
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := conn.ReadMessage()
		assert.Error(t, err)
	})
}

// Test setup helpers

func waitForClients(t *testing.T, hub *stream.Hub, want int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == want
	}, 2*time.Second, 10*time.Millisecond, "expected %d connected clients", want)
}

func dial(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) error {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		return err
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return err
	}

	return json.Unmarshal(payload, v)
}
