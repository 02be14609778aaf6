package sse

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/emojiguess-go/internal/gateway"
	"github.com/mcoot/emojiguess-go/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "playerJoined",
			data:      `{"username":"alice"}`,
			expected:  "event: playerJoined\ndata: {\"username\":\"alice\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "recieveEmojis",
			data:      "line1\nline2",
			expected:  "event: recieveEmojis\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "crlf line endings",
			input:    "line1\r\nline2\r\n",
			expected: []string{"line1", "line2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("TESTCD", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "conn_1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast(formatSSEMessage("gameStarted", "{}"), "")

	select {
	case msg := <-client.send:
		expected := "event: gameStarted\ndata: {}\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_BroadcastExcept(t *testing.T) {
	hub := NewHub("TESTCD", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	sender := NewClient(hub, "conn_sender")
	other := NewClient(hub, "conn_other")
	hub.Register(sender)
	hub.Register(other)

	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(formatSSEMessage("playerJoined", "{}"), "conn_sender")

	select {
	case <-other.send:
	case <-time.After(100 * time.Millisecond):
		t.Error("non-excluded client did not receive message")
	}

	select {
	case msg := <-sender.send:
		t.Errorf("excluded client received %q", string(msg))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("TESTCD", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "conn_1")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub1 := manager.GetOrCreateHub("ABC123")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	// Getting again should return the same hub
	hub2 := manager.GetOrCreateHub("ABC123")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same code")
	}

	hub3 := manager.GetOrCreateHub("XYZ789")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different code")
	}

	manager.CloseHub("ABC123")
	manager.CloseHub("XYZ789")
}

func TestHubManager_SendToRoom(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	hub := manager.GetOrCreateHub("ABC123")
	defer manager.CloseHub("ABC123")

	client := NewClient(hub, "conn_1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	err := manager.SendToRoom(context.Background(), "ABC123", gateway.Event{
		Name:    "gameStarted",
		Payload: map[string]string{"room_code": "ABC123"},
	})
	if err != nil {
		t.Fatalf("SendToRoom() error = %v", err)
	}

	select {
	case msg := <-client.send:
		expected := "event: gameStarted\ndata: {\"room_code\":\"ABC123\"}\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHubManager_SendToRoomWithoutHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	// A room nobody is subscribed to is not an error
	err := manager.SendToRoom(context.Background(), "NOSUCH", gateway.Event{Name: "gameStarted"})
	if err != nil {
		t.Errorf("SendToRoom() error = %v", err)
	}
}

func TestFrameDefaultsEmptyPayload(t *testing.T) {
	data := frame(gateway.Event{Name: "gameEnded"})
	expected := "event: gameEnded\ndata: {}\n\n"
	if string(data) != expected {
		t.Errorf("frame() = %q, want %q", string(data), expected)
	}
}
