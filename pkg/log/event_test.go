package log

import "testing"

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.dir.String()
		if got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestLayerString(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerTransport, "TRANSPORT"},
		{LayerFrame, "FRAME"},
		{LayerRPC, "RPC"},
		{Layer(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.layer.String()
		if got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.layer, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryMessage, "MESSAGE"},
		{CategoryState, "STATE"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestRoleString(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleDevice, "DEVICE"},
		{RoleClient, "CLIENT"},
		{Role(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.role.String()
		if got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestEventCBORRoundTrip(t *testing.T) {
	event := Event{
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Layer:        LayerFrame,
		Category:     CategoryMessage,
		LocalRole:    RoleClient,
		RemoteAddr:   "192.0.2.1:7777",
		Frame: &FrameEvent{
			SeqID:      "3",
			Identifier: "gpio/led/set",
			ArgCount:   1,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.ConnectionID != event.ConnectionID {
		t.Errorf("ConnectionID: got %q, want %q", decoded.ConnectionID, event.ConnectionID)
	}
	if decoded.Direction != event.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, event.Direction)
	}
	if decoded.Frame == nil {
		t.Fatal("Frame is nil after round trip")
	}
	if decoded.Frame.Identifier != "gpio/led/set" {
		t.Errorf("Identifier: got %q", decoded.Frame.Identifier)
	}
	if decoded.Line != nil || decoded.StateChange != nil || decoded.Error != nil {
		t.Error("unset payloads became non-nil after round trip")
	}
}
