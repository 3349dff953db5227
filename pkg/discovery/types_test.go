package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeTXT(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string
	}{
		{
			name: "name and serial",
			info: Info{InstanceName: "bench-psu", DeviceName: "Bench PSU", Serial: "A-1234"},
			want: []string{"name=Bench PSU", "sn=A-1234"},
		},
		{
			name: "display name defaults to instance name",
			info: Info{InstanceName: "bench-psu"},
			want: []string{"name=bench-psu"},
		},
		{
			name: "serial omitted when empty",
			info: Info{InstanceName: "relay", DeviceName: "Relay Board"},
			want: []string{"name=Relay Board"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeTXT(&tt.info))
		})
	}
}

func TestDecodeTXT(t *testing.T) {
	tests := []struct {
		name string
		txt  []string
		want map[string]string
	}{
		{
			name: "simple records",
			txt:  []string{"name=Bench PSU", "sn=A-1234"},
			want: map[string]string{"name": "Bench PSU", "sn": "A-1234"},
		},
		{
			name: "value containing equals",
			txt:  []string{"name=a=b"},
			want: map[string]string{"name": "a=b"},
		},
		{
			name: "records without equals ignored",
			txt:  []string{"flag", "name=x"},
			want: map[string]string{"name": "x"},
		},
		{
			name: "empty key ignored",
			txt:  []string{"=value", "sn=1"},
			want: map[string]string{"sn": "1"},
		},
		{
			name: "empty input",
			txt:  nil,
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeTXT(tt.txt))
		})
	}
}

func TestTXTRoundTrip(t *testing.T) {
	info := &Info{InstanceName: "scope", DeviceName: "Scope", Serial: "S-77"}

	m := DecodeTXT(EncodeTXT(info))
	assert.Equal(t, "Scope", m[TXTKeyName])
	assert.Equal(t, "S-77", m[TXTKeySerial])
}

func TestMergeAddresses(t *testing.T) {
	got := mergeAddresses([]string{"192.168.1.10", "fe80::1"}, []string{"192.168.1.10", "10.0.0.5"})
	assert.Equal(t, []string{"192.168.1.10", "fe80::1", "10.0.0.5"}, got)
}

func TestRemoveAddresses(t *testing.T) {
	got := removeAddresses([]string{"192.168.1.10", "fe80::1", "10.0.0.5"}, []string{"fe80::1", "10.0.0.5"})
	assert.Equal(t, []string{"192.168.1.10"}, got)

	got = removeAddresses(got, []string{"192.168.1.10"})
	assert.Empty(t, got)
}
