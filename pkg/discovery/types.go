package discovery

import (
	"errors"
	"strings"
	"time"
)

// Service discovery constants.
const (
	// ServiceType is the DNS-SD service type for PRPC devices.
	ServiceType = "_prpc._tcp"

	// Domain is the DNS-SD domain.
	Domain = "local."

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen is the DNS label length limit for instance
	// names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	// TXTKeyName is the device's display name.
	TXTKeyName = "name"

	// TXTKeySerial is the device's serial number.
	TXTKeySerial = "sn"
)

// Discovery errors.
var (
	ErrNotFound        = errors.New("service not found")
	ErrMissingRequired = errors.New("missing required field")
)

// Info describes the service a device advertises.
type Info struct {
	// InstanceName is the mDNS instance name. Required.
	InstanceName string

	// Port is the PRPC listen port. Zero means the default port.
	Port uint16

	// DeviceName is the display name carried in TXT records.
	// Defaults to the instance name.
	DeviceName string

	// Serial is the device serial number. Optional.
	Serial string
}

// Service describes a discovered PRPC device.
type Service struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the device's mDNS hostname.
	Host string

	// Port is the PRPC listen port.
	Port uint16

	// Addresses are the device's IP addresses as strings.
	Addresses []string

	// DeviceName is the display name from TXT records.
	DeviceName string

	// Serial is the serial number from TXT records, if present.
	Serial string
}

// EncodeTXT builds the TXT record strings for an advertisement.
func EncodeTXT(info *Info) []string {
	name := info.DeviceName
	if name == "" {
		name = info.InstanceName
	}

	txt := []string{TXTKeyName + "=" + name}
	if info.Serial != "" {
		txt = append(txt, TXTKeySerial+"="+info.Serial)
	}
	return txt
}

// DecodeTXT parses TXT record strings into their key/value pairs.
// Records without an '=' are ignored, per DNS-SD convention.
func DecodeTXT(txt []string) map[string]string {
	m := make(map[string]string, len(txt))
	for _, record := range txt {
		key, value, ok := strings.Cut(record, "=")
		if !ok || key == "" {
			continue
		}
		m[key] = value
	}
	return m
}
