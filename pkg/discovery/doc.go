// Package discovery provides mDNS/DNS-SD discovery of PRPC devices.
//
// Devices advertise a `_prpc._tcp` service on the local domain with
// TXT records carrying the display name and serial number. Clients
// browse for these services to find devices without configuration.
//
// # Service Advertisement
//
//	Instance:  <device name>         e.g. "bench-psu"
//	Service:   _prpc._tcp
//	Domain:    local.
//	Port:      the PRPC listen port  (default 7117)
//	TXT:       name=<display name>, sn=<serial>
//
// Advertising and browsing are both built on enbility/zeroconf.
package discovery
