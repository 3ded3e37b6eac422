// Package transport provides the link transport layer for linkd.
//
// The connection manager never talks to a radio directly. It depends on the
// Transport capability defined here, which covers the handful of operations
// an RFCOMM-style stack offers:
//   - open a listening endpoint for a service record
//   - accept an inbound link
//   - connect to a known peer
//   - read, write and close a link
//   - cancel an ongoing device discovery
//
// # Service Records
//
// Two fixed service records distinguish the secure and insecure channel
// variants. Both variants are listened on concurrently so a peer may connect
// via either:
//
//	Secure    434ca063-3a16-465f-a8eb-ab59d75fdd8e  BluetoothConnectionSecure
//	Insecure  953ef910-3861-4b53-bdd2-8db5ba9fcc72  BluetoothConnectionInsecure
//
// # Implementations
//
//   - MemoryTransport: in-process links over net.Pipe (tests, simulation)
//   - TCPTransport: RFCOMM emulation over TCP with an mDNS-advertised
//     service per variant and a short hello carrying the service ID and
//     the dialer's name
//   - RFCOMMTransport: Bluetooth RFCOMM sockets (linux only)
//
// Links carry raw bytes. There is no framing above the stream.
package transport
