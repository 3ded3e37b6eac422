package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// maxHelloSize bounds the encoded hello so a misbehaving dialer cannot make
// the acceptor allocate arbitrary memory.
const maxHelloSize = 512

// hello is sent once by the dialing side of a TCP link, before any payload
// bytes. It plays the role of the service record lookup and remote name
// request of a Bluetooth stack.
//
// Port is the dialer's own listening port for the same variant. The
// acceptor only sees the ephemeral source port, so it needs Port to
// hand out an address the dialer can be reached on later.
type hello struct {
	Service []byte `cbor:"1,keyasint"`
	Name    string `cbor:"2,keyasint,omitempty"`
	Port    uint16 `cbor:"3,keyasint,omitempty"`
}

// writeHello writes a 2-byte big-endian length followed by the CBOR hello.
func writeHello(w io.Writer, svc ServiceRecord, name string, port int) error {
	data, err := cbor.Marshal(hello{Service: svc.ID[:], Name: name, Port: uint16(port)})
	if err != nil {
		return fmt.Errorf("encode hello: %w", err)
	}
	if len(data) > maxHelloSize {
		return fmt.Errorf("hello too large: %d bytes", len(data))
	}

	buf := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(data)))
	copy(buf[2:], data)

	_, err = w.Write(buf)
	return err
}

// readHello reads a hello written by writeHello and returns the requested
// service ID along with the decoded hello.
func readHello(r io.Reader) (uuid.UUID, hello, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return uuid.Nil, hello{}, fmt.Errorf("read hello length: %w", err)
	}

	n := binary.BigEndian.Uint16(hdr[:])
	if n == 0 || n > maxHelloSize {
		return uuid.Nil, hello{}, fmt.Errorf("invalid hello length %d", n)
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return uuid.Nil, hello{}, fmt.Errorf("read hello: %w", err)
	}

	var h hello
	if err := cbor.Unmarshal(data, &h); err != nil {
		return uuid.Nil, hello{}, fmt.Errorf("decode hello: %w", err)
	}

	id, err := uuid.FromBytes(h.Service)
	if err != nil {
		return uuid.Nil, hello{}, fmt.Errorf("decode hello service: %w", err)
	}
	return id, h, nil
}
