package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// BookVersion is the current version of the peer book format.
const BookVersion = 1

// ErrUnknownPeer is returned by Lookup when no peer matches.
var ErrUnknownPeer = errors.New("unknown peer")

// PeerBook is the on-disk peer book.
type PeerBook struct {
	// Version is the file format version.
	Version int `json:"version"`

	// SavedAt is when the book was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Peers are the known peers, most recently connected first.
	Peers []KnownPeer `json:"peers,omitempty"`
}

// KnownPeer is a device a link was established with.
type KnownPeer struct {
	// Address is the transport address used to reach the peer.
	Address string `json:"address"`

	// Name is the device name reported by the peer.
	Name string `json:"name,omitempty"`

	// Secure is true when the last link used the secure service.
	Secure bool `json:"secure"`

	// LastConnected is when the last link was established.
	LastConnected time.Time `json:"last_connected"`
}

// PeerStore keeps the peer book in memory and persists it to a JSON file.
// An empty path keeps the book in memory only.
type PeerStore struct {
	mu    sync.Mutex
	path  string
	peers map[string]KnownPeer
}

// NewPeerStore creates an empty store backed by path.
func NewPeerStore(path string) *PeerStore {
	return &PeerStore{
		path:  path,
		peers: make(map[string]KnownPeer),
	}
}

// Path returns the backing file path.
func (s *PeerStore) Path() string {
	return s.path
}

// Load replaces the in-memory book with the file contents. A missing file
// yields an empty book; without a path Load does nothing.
func (s *PeerStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	s.peers = make(map[string]KnownPeer)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var book PeerBook
	if err := json.Unmarshal(data, &book); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	if book.Version > BookVersion {
		return fmt.Errorf("peer book %s: unsupported version %d", s.path, book.Version)
	}

	for _, p := range book.Peers {
		if p.Address == "" {
			continue
		}
		s.peers[p.Address] = p
	}
	return nil
}

// Save writes the book to disk. The file is replaced atomically.
func (s *PeerStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	book := PeerBook{
		Version: BookVersion,
		SavedAt: time.Now(),
		Peers:   s.listLocked(),
	}
	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Remember records a link with a peer. A known address keeps its name when
// the new name is empty.
func (s *PeerStore) Remember(p KnownPeer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.LastConnected.IsZero() {
		p.LastConnected = time.Now()
	}
	if old, ok := s.peers[p.Address]; ok && p.Name == "" {
		p.Name = old.Name
	}
	s.peers[p.Address] = p
}

// Forget removes a peer. It reports whether the peer was known.
func (s *PeerStore) Forget(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.peers[address]
	delete(s.peers, address)
	return ok
}

// Lookup finds a peer by address or, case-insensitively, by name. When
// several peers share a name the most recently connected one wins.
func (s *PeerStore) Lookup(nameOrAddress string) (KnownPeer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.peers[nameOrAddress]; ok {
		return p, nil
	}
	for _, p := range s.listLocked() {
		if p.Name != "" && strings.EqualFold(p.Name, nameOrAddress) {
			return p, nil
		}
	}
	return KnownPeer{}, fmt.Errorf("%w: %s", ErrUnknownPeer, nameOrAddress)
}

// List returns all known peers, most recently connected first.
func (s *PeerStore) List() []KnownPeer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *PeerStore) listLocked() []KnownPeer {
	peers := make([]KnownPeer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	slices.SortFunc(peers, func(a, b KnownPeer) int {
		if c := b.LastConnected.Compare(a.LastConnected); c != 0 {
			return c
		}
		return strings.Compare(a.Address, b.Address)
	})
	return peers
}
