// Package gatewaykeys implements the (auth_hash, device_hash) -> key
// lookup the tagotip core requires of its caller (spec section 6's "key
// management and rotation" is explicitly out of core scope).
package gatewaykeys

import (
	"fmt"

	"github.com/tagotip-io/tagotip-go"
	"github.com/tagotip-io/tagotip-go/internal/gwconfig"
)

// Entry is a resolved device credential: the derived AEAD key and the
// cipher suite the device is expected to use.
type Entry struct {
	Serial string
	Key    []byte
	Suite  tagotip.CipherSuite
}

// Store is a two-level in-memory lookup from auth_hash -> device_hash ->
// Entry, built once at load time so routing is O(1) per datagram.
type Store struct {
	byAuthDevice map[[8]byte]map[[8]byte]Entry
}

// Build derives auth_hash/device_hash for every configured device and
// assembles the routing table. An unknown cipher suite name fails the
// whole load rather than silently dropping one device's entry. The token's
// format is not checked.
func Build(devices []gwconfig.DeviceEntry, defaultSuite tagotip.CipherSuite) (*Store, error) {
	store := &Store{byAuthDevice: make(map[[8]byte]map[[8]byte]Entry)}

	for _, d := range devices {
		suite := defaultSuite
		if d.Suite != "" {
			s, err := gwconfig.ParseSuiteName(d.Suite)
			if err != nil {
				return nil, fmt.Errorf("gatewaykeys: device %s: %w", d.Serial, err)
			}
			suite = s
		}

		keySize, ok := tagotip.KeySizeForSuite(suite)
		if !ok {
			return nil, fmt.Errorf("gatewaykeys: device %s: unsupported cipher suite", d.Serial)
		}

		key, err := tagotip.DeriveKey(tagotip.NormalizeAuth(d.Token), d.Serial, keySize)
		if err != nil {
			return nil, fmt.Errorf("gatewaykeys: device %s: %w", d.Serial, err)
		}

		authHash := tagotip.DeriveAuthHash(tagotip.NormalizeAuth(d.Token))
		deviceHash := tagotip.DeriveDeviceHash(d.Serial)

		byDevice, ok := store.byAuthDevice[authHash]
		if !ok {
			byDevice = make(map[[8]byte]Entry)
			store.byAuthDevice[authHash] = byDevice
		}
		byDevice[deviceHash] = Entry{Serial: d.Serial, Key: key, Suite: suite}
	}

	return store, nil
}

// Lookup resolves the Entry for a given auth_hash/device_hash pair, as
// carried in an envelope header or derived from a plaintext frame's Auth
// and Serial fields.
func (s *Store) Lookup(authHash, deviceHash [8]byte) (Entry, bool) {
	byDevice, ok := s.byAuthDevice[authHash]
	if !ok {
		return Entry{}, false
	}
	e, ok := byDevice[deviceHash]
	return e, ok
}

// LookupPlaintext resolves an Entry from an uplink frame's raw Auth
// token and Serial, for the plaintext (non-envelope) path.
func (s *Store) LookupPlaintext(auth, serial string) (Entry, bool) {
	authHash := tagotip.DeriveAuthHash(tagotip.NormalizeAuth(auth))
	deviceHash := tagotip.DeriveDeviceHash(serial)
	return s.Lookup(authHash, deviceHash)
}
