package tagotip

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	headerSize         = 21
	authHashSize       = 8
	deviceHashSize     = 8
	flagsSize          = 1
	counterSize        = 4
	ccmTagSize         = 8
	gcmTagSize         = 16
	ccmNonceSize       = 13
	gcmNonceSize       = 12
	maxInnerFrameSize  = 16_384
	reservedFlagsValue = 0x41

	flagsCipherMask   = 0b1110_0000
	flagsCipherShift  = 5
	flagsVersionMask  = 0b0001_1000
	flagsVersionShift = 3
	flagsMethodMask   = 0b0000_0111
)

// CipherSuite represents the AEAD cipher suite selected by the flags byte's
// 3-bit cipher field.
type CipherSuite int

const (
	CipherSuiteAes128Ccm        CipherSuite = 0
	CipherSuiteAes128Gcm        CipherSuite = 1
	CipherSuiteAes256Ccm        CipherSuite = 2
	CipherSuiteAes256Gcm        CipherSuite = 3
	CipherSuiteChaCha20Poly1305 CipherSuite = 4
)

// suiteParams returns the key size, tag size, and nonce size for a suite,
// or ok=false if the id is not one of the five defined suites.
func suiteParams(suite CipherSuite) (keySize, tagSize, nonceSize int, ok bool) {
	switch suite {
	case CipherSuiteAes128Ccm:
		return 16, ccmTagSize, ccmNonceSize, true
	case CipherSuiteAes128Gcm:
		return 16, gcmTagSize, gcmNonceSize, true
	case CipherSuiteAes256Ccm:
		return 32, ccmTagSize, ccmNonceSize, true
	case CipherSuiteAes256Gcm:
		return 32, gcmTagSize, gcmNonceSize, true
	case CipherSuiteChaCha20Poly1305:
		return 32, gcmTagSize, gcmNonceSize, true
	default:
		return 0, 0, 0, false
	}
}

// KeySizeForSuite returns the AEAD key size in bytes for suite, or
// ok=false if suite is not one of the five defined cipher suites.
func KeySizeForSuite(suite CipherSuite) (keySize int, ok bool) {
	keySize, _, _, ok = suiteParams(suite)
	return keySize, ok
}

func suiteIsCCM(suite CipherSuite) bool {
	return suite == CipherSuiteAes128Ccm || suite == CipherSuiteAes256Ccm
}

// EnvelopeMethod represents the method in the envelope flags.
type EnvelopeMethod int

const (
	EnvelopeMethodPush EnvelopeMethod = 0
	EnvelopeMethodPull EnvelopeMethod = 1
	EnvelopeMethodPing EnvelopeMethod = 2
	EnvelopeMethodAck  EnvelopeMethod = 3
)

// EnvelopeHeader represents the parsed 21-byte envelope header.
type EnvelopeHeader struct {
	Flags      byte
	Counter    uint32
	AuthHash   [authHashSize]byte
	DeviceHash [deviceHashSize]byte
}

// CryptoErrorKind identifies the category of a crypto envelope error.
type CryptoErrorKind string

const (
	CryptoErrNullInput           CryptoErrorKind = "null_input"
	CryptoErrBufferTooSmall      CryptoErrorKind = "buffer_too_small"
	CryptoErrEnvelopeTooShort    CryptoErrorKind = "envelope_too_short"
	CryptoErrDecryptionFailed    CryptoErrorKind = "decryption_failed"
	CryptoErrUnsupportedCipher   CryptoErrorKind = "unsupported_cipher"
	CryptoErrUnsupportedVersion  CryptoErrorKind = "unsupported_version"
	CryptoErrInvalidMethod       CryptoErrorKind = "invalid_method"
	CryptoErrInnerTooLarge       CryptoErrorKind = "inner_too_large"
	CryptoErrReservedFlags       CryptoErrorKind = "reserved_flags"
	CryptoErrInvalidKeySize      CryptoErrorKind = "invalid_key_size"
	CryptoErrInvalidHex          CryptoErrorKind = "invalid_hex"
)

// SecureError represents an error from crypto envelope operations.
// The Kind is coarse by design for DecryptionFailed (spec section 7): it
// never reveals whether the header, AAD, ciphertext, or tag was the point
// of failure.
type SecureError struct {
	Kind    CryptoErrorKind
	Message string
}

func (e *SecureError) Error() string {
	return fmt.Sprintf("tagotips: %s: %s", e.Kind, e.Message)
}

func secureErr(kind CryptoErrorKind, msg string) error {
	return &SecureError{Kind: kind, Message: msg}
}

// DeriveAuthHash derives the Authorization Hash from a token.
// The token format is "at" + 32 hex chars. The "at" prefix is stripped,
// and SHA-256 is computed over the remaining hex string (UTF-8 encoded).
// Returns the first 8 bytes of the digest.
func DeriveAuthHash(token string) [authHashSize]byte {
	hexPart := token
	if len(token) > 2 && token[0] == 'a' && token[1] == 't' {
		hexPart = token[2:]
	}
	digest := sha256.Sum256([]byte(hexPart))
	var hash [authHashSize]byte
	copy(hash[:], digest[:authHashSize])
	return hash
}

// DeriveDeviceHash derives the Device Hash from a serial number.
// Computes SHA-256 of the serial (UTF-8 encoded) and returns the first 8 bytes.
func DeriveDeviceHash(serial string) [deviceHashSize]byte {
	digest := sha256.Sum256([]byte(serial))
	var hash [deviceHashSize]byte
	copy(hash[:], digest[:deviceHashSize])
	return hash
}

// DeriveKey derives an encryption key from a token and serial using HMAC-SHA256.
// The "at" prefix is stripped from the token. The remaining hex string (UTF-8)
// is used as the HMAC key; the serial (UTF-8) is the HMAC message.
// keyLen must be 16 (AES-128) or 32 (AES-256/ChaCha20).
func DeriveKey(token, serial string, keyLen int) ([]byte, error) {
	if keyLen != 16 && keyLen != 32 {
		return nil, secureErr(CryptoErrInvalidKeySize, "key length must be 16 or 32")
	}
	hexPart := token
	if strings.HasPrefix(token, "at") {
		hexPart = token[2:]
	}
	mac := hmac.New(sha256.New, []byte(hexPart))
	mac.Write([]byte(serial))
	fullKey := mac.Sum(nil)
	key := make([]byte, keyLen)
	copy(key, fullKey[:keyLen])
	wipe(fullKey)
	return key, nil
}

// HexToBytes decodes a hex string into bytes.
func HexToBytes(hexStr string) ([]byte, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, secureErr(CryptoErrInvalidHex, err.Error())
	}
	return b, nil
}

// BytesToHex encodes bytes as a lowercase hex string.
func BytesToHex(data []byte) string {
	return hex.EncodeToString(data)
}

// NormalizeAuth lowercases the hex portion of an auth token, leaving the
// "at" prefix untouched. Keystore lookups key on the normalized form so
// a device that sends its token with mixed-case hex (some MCU libc hex
// formatters default to uppercase) still resolves.
func NormalizeAuth(token string) string {
	if len(token) <= 2 || token[0] != 'a' || token[1] != 't' {
		return strings.ToLower(token)
	}
	return "at" + strings.ToLower(token[2:])
}

// wipe overwrites a byte slice with zeros. Best-effort: the Go runtime may
// retain copies in places this cannot reach (stack spills, GC-moved
// buffers), but this still guards against the common case of a caller-
// visible slice outliving its usefulness.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func encodeFlags(cipherID, version, methodID int) (byte, error) {
	flags := byte((cipherID << flagsCipherShift) | (version << flagsVersionShift) | methodID)
	if flags == reservedFlagsValue {
		return 0, secureErr(CryptoErrReservedFlags, "flags byte 0x41 is reserved")
	}
	return flags, nil
}

func decodeFlags(flags byte) (cipherID, version, methodID int, err error) {
	if flags == reservedFlagsValue {
		return 0, 0, 0, secureErr(CryptoErrReservedFlags, "flags byte 0x41 is reserved")
	}
	cipherID = int((flags & flagsCipherMask) >> flagsCipherShift)
	version = int((flags & flagsVersionMask) >> flagsVersionShift)
	methodID = int(flags & flagsMethodMask)
	return cipherID, version, methodID, nil
}

func buildEnvelopeHeader(flags byte, counter uint32, authHash [authHashSize]byte, deviceHash [deviceHashSize]byte) []byte {
	header := make([]byte, headerSize)
	header[0] = flags
	binary.BigEndian.PutUint32(header[flagsSize:], counter)
	copy(header[flagsSize+counterSize:], authHash[:])
	copy(header[flagsSize+counterSize+authHashSize:], deviceHash[:])
	return header
}

// constructNonce builds the AEAD nonce for suite. CCM suites use a 13-byte
// nonce; GCM and ChaCha20-Poly1305 use a 12-byte nonce. Both share the same
// construction and differ only in the padding length (4 bytes for CCM, 3
// for the 12-byte suites):
// [flags:1] [0x00 padding] [device_hash[:4]:4] [counter:4 big-endian].
func constructNonce(suite CipherSuite, flags byte, deviceHash [deviceHashSize]byte, counter uint32) []byte {
	_, _, nonceSize, ok := suiteParams(suite)
	if !ok {
		nonceSize = ccmNonceSize
	}
	nonce := make([]byte, nonceSize)
	nonce[0] = flags
	copy(nonce[nonceSize-8:nonceSize-4], deviceHash[:4])
	binary.BigEndian.PutUint32(nonce[nonceSize-4:], counter)
	return nonce
}

// aeadSeal dispatches to the CCM, GCM, or ChaCha20-Poly1305 engine for
// suite and returns ciphertext || tag.
func aeadSeal(suite CipherSuite, key, nonce, aad, plaintext []byte) ([]byte, error) {
	if suiteIsCCM(suite) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, secureErr(CryptoErrInvalidKeySize, "invalid encryption key")
		}
		return ccmSeal(block, nonce, aad, plaintext)
	}

	aead, err := buildAEAD(suite, key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// aeadOpen dispatches to the CCM, GCM, or ChaCha20-Poly1305 engine for
// suite and verifies + decrypts ciphertextWithTag.
func aeadOpen(suite CipherSuite, key, nonce, aad, ciphertextWithTag []byte) ([]byte, error) {
	_, tagSize, _, _ := suiteParams(suite)
	if len(ciphertextWithTag) < tagSize {
		return nil, secureErr(CryptoErrDecryptionFailed, "ciphertext too short")
	}

	if suiteIsCCM(suite) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, secureErr(CryptoErrInvalidKeySize, "invalid encryption key")
		}
		return ccmOpen(block, nonce, aad, ciphertextWithTag)
	}

	aead, err := buildAEAD(suite, key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertextWithTag, aad)
	if err != nil {
		return nil, secureErr(CryptoErrDecryptionFailed, "AEAD decryption failed")
	}
	return plaintext, nil
}

// buildAEAD constructs the standard-library/x-crypto cipher.AEAD for the
// non-CCM suites (CCM has no standard-library implementation and is
// hand-rolled in ccm.go per NIST SP 800-38C).
func buildAEAD(suite CipherSuite, key []byte) (cipher.AEAD, error) {
	switch suite {
	case CipherSuiteAes128Gcm, CipherSuiteAes256Gcm:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, secureErr(CryptoErrInvalidKeySize, "invalid encryption key")
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, secureErr(CryptoErrInvalidKeySize, "gcm init failed")
		}
		return aead, nil
	case CipherSuiteChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, secureErr(CryptoErrInvalidKeySize, "invalid encryption key")
		}
		return aead, nil
	default:
		return nil, secureErr(CryptoErrUnsupportedCipher, "unsupported cipher suite")
	}
}

// SealUplink encrypts a headless inner frame into a TagoTiP/S envelope.
func SealUplink(
	method EnvelopeMethod,
	innerFrame []byte,
	counter uint32,
	authHash [authHashSize]byte,
	deviceHash [deviceHashSize]byte,
	key []byte,
	suite CipherSuite,
) ([]byte, error) {
	if innerFrame == nil {
		return nil, secureErr(CryptoErrNullInput, "inner frame is nil")
	}
	if len(innerFrame) > maxInnerFrameSize {
		return nil, secureErr(CryptoErrInnerTooLarge, "inner frame exceeds maximum size")
	}
	keySize, _, _, ok := suiteParams(suite)
	if !ok {
		return nil, secureErr(CryptoErrUnsupportedCipher, "unsupported cipher suite")
	}
	if len(key) != keySize {
		return nil, secureErr(CryptoErrInvalidKeySize, "invalid encryption key size")
	}
	if method < EnvelopeMethodPush || method > EnvelopeMethodAck {
		return nil, secureErr(CryptoErrInvalidMethod, "invalid method")
	}

	flags, err := encodeFlags(int(suite), 0, int(method))
	if err != nil {
		return nil, err
	}

	header := buildEnvelopeHeader(flags, counter, authHash, deviceHash)
	nonce := constructNonce(suite, flags, deviceHash, counter)

	ciphertextWithTag, err := aeadSeal(suite, key, nonce, header, innerFrame)
	if err != nil {
		return nil, err
	}

	envelope := make([]byte, headerSize+len(ciphertextWithTag))
	copy(envelope, header)
	copy(envelope[headerSize:], ciphertextWithTag)
	return envelope, nil
}

// OpenEnvelope decrypts a TagoTiP/S envelope.
// Returns the header, method, and decrypted inner frame bytes.
func OpenEnvelope(envelope, key []byte) (*EnvelopeHeader, EnvelopeMethod, []byte, error) {
	header, err := ParseEnvelopeHeader(envelope)
	if err != nil {
		return nil, 0, nil, err
	}

	cipherID, version, methodID, err := decodeFlags(header.Flags)
	if err != nil {
		return nil, 0, nil, err
	}
	suite := CipherSuite(cipherID)

	if version != 0 {
		return nil, 0, nil, secureErr(CryptoErrUnsupportedVersion, "unsupported version")
	}
	keySize, tagSize, _, ok := suiteParams(suite)
	if !ok {
		return nil, 0, nil, secureErr(CryptoErrUnsupportedCipher, "unsupported cipher suite")
	}
	if methodID > int(EnvelopeMethodAck) {
		return nil, 0, nil, secureErr(CryptoErrInvalidMethod, "invalid method")
	}
	if len(key) != keySize {
		return nil, 0, nil, secureErr(CryptoErrInvalidKeySize, "invalid encryption key size")
	}

	ciphertextWithTag := envelope[headerSize:]
	if len(ciphertextWithTag) < tagSize {
		return nil, 0, nil, secureErr(CryptoErrEnvelopeTooShort, "envelope too short")
	}

	aad := envelope[:headerSize]
	nonce := constructNonce(suite, header.Flags, header.DeviceHash, header.Counter)

	plaintext, err := aeadOpen(suite, key, nonce, aad, ciphertextWithTag)
	if err != nil {
		wipe(plaintext)
		return nil, 0, nil, err
	}

	return header, EnvelopeMethod(methodID), plaintext, nil
}

// SealUplinkHex is SealUplink but returns a lowercase hex-encoded envelope,
// convenient for transports that are already text-oriented (e.g. an MQTT
// bridge publishing to a text topic).
func SealUplinkHex(
	method EnvelopeMethod,
	innerFrame []byte,
	counter uint32,
	authHash [authHashSize]byte,
	deviceHash [deviceHashSize]byte,
	key []byte,
	suite CipherSuite,
) (string, error) {
	envelope, err := SealUplink(method, innerFrame, counter, authHash, deviceHash, key, suite)
	if err != nil {
		return "", err
	}
	return BytesToHex(envelope), nil
}

// OpenEnvelopeHex is OpenEnvelope but accepts a hex-encoded envelope.
// Malformed hex is reported as CryptoErrInvalidHex rather than a generic
// decode failure.
func OpenEnvelopeHex(envelopeHex string, key []byte) (*EnvelopeHeader, EnvelopeMethod, []byte, error) {
	envelope, err := HexToBytes(envelopeHex)
	if err != nil {
		return nil, 0, nil, err
	}
	return OpenEnvelope(envelope, key)
}

// ParseEnvelopeHeader parses the 21-byte envelope header for server-side routing.
func ParseEnvelopeHeader(envelope []byte) (*EnvelopeHeader, error) {
	if envelope == nil {
		return nil, secureErr(CryptoErrNullInput, "envelope is nil")
	}
	if len(envelope) < headerSize {
		return nil, secureErr(CryptoErrEnvelopeTooShort, "envelope too short")
	}

	flags := envelope[0]
	if _, _, _, err := decodeFlags(flags); err != nil {
		return nil, err
	}

	counter := binary.BigEndian.Uint32(envelope[flagsSize:])
	var authHash [authHashSize]byte
	copy(authHash[:], envelope[flagsSize+counterSize:])
	var deviceHash [deviceHashSize]byte
	copy(deviceHash[:], envelope[flagsSize+counterSize+authHashSize:])

	return &EnvelopeHeader{
		Flags:      flags,
		Counter:    counter,
		AuthHash:   authHash,
		DeviceHash: deviceHash,
	}, nil
}

// IsEnvelope checks if a message is a TagoTiP/S envelope or a plaintext fallback.
// Returns true if the first byte is NOT 0x41 (ASCII 'A').
func IsEnvelope(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return data[0] != reservedFlagsValue
}

// IsSecureError checks if an error is a SecureError.
func IsSecureError(err error) bool {
	var se *SecureError
	return errors.As(err, &se)
}
