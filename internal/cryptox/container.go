package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/docvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// Version1 is the only container format this package writes.
	Version1 byte = 0x01

	SaltSize   = 16
	NonceSize  = chacha20poly1305.NonceSizeX
	TagSize    = chacha20poly1305.Overhead
	KeySize    = chacha20poly1305.KeySize
	HeaderSize = 1 + SaltSize + NonceSize

	// MinContainerSize is the size of a container holding an empty document.
	MinContainerSize = HeaderSize + TagSize
)

// kdfParams are the Argon2id settings of a container version. They are part
// of the format and must never change for an existing version.
type kdfParams struct {
	time    uint32
	memory  uint32
	threads uint8
	info    string
}

var versions = map[byte]kdfParams{
	Version1: {time: 3, memory: 64 * 1024, threads: 4, info: "docvault:container:v1"},
}

// versionError reports an unknown format version. It is structural, so it
// matches ErrMalformedContainer, and it also matches ErrAuthentication so a
// flipped version byte is indistinguishable from any other tampering.
type versionError struct {
	version byte
}

func (e *versionError) Error() string {
	return fmt.Sprintf("%s: unsupported format version 0x%02x", common.ErrMalformedContainer, e.version)
}

func (e *versionError) Is(target error) bool {
	return target == common.ErrMalformedContainer || target == common.ErrAuthentication
}

// randRead is the nonce/salt source. Tests replace it to exercise failures.
var randRead = func(b []byte) error {
	_, err := rand.Read(b)
	return err
}

// Encrypt seals plaintext under a key derived from passphrase and returns a
// self-describing container. Every call draws a fresh salt and nonce, so
// encrypting the same document twice yields different containers.
//
// The passphrase slice is not modified; callers wipe it when done.
func Encrypt(plaintext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrValidation)
	}

	header := make([]byte, HeaderSize, HeaderSize+len(plaintext)+TagSize)
	header[0] = Version1
	salt := header[1 : 1+SaltSize]
	nonce := header[1+SaltSize : HeaderSize]

	if err := randRead(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if err := randRead(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	aead, err := newAEAD(versions[Version1], passphrase, salt)
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, nonce, plaintext, header)
	return append(header, sealed...), nil
}

// Decrypt opens a container produced by Encrypt.
//
// Errors:
//   - common.ErrMalformedContainer: shorter than the header, or unknown version
//     (checked before any key derivation).
//   - common.ErrAuthentication: the tag did not verify. Wrong passphrase,
//     corruption and truncation all land here.
func Decrypt(container, passphrase []byte) ([]byte, error) {
	if len(container) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", common.ErrMalformedContainer, len(container), HeaderSize)
	}

	params, ok := versions[container[0]]
	if !ok {
		return nil, &versionError{version: container[0]}
	}

	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrValidation)
	}

	// A body without room for a tag can never verify.
	if len(container) < MinContainerSize {
		return nil, common.ErrAuthentication
	}

	header := container[:HeaderSize]
	salt := header[1 : 1+SaltSize]
	nonce := header[1+SaltSize:]

	aead, err := newAEAD(params, passphrase, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, container[HeaderSize:], header)
	if err != nil {
		return nil, common.ErrAuthentication
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// newAEAD derives the container key and builds the cipher. Both intermediate
// keys are wiped before returning; the cipher keeps its own expanded copy.
func newAEAD(p kdfParams, passphrase, salt []byte) (cipher.AEAD, error) {
	master := argon2.IDKey(passphrase, salt, p.time, p.memory, p.threads, KeySize)
	defer common.WipeByteArray(master)

	key := make([]byte, KeySize)
	defer common.WipeByteArray(key)

	if _, err := io.ReadFull(hkdf.New(sha512.New, master, salt, []byte(p.info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return aead, nil
}

// IsDecryptFailure reports whether err means "wrong passphrase or corrupted
// file" from the caller's point of view.
func IsDecryptFailure(err error) bool {
	return errors.Is(err, common.ErrAuthentication) || errors.Is(err, common.ErrMalformedContainer)
}
