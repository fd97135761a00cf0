package remote

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// nonceSize is the XSalsa20-Poly1305 nonce length prefixed to every sealed
// packet.
const nonceSize = 24

// seal encrypts message with the pre-shared key, returning nonce||box.
func seal(message []byte, key *[32]byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], message, &nonce, key), nil
}

// open authenticates and decrypts a nonce||box packet.
func open(packet []byte, key *[32]byte) ([]byte, error) {
	if len(packet) < nonceSize {
		return nil, ErrShortPacket
	}
	var nonce [nonceSize]byte
	copy(nonce[:], packet[:nonceSize])
	plain, ok := secretbox.Open(nil, packet[nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
