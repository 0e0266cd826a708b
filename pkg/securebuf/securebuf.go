// Package securebuf implements the scoped, encrypted-in-memory PCM staging
// buffer required by spec.md §5: every acquisition of the ultrasonic
// capture buffer is allocated in encrypted form, decrypted only inside a
// closure that receives the plaintext slice, and wiped on scope exit or any
// error path. The teacher codebase's cmd/autonomyd/main.go imports a
// pkg/security package built on golang.org/x/crypto whose source was not
// retrieved in this pack; this package gives that dependency a concrete,
// spec-grounded home.
package securebuf

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Buffer is an opaque handle over ciphertext; the only way to read the
// plaintext is With, which wipes it again before returning.
type Buffer struct {
	aead       chacha20poly1305.AEAD
	nonce      []byte
	ciphertext []byte
	key        []byte
}

// Seal encrypts pcm (an i16 slice, little-endian encoded) under a fresh
// random key and wipes the plaintext staging slice before returning.
func Seal(pcm []int16) (*Buffer, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("securebuf: generate key: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("securebuf: init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		wipe(key)
		return nil, fmt.Errorf("securebuf: generate nonce: %w", err)
	}

	plain := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(plain[i*2:], uint16(s))
	}
	ciphertext := aead.Seal(nil, nonce, plain, nil)
	wipe(plain) // temporary staging array wiped immediately after sealing

	return &Buffer{aead: aead, nonce: nonce, ciphertext: ciphertext, key: key}, nil
}

// With decrypts the buffer, invokes fn with the plaintext PCM slice, and
// wipes both the decrypted bytes and that PCM slice before returning —
// also when fn panics, in which case the panic is recovered and returned
// as an error.
func (b *Buffer) With(fn func(pcm []int16)) (err error) {
	if b == nil {
		return fmt.Errorf("securebuf: nil buffer")
	}

	plain, decErr := b.aead.Open(nil, b.nonce, b.ciphertext, nil)
	if decErr != nil {
		return fmt.Errorf("securebuf: decrypt: %w", decErr)
	}

	pcm := make([]int16, len(plain)/2)
	defer func() {
		wipe(plain)
		for i := range pcm {
			pcm[i] = 0
		}
		if r := recover(); r != nil {
			err = fmt.Errorf("securebuf: callback panicked: %v", r)
		}
	}()

	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(plain[i*2:]))
	}
	fn(pcm)

	return nil
}

// Destroy wipes the encryption key and ciphertext, rendering the buffer
// permanently unreadable. Called on scope exit or any error path.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	wipe(b.key)
	wipe(b.ciphertext)
	wipe(b.nonce)
}

func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

func pcm2bytes(pcm []int16) []byte {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
