// Package contactseal encrypts lead contact info at rest.
package contactseal

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

const keyInfo = "leadgate/contact/v1"

// ErrShortSecret is returned when the configured secret is too weak to derive a key from.
var ErrShortSecret = errors.New("contact secret must be at least 16 bytes")

// Sealer seals contact info with XChaCha20-Poly1305. The lead ID is bound as AAD,
// so a blob copied onto another lead row fails to open.
type Sealer struct {
	aead cipher.AEAD
}

// New derives the AEAD key from secret via HKDF-SHA256.
func New(secret []byte) (*Sealer, error) {
	if len(secret) < 16 {
		return nil, ErrShortSecret
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce||ciphertext of the JSON-encoded contact.
func (s *Sealer) Seal(leadID uuid.UUID, c model.Contact) ([]byte, error) {
	plain, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plain)+s.aead.Overhead())
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plain, leadID.Bytes()), nil
}

// Open reverses Seal for the same lead ID.
func (s *Sealer) Open(leadID uuid.UUID, blob []byte) (model.Contact, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return model.Contact{}, errors.New("sealed contact too short")
	}
	nonce, ct := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, ct, leadID.Bytes())
	if err != nil {
		return model.Contact{}, err
	}
	var c model.Contact
	if err := json.Unmarshal(plain, &c); err != nil {
		return model.Contact{}, err
	}
	return c, nil
}
