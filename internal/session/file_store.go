package session

import (
	"bytes"
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var sealedMagic = []byte("CCS1")

const saltSize = 16

// FileStore keeps the session entries in a single JSON file, optionally
// sealed with XChaCha20-Poly1305 under a key derived from a passphrase.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries map[string]string
	salt    []byte
	aead    cipher.AEAD
	secret  string
}

// NewFileStore opens (or prepares) the session file at path. An empty
// secret stores plaintext JSON.
func NewFileStore(path, secret string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("session file path is required")
	}

	s := &FileStore{path: path, entries: make(map[string]string), secret: secret}
	if err := s.load(); err != nil {
		return nil, err
	}
	if secret != "" && s.aead == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate session file salt: %w", err)
		}
		if err := s.useKey(salt); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return s.persistLocked()
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return s.persistLocked()
}

func (s *FileStore) useKey(salt []byte) error {
	key := argon2.IDKey([]byte(s.secret), salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("init session file cipher: %w", err)
	}
	s.salt = salt
	s.aead = aead
	return nil
}

func (s *FileStore) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}

	sealed := bytes.HasPrefix(b, sealedMagic)
	switch {
	case sealed && s.secret == "":
		return errors.New("session file is sealed but no SESSION_STORE_KEY was given")
	case !sealed && s.secret != "":
		return errors.New("session file is not sealed but SESSION_STORE_KEY was given")
	}

	if sealed {
		b, err = s.open(b[len(sealedMagic):])
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(b, &s.entries); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	return nil
}

func (s *FileStore) open(b []byte) ([]byte, error) {
	if len(b) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, errors.New("session file is truncated")
	}
	if err := s.useKey(b[:saltSize]); err != nil {
		return nil, err
	}
	b = b[saltSize:]
	nonce, ciphertext := b[:chacha20poly1305.NonceSizeX], b[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, sealedMagic)
	if err != nil {
		return nil, fmt.Errorf("unseal session file: %w", err)
	}
	return plain, nil
}

func (s *FileStore) persistLocked() error {
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	if s.aead != nil {
		nonce := make([]byte, chacha20poly1305.NonceSizeX)
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("generate nonce: %w", err)
		}
		out := make([]byte, 0, len(sealedMagic)+saltSize+len(nonce)+len(b)+s.aead.Overhead())
		out = append(out, sealedMagic...)
		out = append(out, s.salt...)
		out = append(out, nonce...)
		b = s.aead.Seal(out, nonce, b, sealedMagic)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
