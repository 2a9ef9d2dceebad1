// Package credentials persists the account profile: the API key and the
// salted password hash, stored as JSON under the state directory.
package credentials

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// ErrProfileMissing is returned when no profile file exists yet.
var ErrProfileMissing = errors.New("no account profile found")

const (
	pbkdf2Iterations = 200000
	saltLength       = 16
	keyLength        = 32
)

// FileStore reads and writes the profile JSON file with owner-only
// permissions.
type FileStore struct {
	path string
}

// NewFileStore places the profile at <stateDir>/profile.json.
func NewFileStore(stateDir string) *FileStore {
	return &FileStore{path: filepath.Join(stateDir, "profile.json")}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether a profile file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and decodes the profile.
func (s *FileStore) Load() (domain.Profile, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Profile{}, ErrProfileMissing
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("corrupt profile file: %w", err)
	}
	if profile.APIKey == "" || profile.PasswordHash == "" || profile.PasswordSalt == "" {
		return domain.Profile{}, errors.New("corrupt profile file: missing fields")
	}
	return profile, nil
}

// Save creates a fresh profile from the raw credentials, hashing the
// password with a new random salt.
func (s *FileStore) Save(apiKey, password string) error {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	hash := hashPassword(password, salt)

	profile := domain.Profile{
		APIKey:       apiKey,
		PasswordHash: hex.EncodeToString(hash),
		PasswordSalt: hex.EncodeToString(salt),
	}
	return s.write(profile)
}

// UpdateAPIKey replaces the stored key, keeping the password hash intact.
func (s *FileStore) UpdateAPIKey(apiKey string) error {
	profile, err := s.Load()
	if err != nil {
		return err
	}
	profile.APIKey = apiKey
	return s.write(profile)
}

// UpdatePassword re-hashes with a fresh salt.
func (s *FileStore) UpdatePassword(password string) error {
	profile, err := s.Load()
	if err != nil {
		return err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	profile.PasswordHash = hex.EncodeToString(hashPassword(password, salt))
	profile.PasswordSalt = hex.EncodeToString(salt)
	return s.write(profile)
}

// Delete removes the profile file. Missing files are not an error.
func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// PasswordVerifier returns a verifier bound to the stored hash and salt.
func (s *FileStore) PasswordVerifier() (ports.PasswordVerifier, error) {
	profile, err := s.Load()
	if err != nil {
		return nil, err
	}
	storedHash, err := hex.DecodeString(profile.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("corrupt profile file: %w", err)
	}
	salt, err := hex.DecodeString(profile.PasswordSalt)
	if err != nil {
		return nil, fmt.Errorf("corrupt profile file: %w", err)
	}

	return ports.VerifierFunc(func(candidate string) bool {
		return hmac.Equal(hashPassword(candidate, salt), storedHash)
	}), nil
}

func (s *FileStore) write(profile domain.Profile) error {
	raw, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func hashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha256.New)
}

var _ ports.CredentialStore = (*FileStore)(nil)
