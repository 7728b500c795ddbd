package services

import (
	"smartjournal/internal/crypto"
	"smartjournal/internal/models"
)

// EncryptionService wraps the cipher with journal-specific methods. It
// satisfies sqlstore.EntrySealer.
type EncryptionService struct {
	crypto *crypto.Cipher
}

// NewEncryptionService takes the hex ENCRYPTION_KEY.
func NewEncryptionService(hexKey string) (*EncryptionService, error) {
	key, err := crypto.ParseKey(hexKey)
	if err != nil {
		return nil, err
	}
	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{crypto: c}, nil
}

// EncryptEntry encrypts journal content before it is stored
func (s *EncryptionService) EncryptEntry(entry *models.JournalEntry) error {
	if entry.Content == "" {
		return nil
	}
	sealed, err := s.crypto.Seal(entry.Content)
	if err != nil {
		return err
	}
	entry.Content = sealed
	return nil
}

// DecryptEntry decrypts journal content after it is loaded
func (s *EncryptionService) DecryptEntry(entry *models.JournalEntry) error {
	if entry.Content == "" {
		return nil
	}
	plain, err := s.crypto.Open(entry.Content)
	if err != nil {
		return err
	}
	entry.Content = plain
	return nil
}
