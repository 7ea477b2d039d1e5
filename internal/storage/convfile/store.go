package convfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sandevgo/medassist/internal/core"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Store persists one conversation per JSON file under a base directory.
// Round-trips are lossless so a reloaded window renders identically.
type Store struct {
	basePath string
}

func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) path(sessionID string) string {
	name := unsafeChars.ReplaceAllString(sessionID, "_")
	return filepath.Join(s.basePath, name+".json")
}

func (s *Store) Save(sessionID string, turns []core.ConversationTurn) error {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := os.WriteFile(s.path(sessionID), data, 0644); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	return nil
}

// Load returns the stored turns, or nil when no file exists yet.
func (s *Store) Load(sessionID string) ([]core.ConversationTurn, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var turns []core.ConversationTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return turns, nil
}

func (s *Store) Delete(sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
