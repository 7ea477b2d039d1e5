package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/medassist/internal/core"
)

// Change records one mutation of a session's working set.
type Change struct {
	Op   string    `json:"op"` // add, remove, clear
	Key  string    `json:"key,omitempty"`
	At   time.Time `json:"at"`
}

// Context is the per-session working set. CurrentData holds only records
// returned by a retrieval agent in this session; the generation step reads
// it but never writes to it.
type Context struct {
	CurrentData map[string]core.DataItem
	Changes     []Change
}

// Store keeps per-session working sets behind a single lock. It is injected
// everywhere it is needed rather than held as package state, so tests get
// clean isolation.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Context
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Context),
	}
}

// Get returns a copy of the session's working set. Unknown session ids
// yield an empty context, never an error.
func (s *Store) Get(sessionID string) Context {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.sessions[sessionID]
	if !ok {
		return Context{CurrentData: map[string]core.DataItem{}}
	}

	out := Context{
		CurrentData: make(map[string]core.DataItem, len(sc.CurrentData)),
		Changes:     append([]Change(nil), sc.Changes...),
	}
	for k, v := range sc.CurrentData {
		out.CurrentData[k] = v
	}
	return out
}

func (s *Store) HasData(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.sessions[sessionID]
	return ok && len(sc.CurrentData) > 0
}

// Put stores one item, creating the session lazily on first write.
func (s *Store) Put(sessionID string, item core.DataItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sessions[sessionID]
	if !ok {
		sc = &Context{CurrentData: make(map[string]core.DataItem)}
		s.sessions[sessionID] = sc
	}
	sc.CurrentData[item.Key] = item
	sc.Changes = append(sc.Changes, Change{Op: "add", Key: item.Key, At: time.Now().UTC()})
}

func (s *Store) Remove(sessionID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if _, exists := sc.CurrentData[key]; !exists {
		return
	}
	delete(sc.CurrentData, key)
	sc.Changes = append(sc.Changes, Change{Op: "remove", Key: key, At: time.Now().UTC()})
}

func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	sc.CurrentData = make(map[string]core.DataItem)
	sc.Changes = append(sc.Changes, Change{Op: "clear", At: time.Now().UTC()})
}

func (s *Store) ItemCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.sessions[sessionID]
	if !ok {
		return 0
	}
	return len(sc.CurrentData)
}

// Items returns the working set ordered by key, so rendering is stable
// regardless of insertion order.
func (s *Store) Items(sessionID string) []core.DataItem {
	sc := s.Get(sessionID)

	keys := make([]string, 0, len(sc.CurrentData))
	for k := range sc.CurrentData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]core.DataItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, sc.CurrentData[k])
	}
	return items
}

// ItemsByType groups the working set for summaries, item types sorted.
func (s *Store) ItemsByType(sessionID string) map[string][]core.DataItem {
	grouped := make(map[string][]core.DataItem)
	for _, item := range s.Items(sessionID) {
		grouped[item.ItemType] = append(grouped[item.ItemType], item)
	}
	return grouped
}

// ExportJSON renders the working set as indented JSON keyed by item key.
func (s *Store) ExportJSON(sessionID string) (string, error) {
	items := s.Items(sessionID)

	out := make(map[string]any, len(items))
	for _, item := range items {
		out[item.Key] = map[string]any{
			"item_type":    item.ItemType,
			"value":        item.Value,
			"metadata":     item.Metadata,
			"added_at":     item.AddedAt,
			"source_query": item.SourceQuery,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export session data: %w", err)
	}
	return string(data), nil
}

// ExportTable renders the working set as a markdown table.
func (s *Store) ExportTable(sessionID string) string {
	items := s.Items(sessionID)
	if len(items) == 0 {
		return "No data in this session."
	}

	var b strings.Builder
	b.WriteString("| Key | Value | Type |\n")
	b.WriteString("|-----|-------|------|\n")
	for _, item := range items {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", item.Key, item.Value, item.ItemType)
	}
	return b.String()
}
