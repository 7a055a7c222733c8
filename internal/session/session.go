// Package session persists the store-staff session across app restarts: the
// auth token and the last store the user explicitly selected. Only the
// store-selection flow writes the selected store and only the redemption
// flow reads it; other features get no accessor for it.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type sessionData struct {
	Token               string `json:"token,omitempty"`
	LastSelectedStoreID string `json:"lastSelectedStoreId,omitempty"`
}

type Store struct {
	mu       sync.RWMutex
	dataFile string
	data     sessionData
}

// Open loads the session file, creating an empty one if absent.
func Open(dataFile string) (*Store, error) {
	st := &Store{dataFile: dataFile}
	if err := st.loadFromFile(); err != nil {
		return st, err
	}
	return st, nil
}

func (st *Store) loadFromFile() error {
	file, err := os.OpenFile(st.dataFile, os.O_RDONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	if err := json.NewDecoder(file).Decode(&st.data); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}
	return nil
}

func (st *Store) saveToFile() error {
	file, err := os.OpenFile(st.dataFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(st.data)
}

func (st *Store) Token() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.data.Token
}

func (st *Store) SetToken(token string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.data.Token = token
	return st.saveToFile()
}

// LastSelectedStore returns the active store id or "" if none was picked.
func (st *Store) LastSelectedStore() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.data.LastSelectedStoreID
}

func (st *Store) SetLastSelectedStore(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.data.LastSelectedStoreID = id
	return st.saveToFile()
}

// Logout is the only operation that implicitly clears the selected store.
func (st *Store) Logout() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.data = sessionData{}
	return st.saveToFile()
}
