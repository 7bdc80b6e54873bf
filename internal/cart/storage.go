package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidQuantity is returned when a line is added with a quantity below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Storage persists the cart between sessions.
type Storage interface {
	Load() (*Cart, error)
	Save(c *Cart) error
}

// FileStorage keeps the cart as a JSON file.
type FileStorage struct {
	path string
}

// NewFileStorage stores the cart at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load returns the saved cart, or an empty one when nothing was saved yet.
func (s *FileStorage) Load() (*Cart, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", s.path, err)
	}
	c.recompute()
	return &c, nil
}

// Save writes the cart, replacing the previous snapshot atomically.
func (s *FileStorage) Save(c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cart-*")
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Store couples a cart with its storage, saving after every change.
type Store struct {
	cart    *Cart
	storage Storage
}

// Open rehydrates the cart from storage.
func Open(storage Storage) (*Store, error) {
	c, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Store{cart: c, storage: storage}, nil
}

// Cart returns the current cart.
func (s *Store) Cart() *Cart { return s.cart }

// Add puts item in the cart and saves it.
func (s *Store) Add(item Item) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("%s: %w", item.ID, ErrInvalidQuantity)
	}
	s.cart.Add(item)
	return s.storage.Save(s.cart)
}

// Remove drops a line and saves the cart.
func (s *Store) Remove(id string) error {
	s.cart.Remove(id)
	return s.storage.Save(s.cart)
}

// SetQuantity changes a line's quantity and saves the cart. Zero removes it.
func (s *Store) SetQuantity(id string, quantity int) error {
	s.cart.SetQuantity(id, quantity)
	return s.storage.Save(s.cart)
}

// Clear empties the cart and saves it.
func (s *Store) Clear() error {
	s.cart.Clear()
	return s.storage.Save(s.cart)
}
