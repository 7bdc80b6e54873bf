package repositories

import (
	"errors"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStorage persists Fiber sessions in the user_sessions table. It
// satisfies fiber.Storage.
type SessionStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionStorage creates a session storage on top of db.
func NewSessionStorage(db *gorm.DB) *SessionStorage {
	return &SessionStorage{db: db, now: time.Now}
}

// Get returns the stored value, or nil when the key is missing or expired.
func (s *SessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	var row models.Session
	err := s.db.First(&row, "sid = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if row.ExpiresAt != 0 && row.ExpiresAt <= s.now().Unix() {
		// expired sessions are removed lazily
		if err := s.Delete(key); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return row.Data, nil
}

// Set stores val under key. A zero exp never expires.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	row := models.Session{SID: key, Data: val}
	if exp > 0 {
		row.ExpiresAt = s.now().Add(exp).Unix()
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sid"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&row).Error
}

// Delete removes key.
func (s *SessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.db.Delete(&models.Session{}, "sid = ?", key).Error
}

// Reset removes every session.
func (s *SessionStorage) Reset() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Session{}).Error
}

// Close is a no-op; the database handle is owned by the caller.
func (s *SessionStorage) Close() error {
	return nil
}
