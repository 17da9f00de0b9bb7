package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/config"
)

// collectionKey holds the whole configuration collection as one JSON value.
// Saves replace the collection wholesale, so partial writes cannot leave a
// mixed old/new state behind.
const collectionKey = "all"

// Manager provides a unified interface for storage operations. It implements
// config.Store.
type Manager struct {
	db     *BoltDB
	mu     sync.RWMutex
	logger *zap.SugaredLogger
}

// NewManager opens the database under dataDir and returns a storage manager.
func NewManager(dataDir string, logger *zap.SugaredLogger) (*Manager, error) {
	db, err := NewBoltDB(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create bolt database: %w", err)
	}

	return &Manager{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the storage manager
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Save replaces the stored configuration collection.
func (m *Manager) Save(configs config.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(configs)
	if err != nil {
		return fmt.Errorf("failed to marshal configurations: %w", err)
	}

	err = m.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ConfigurationsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", ConfigurationsBucket)
		}
		return bucket.Put([]byte(collectionKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save configurations: %w", err)
	}

	m.logger.Debugw("Saved configuration collection", "count", len(configs))
	return nil
}

// Load returns the stored configuration collection. A fresh database yields
// an empty collection, not an error.
func (m *Manager) Load() (config.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var configs config.Collection
	err := m.db.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ConfigurationsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", ConfigurationsBucket)
		}

		data := bucket.Get([]byte(collectionKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &configs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configurations: %w", err)
	}

	return configs, nil
}

// SaveTabs replaces the custom tabs of one configuration.
func (m *Manager) SaveTabs(configID uuid.UUID, tabs []config.CustomTab) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(tabs)
	if err != nil {
		return fmt.Errorf("failed to marshal tabs: %w", err)
	}

	err = m.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(TabsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", TabsBucket)
		}
		return bucket.Put([]byte(configID.String()), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save tabs: %w", err)
	}
	return nil
}

// LoadTabs returns the custom tabs of one configuration.
func (m *Manager) LoadTabs(configID uuid.UUID) ([]config.CustomTab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tabs []config.CustomTab
	err := m.db.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(TabsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", TabsBucket)
		}

		data := bucket.Get([]byte(configID.String()))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &tabs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tabs: %w", err)
	}
	return tabs, nil
}

// SaveSelectedEntities replaces the visible entity selection of one
// configuration.
func (m *Manager) SaveSelectedEntities(configID uuid.UUID, entityIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(entityIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal entity selection: %w", err)
	}

	err = m.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SelectionsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", SelectionsBucket)
		}
		return bucket.Put([]byte(configID.String()), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save entity selection: %w", err)
	}
	return nil
}

// LoadSelectedEntities returns the visible entity selection of one
// configuration. Nil means no selection was ever saved, so every entity
// should be shown.
func (m *Manager) LoadSelectedEntities(configID uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entityIDs []string
	err := m.db.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SelectionsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", SelectionsBucket)
		}

		data := bucket.Get([]byte(configID.String()))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &entityIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load entity selection: %w", err)
	}
	return entityIDs, nil
}

// DeleteConfigurationData removes tabs and selections of a removed
// configuration.
func (m *Manager) DeleteConfigurationData(configID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(configID.String())
		for _, name := range []string{TabsBucket, SelectionsBucket} {
			bucket := tx.Bucket([]byte(name))
			if bucket == nil {
				continue
			}
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete from bucket %s: %w", name, err)
			}
		}
		return nil
	})
}
