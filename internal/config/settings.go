// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrLockTimeout is returned when the settings lock cannot be taken in time.
var ErrLockTimeout = errors.New("configuration locked by another process")

const (
	lockTimeout      = 5 * time.Second
	lockPollInterval = 100 * time.Millisecond
)

// SettingsFile reads and writes settings.yaml under an exclusive flock so
// concurrent glidectl processes do not interleave writes.
type SettingsFile struct {
	path     string
	lockFile *os.File
}

// SettingsPath returns the default settings.yaml path.
func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// NewSettingsFile returns a SettingsFile for path, or for the default
// settings path when path is empty.
func NewSettingsFile(path string) (*SettingsFile, error) {
	if path == "" {
		var err error
		path, err = SettingsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings path: %w", err)
		}
	}
	return &SettingsFile{path: path}, nil
}

// Path returns the file location.
func (s *SettingsFile) Path() string {
	return s.path
}

// Lock takes the exclusive lock, polling until lockTimeout.
func (s *SettingsFile) Lock() error {
	lockPath := s.path + ".lock"

	if err := os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(lockTimeout)
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
			s.lockFile = lockFile
			return nil
		}
		if time.Now().After(deadline) {
			lockFile.Close()
			return ErrLockTimeout
		}
		<-ticker.C
	}
}

// Unlock releases the lock. It is a no-op when not locked.
func (s *SettingsFile) Unlock() error {
	if s.lockFile == nil {
		return nil
	}
	defer func() { s.lockFile = nil }()

	if err := syscall.Flock(int(s.lockFile.Fd()), syscall.LOCK_UN); err != nil {
		s.lockFile.Close()
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if err := s.lockFile.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}
	return nil
}

// Load reads the file. A missing file yields the defaults. The caller must
// hold the lock.
func (s *SettingsFile) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes cfg atomically via a temp file and rename. The caller must
// hold the lock.
func (s *SettingsFile) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the lock.
func (s *SettingsFile) WithLock(fn func() error) error {
	if err := s.Lock(); err != nil {
		return err
	}
	defer s.Unlock()

	return fn()
}

// Update loads the settings, applies fn, validates and saves, all under one
// lock. Nothing is written when fn or validation fails.
func (s *SettingsFile) Update(fn func(*Config) error) (*Config, error) {
	var cfg *Config
	err := s.WithLock(func() error {
		loaded, err := s.Load()
		if err != nil {
			return err
		}
		if err := fn(loaded); err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return s.Save(loaded)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSettings loads settings under the lock.
func LoadSettings(path string) (*Config, error) {
	sf, err := NewSettingsFile(path)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	err = sf.WithLock(func() error {
		var loadErr error
		cfg, loadErr = sf.Load()
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveSettings saves settings under the lock.
func SaveSettings(path string, cfg *Config) error {
	sf, err := NewSettingsFile(path)
	if err != nil {
		return err
	}
	return sf.WithLock(func() error {
		return sf.Save(cfg)
	})
}
