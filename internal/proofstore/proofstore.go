// Package proofstore хранит подтверждения оплаты как непрозрачные объекты.
// Ключ объекта всегда начинается с идентификатора заявителя, поэтому файлы
// разных пользователей не пересекаются. Сохранение выполняется до записи
// строки заявки: при ошибке подачa завершается целиком.
package proofstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store сохраняет и открывает объекты подтверждений на локальном диске.
type Store struct {
	baseDir string
}

// New создает хранилище в каталоге baseDir, создавая его при необходимости.
func New(baseDir string) (*Store, error) {
	const op = "proofstore.New"
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save записывает содержимое под новым ключом вида <userID>/<uuid><ext>
// и возвращает ключ. Расширение берется из исходного имени файла.
func (s *Store) Save(userID string, filename string, data []byte) (string, error) {
	const op = "proofstore.Save"

	ext := strings.ToLower(filepath.Ext(filename))
	key := filepath.Join(userID, uuid.New().String()+ext)

	dir := filepath.Join(s.baseDir, userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, key), data, 0o640); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}

// Open возвращает содержимое объекта по ключу.
func (s *Store) Open(key string) ([]byte, error) {
	const op = "proofstore.Open"

	// Ключ не должен выводить за пределы каталога хранилища.
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("%s: invalid key %q", op, key)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}
