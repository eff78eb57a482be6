package buildcache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
)

const (
	ManifestFile = ".dashboardr-manifest.db"
	pagesBucket  = "pages"
	lockTimeout  = time.Second
)

// ErrManifestLocked файл манифеста занят другим процессом
var ErrManifestLocked = errors.New("build manifest is locked by another process")

// Manifest хеши конфигураций страниц прошлой сборки
type Manifest struct {
	Pages map[string]string
}

func NewManifest() *Manifest {
	return &Manifest{Pages: make(map[string]string)}
}

// Set запоминает хеш страницы
func (m *Manifest) Set(page, hash string) {
	if m.Pages == nil {
		m.Pages = make(map[string]string)
	}
	m.Pages[page] = hash
}

// ComputeHash xxhash64 от JSON-представления конфигурации.
// encoding/json сортирует ключи словарей, так что хеш не зависит от порядка.
func ComputeHash(pageConfig interface{}) (string, error) {
	b, err := json.Marshal(pageConfig)
	if err != nil {
		return "", errors.Wrap(err, "encode page config")
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b)), nil
}

// HashFile xxhash64 содержимого файла
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "hash %s", path)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func openDB(dir string) (*bolt.DB, error) {
	db, err := bolt.Open(filepath.Join(dir, ManifestFile), 0600, &bolt.Options{Timeout: lockTimeout})
	if err == bolt.ErrTimeout {
		return nil, ErrManifestLocked
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest")
	}
	return db, nil
}

// LoadManifest читает манифест из каталога сборки; nil, если его ещё нет
func LoadManifest(dir string) (*Manifest, error) {
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); os.IsNotExist(err) {
		return nil, nil
	}
	db, err := openDB(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	m := NewManifest()
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pagesBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			m.Pages[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	return m, nil
}

// SaveManifest полностью заменяет сохранённый манифест
func SaveManifest(m *Manifest, dir string) error {
	if m == nil {
		return errors.New("nil manifest")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	db, err := openDB(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(pagesBucket)) != nil {
			if err := tx.DeleteBucket([]byte(pagesBucket)); err != nil {
				return errors.Wrap(err, "clearing pages bucket")
			}
		}
		b, err := tx.CreateBucket([]byte(pagesBucket))
		if err != nil {
			return errors.Wrap(err, "creating pages bucket")
		}
		for page, hash := range m.Pages {
			if err := b.Put([]byte(page), []byte(hash)); err != nil {
				return errors.Wrapf(err, "putting %s", page)
			}
		}
		return nil
	})
	return errors.Wrap(err, "writing manifest")
}

// NeedsRebuild страницу надо пересобрать, если манифеста нет,
// хеш не считается или не совпадает с сохранённым
func NeedsRebuild(page string, pageConfig interface{}, m *Manifest) bool {
	if m == nil {
		return true
	}
	hash, err := ComputeHash(pageConfig)
	if err != nil {
		return true
	}
	prev, ok := m.Pages[page]
	return !ok || prev != hash
}
