package chain

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// cacheDirectoryName is the directory created within the configured cache directory to hold the chain database.
const cacheDirectoryName = ".solinkcache"

// chainsBucket is the bbolt bucket chain detection results are stored in.
var chainsBucket = []byte("chains")

// cachedChain is the persisted form of a detection result. Only the identity of the chain is stored; the rest is read
// back from SupportedChains so table updates take effect.
type cachedChain struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// persistentChainCache stores chain detection results per endpoint on disk.
type persistentChainCache struct {
	db *bbolt.DB
}

// newPersistentChainCache opens (or creates) the chain cache database within workingDir.
func newPersistentChainCache(workingDir string) (*persistentChainCache, error) {
	cacheDir := filepath.Join(workingDir, cacheDirectoryName)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(cacheDir, "chains.db"), 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open chain cache: %w", err)
	}

	// create default bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(chainsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &persistentChainCache{db: db}, nil
}

// get returns the cached chain for endpoint. The boolean is false on a cache miss, or when the cached chain is no
// longer in SupportedChains.
func (p *persistentChainCache) get(endpoint string) (*Chain, bool, error) {
	var entry *cachedChain
	err := p.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(chainsBucket).Get(endpointKey(endpoint))
		if data == nil {
			return nil
		}
		entry = &cachedChain{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, false, fmt.Errorf("could not read chain cache: %w", err)
	}
	if entry == nil {
		return nil, false, nil
	}

	c, ok := getChainByIDAndName(entry.ID, entry.Name)
	return c, ok, nil
}

// put stores the chain detected for endpoint.
func (p *persistentChainCache) put(endpoint string, c *Chain) error {
	data, err := json.Marshal(cachedChain{ID: c.ID, Name: c.Name})
	if err != nil {
		return err
	}
	return p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(chainsBucket).Put(endpointKey(endpoint), data)
	})
}

// close closes the underlying database.
func (p *persistentChainCache) close() error {
	return p.db.Close()
}

// endpointKey derives the cache key for an endpoint, so credentials embedded in URLs are not stored in plain text.
func endpointKey(endpoint string) []byte {
	h := sha256.Sum256([]byte(endpoint))
	return h[:]
}
