// Package cassandra adapts internal/collab's SeenSet and BlobStore
// collaborator interfaces onto Apache Cassandra, the teacher's own storage
// backend (cassandra/datastore.go), repurposed from link/segment storage to
// this module's crawled-set and artefact-blob persistence.
package cassandra

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"

	"github.com/iParadigms/walker"
)

// Store is a Cassandra-backed implementation of collab.SeenSet and
// collab.BlobStore, sharing one session the way the teacher's Datastore
// shares one *gocql.Session across all of its methods.
type Store struct {
	db *gocql.Session
}

// NewStore opens a Cassandra session using walker.Config.Cassandra and
// returns a Store. Callers should call Close when done.
func NewStore() (*Store, error) {
	cluster := gocql.NewCluster(walker.Config.Cassandra.Hosts...)
	cluster.Keyspace = walker.Config.Cassandra.Keyspace
	timeout, err := time.ParseDuration(walker.Config.Cassandra.Timeout)
	if err != nil {
		return nil, fmt.Errorf("parse cassandra timeout: %w", err)
	}
	cluster.Timeout = timeout

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create cassandra session: %w", err)
	}
	return &Store{db: session}, nil
}

// Close releases the underlying session.
func (s *Store) Close() {
	s.db.Close()
}

// schema mirrors the teacher's schema.go convention of keeping DDL as Go
// string constants next to the code that uses them.
const (
	schemaCrawledSet = `CREATE TABLE IF NOT EXISTS crawled_urls (
		url text PRIMARY KEY
	)`
	schemaBlobs = `CREATE TABLE IF NOT EXISTS blobs (
		path text PRIMARY KEY,
		data blob
	)`
)

// CreateSchema issues the module's DDL; safe to call repeatedly (CREATE
// TABLE IF NOT EXISTS).
func (s *Store) CreateSchema() error {
	if err := s.db.Query(schemaCrawledSet).Exec(); err != nil {
		return fmt.Errorf("create crawled_urls table: %w", err)
	}
	if err := s.db.Query(schemaBlobs).Exec(); err != nil {
		return fmt.Errorf("create blobs table: %w", err)
	}
	return nil
}

// Contains implements collab.SeenSet's sismember semantics.
func (s *Store) Contains(key string) (bool, error) {
	var found string
	err := s.db.Query(`SELECT url FROM crawled_urls WHERE url = ?`, key).Scan(&found)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("url", key).Msg("cassandra sismember failed")
		return false, err
	}
	return true, nil
}

// Add implements collab.SeenSet's sadd semantics.
func (s *Store) Add(key string) error {
	if err := s.db.Query(`INSERT INTO crawled_urls (url) VALUES (?)`, key).Exec(); err != nil {
		log.Warn().Err(err).Str("url", key).Msg("cassandra sadd failed")
		return err
	}
	return nil
}

// Put implements collab.BlobStore.
func (s *Store) Put(path string, data []byte) error {
	if err := s.db.Query(`INSERT INTO blobs (path, data) VALUES (?, ?)`, path, data).Exec(); err != nil {
		return fmt.Errorf("put blob %s: %w", path, err)
	}
	return nil
}

// Get implements collab.BlobStore.
func (s *Store) Get(path string) ([]byte, error) {
	var data []byte
	err := s.db.Query(`SELECT data FROM blobs WHERE path = ?`, path).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", path, err)
	}
	return data, nil
}
