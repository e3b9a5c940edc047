package db

import (
	"fmt"

	"github.com/gocql/gocql"

	"github.com/acme/lead-outreach/internal/config"
)

// Scylla holds the session used by the interaction event log.
type Scylla struct {
	session *gocql.Session
}

// NewScylla connects to the cluster. Unknown consistency names fall back to
// quorum rather than failing bootstrap.
func NewScylla(cfg config.ScyllaConfig) (*Scylla, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.Timeout = cfg.Timeout
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 3}

	consistency, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
	if err != nil {
		consistency = gocql.Quorum
	}
	cluster.Consistency = consistency

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla: create session: %w", err)
	}

	return &Scylla{session: session}, nil
}

// Session exposes the gocql session.
func (s *Scylla) Session() *gocql.Session {
	return s.session
}

// Close shuts down the session.
func (s *Scylla) Close() error {
	if s.session != nil {
		s.session.Close()
	}
	return nil
}
