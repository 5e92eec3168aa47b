package cassandra

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/gocql/gocql"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type Options struct {
	Hosts             []string
	Keyspace          string
	Username          string
	Password          string
	Timeout           time.Duration
	ReplicationFactor int
}

// NewSession ensures schema exists and returns a connected Cassandra session.
func NewSession(opts Options, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(opts.Keyspace) {
		return nil, fmt.Errorf("invalid keyspace name: %s", opts.Keyspace)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.ReplicationFactor <= 0 {
		opts.ReplicationFactor = 1
	}

	baseCluster := gocql.NewCluster(opts.Hosts...)
	baseCluster.Timeout = opts.Timeout
	baseCluster.Consistency = gocql.Quorum
	setAuth(baseCluster, opts)

	baseSession, err := baseCluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}
	defer baseSession.Close()

	if err := ensureKeyspace(context.Background(), baseSession, opts); err != nil {
		return nil, err
	}

	cluster := gocql.NewCluster(opts.Hosts...)
	cluster.Timeout = opts.Timeout
	cluster.Keyspace = opts.Keyspace
	cluster.Consistency = gocql.Quorum
	setAuth(cluster, opts)

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", opts.Keyspace, err)
	}
	if err := ensureTables(context.Background(), session, opts); err != nil {
		session.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("cassandra connected", "hosts", opts.Hosts, "keyspace", opts.Keyspace)
	}
	return session, nil
}

func ensureKeyspace(ctx context.Context, session *gocql.Session, opts Options) error {
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		opts.Keyspace, opts.ReplicationFactor,
	)
	if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}
	return nil
}

func ensureTables(ctx context.Context, session *gocql.Session, opts Options) error {
	statements := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.schedule_versions (
	accommodation_id text PRIMARY KEY,
	host_id text,
	version bigint
);`, opts.Keyspace),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.periods_by_accommodation (
	accommodation_id text,
	period_id text,
	start_date timestamp,
	end_date timestamp,
	price double,
	pricing_mode text,
	created_at timestamp,
	PRIMARY KEY ((accommodation_id), period_id)
);`, opts.Keyspace),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.occupancy_by_period (
	accommodation_id text,
	period_id text,
	reservation_id text,
	start_date timestamp,
	end_date timestamp,
	PRIMARY KEY ((accommodation_id), period_id, reservation_id)
);`, opts.Keyspace),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.reservations_by_id (
	id text PRIMARY KEY,
	accommodation_id text,
	period_id text,
	guest_id text,
	start_date timestamp,
	end_date timestamp,
	guest_number int,
	price double,
	created_at timestamp
);`, opts.Keyspace),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.reservations_by_period (
	period_id text,
	start_date timestamp,
	id text,
	accommodation_id text,
	guest_id text,
	end_date timestamp,
	guest_number int,
	price double,
	created_at timestamp,
	PRIMARY KEY ((period_id), start_date, id)
) WITH CLUSTERING ORDER BY (start_date ASC, id DESC);`, opts.Keyspace),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.reservations_by_guest (
	guest_id text,
	start_date timestamp,
	id text,
	accommodation_id text,
	period_id text,
	end_date timestamp,
	guest_number int,
	price double,
	created_at timestamp,
	PRIMARY KEY ((guest_id), start_date, id)
) WITH CLUSTERING ORDER BY (start_date ASC, id DESC);`, opts.Keyspace),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.reservations_by_accommodation (
	accommodation_id text,
	end_date timestamp,
	id text,
	period_id text,
	guest_id text,
	start_date timestamp,
	guest_number int,
	price double,
	created_at timestamp,
	PRIMARY KEY ((accommodation_id), end_date, id)
) WITH CLUSTERING ORDER BY (end_date DESC, id DESC);`, opts.Keyspace),
	}
	for _, cql := range statements {
		if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func setAuth(cluster *gocql.ClusterConfig, opts Options) {
	if opts.Username == "" {
		return
	}
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: opts.Username,
		Password: opts.Password,
	}
	cluster.ConnectTimeout = opts.Timeout
	cluster.Timeout = opts.Timeout
}
