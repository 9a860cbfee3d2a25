package database

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/xelth-com/shopdeskgo/internal/config"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultEmbeddedDir  = "./db_data"
	defaultEmbeddedPort = 5433
	embeddedPassword    = "postgres"
)

// DB is a gorm handle that also owns the embedded server, if one was started
type DB struct {
	*gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
}

// EmbeddedOptions says where an embedded server keeps its files and listens
type EmbeddedOptions struct {
	DataDir    string
	RuntimeDir string // empty uses the library default
	Port       uint32
}

func defaultEmbeddedOptions() EmbeddedOptions {
	return EmbeddedOptions{DataDir: defaultEmbeddedDir, Port: defaultEmbeddedPort}
}

// IsEmbedded reports whether cfg selects the embedded database (localhost without password)
func IsEmbedded(cfg config.DatabaseConfig) bool {
	return cfg.Host == "localhost" && cfg.Password == ""
}

// DSN builds the postgres connection string
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
}

// Connect opens the configured database. A localhost config without a
// password boots the embedded server under ./db_data first.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	if !IsEmbedded(cfg) {
		logger.Logger.Info().Str("host", cfg.Host).Str("port", cfg.Port).Msg("🌐 Mode: [External PostgreSQL]")
		return Open(cfg, nil)
	}

	logger.Logger.Info().Msg("📦 Mode: [Embedded PostgreSQL] - Initializing internal database...")
	server, cfg, err := StartEmbedded(cfg, defaultEmbeddedOptions())
	if err != nil {
		return nil, err
	}
	return Open(cfg, server)
}

// StartEmbedded boots a local PostgreSQL for cfg's database and user and
// returns cfg rewritten to reach it.
func StartEmbedded(cfg config.DatabaseConfig, opts EmbeddedOptions) (*embeddedpostgres.EmbeddedPostgres, config.DatabaseConfig, error) {
	reapStalePostmaster(opts.DataDir)
	if err := waitForPortRelease(int(opts.Port)); err != nil {
		return nil, cfg, err
	}

	pgCfg := embeddedpostgres.DefaultConfig().
		DataPath(opts.DataDir).
		Port(opts.Port).
		Database(cfg.Database).
		Username(cfg.Username).
		Password(embeddedPassword)
	if opts.RuntimeDir != "" {
		pgCfg = pgCfg.RuntimePath(opts.RuntimeDir)
	}

	server := embeddedpostgres.NewDatabase(pgCfg)
	if err := server.Start(); err != nil {
		return nil, cfg, fmt.Errorf("failed to start embedded database: %w", err)
	}

	cfg.Host = "localhost"
	cfg.Port = strconv.Itoa(int(opts.Port))
	cfg.Password = embeddedPassword
	logger.Logger.Info().Uint32("port", opts.Port).Msg("✅ Embedded PostgreSQL process started")
	return server, cfg, nil
}

// Open connects gorm to cfg. The returned DB stops server on Close.
func Open(cfg config.DatabaseConfig, server *embeddedpostgres.EmbeddedPostgres) (*DB, error) {
	level := gormlogger.Warn
	if cfg.Alter {
		level = gormlogger.Silent
	}

	gdb, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		if server != nil {
			_ = server.Stop()
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if pool, err := gdb.DB(); err == nil {
		pool.SetMaxIdleConns(10)
		pool.SetMaxOpenConns(50)
		pool.SetConnMaxLifetime(time.Hour)
	}

	logger.Logger.Info().Msg("✅ Database connection established")
	return &DB{DB: gdb, embedded: server}, nil
}

// Close releases the pool, then stops the embedded server if there is one
func (db *DB) Close() error {
	if db.embedded != nil {
		logger.Logger.Info().Msg("🛑 Stopping Embedded PostgreSQL process...")
		defer func() { _ = db.embedded.Stop() }()
	}

	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// AutoMigrate triggers GORM schema synchronization
func (db *DB) AutoMigrate(models ...interface{}) error {
	return db.DB.AutoMigrate(models...)
}

// reapStalePostmaster removes a postmaster.pid left behind by a crashed run,
// stopping the recorded process first if it is still alive.
func reapStalePostmaster(dataDir string) {
	log := logger.Logger
	pidFile := filepath.Join(dataDir, "postmaster.pid")

	pid, ok := readPostmasterPID(pidFile)
	if !ok {
		return
	}
	defer os.Remove(pidFile)

	proc, err := os.FindProcess(pid)
	if err != nil || !processAlive(proc) {
		log.Info().Int("pid", pid).Msg("🧹 Removing stale postmaster.pid")
		return
	}

	log.Warn().Int("pid", pid).Msg("⚠️ Orphaned PostgreSQL process found, sending SIGTERM")
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		log.Warn().Err(err).Int("pid", pid).Msg("⚠️ SIGTERM failed")
	}
	for i := 0; i < 10; i++ {
		time.Sleep(500 * time.Millisecond)
		if !processAlive(proc) {
			log.Info().Int("pid", pid).Msg("✅ Orphaned PostgreSQL process stopped")
			return
		}
	}

	log.Warn().Int("pid", pid).Msg("⚠️ Still running after SIGTERM, killing")
	_ = proc.Kill()
	time.Sleep(500 * time.Millisecond)
}

// readPostmasterPID returns the pid on the first line of pidFile
func readPostmasterPID(pidFile string) (int, bool) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, false
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return 0, false
	}
	pid, err := strconv.Atoi(string(bytes.TrimSpace(scanner.Bytes())))
	if err != nil {
		logger.Logger.Warn().Err(err).Str("file", pidFile).Msg("⚠️ Unreadable postmaster.pid")
		return 0, false
	}
	return pid, true
}

// processAlive probes with signal 0; FindProcess alone always succeeds on Unix
func processAlive(proc *os.Process) bool {
	return proc.Signal(syscall.Signal(0)) == nil
}

func portInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// waitForPortRelease gives a previous server up to three seconds to let go of port
func waitForPortRelease(port int) error {
	if !portInUse(port) {
		return nil
	}
	logger.Logger.Warn().Int("port", port).Msg("⚠️ Port still in use, waiting for release")
	for i := 0; i < 6; i++ {
		time.Sleep(500 * time.Millisecond)
		if !portInUse(port) {
			return nil
		}
	}
	return fmt.Errorf("port %d is still in use by another process", port)
}
