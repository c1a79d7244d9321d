package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) write(content string) string {
	path := filepath.Join(s.dir, "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ConfigTestSuite) TestLoad_ExpandsEnvironment() {
	s.T().Setenv("TEST_DB_HOST", "db.internal")
	s.T().Setenv("TEST_DB_PASSWORD", "hunter2")

	path := s.write(`
database:
  host: ${TEST_DB_HOST}
  port: 5432
  user: sync
  password: ${TEST_DB_PASSWORD}
  dbname: attractions
  sslmode: disable
source:
  kind: tat_csv
  url: https://example.test/data.csv
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("db.internal", cfg.Database.Host)
	s.Equal("hunter2", cfg.Database.Password)
	s.Equal("tat_csv", cfg.Source.Kind)
	s.Contains(cfg.Database.DSN(), "host=db.internal")
	s.Contains(cfg.Database.DSN(), "password=hunter2")
}

func (s *ConfigTestSuite) TestLoad_AppliesDefaults() {
	path := s.write(`
database:
  host: localhost
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("jsonapi", cfg.Source.Kind)
	s.Equal(20, cfg.Source.PageSize)
	s.Equal(100, cfg.Source.MaxPages)
	s.Equal(4, cfg.Source.Retry.MaxAttempts)
	s.Equal(time.Second, cfg.Source.Retry.InitialBackoff)
	s.Equal(60*time.Second, cfg.Source.Retry.MaxBackoff)
	s.Equal(24*time.Hour, cfg.Sync.FullInterval)
	s.Equal(time.Hour, cfg.Sync.IncrementalInterval)
	s.Equal(10, cfg.Sync.KeepVersions)
	s.Equal(100, cfg.Sync.BatchSize)
	s.Equal("info", cfg.LogLevel)
	s.Equal("attraction_sync", cfg.RabbitMQ.Exchange)
}

func (s *ConfigTestSuite) TestLoad_ExplicitValuesWin() {
	path := s.write(`
sync:
  full_interval: 6h
  incremental_interval: 15m
  keep_versions: 25
  batch_size: 500
source:
  page_size: 50
  timeout: 10s
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal(6*time.Hour, cfg.Sync.FullInterval)
	s.Equal(15*time.Minute, cfg.Sync.IncrementalInterval)
	s.Equal(25, cfg.Sync.KeepVersions)
	s.Equal(500, cfg.Sync.BatchSize)
	s.Equal(50, cfg.Source.PageSize)
	s.Equal(10*time.Second, cfg.Source.Timeout)
}

func (s *ConfigTestSuite) TestLoad_MissingFile() {
	_, err := Load(filepath.Join(s.dir, "absent.yaml"))
	s.Error(err)
}

func (s *ConfigTestSuite) TestLoad_InvalidYAML() {
	path := s.write("database: [not a mapping")
	_, err := Load(path)
	s.Error(err)
}
