package testutil

import (
	"context"
	"time"

	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/flexprice/orderlimit/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository fakes for testing
type Stores struct {
	LimitRuleRepo *InMemoryLimitRuleStore
	CatalogRepo   *InMemoryCatalogStore
	OrderRepo     *InMemoryOrderStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     *MockPostgresClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	// no backoff delays in tests beyond one retry
	cfg.Limit.HistoryRetries = 1
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Date(2024, time.May, 17, 10, 30, 0, 0, time.UTC)
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	catalogStore := NewInMemoryCatalogStore()
	s.stores = Stores{
		LimitRuleRepo: NewInMemoryLimitRuleStore(),
		CatalogRepo:   catalogStore,
		OrderRepo:     NewInMemoryOrderStore(catalogStore),
	}
	s.db = NewMockPostgresClient(s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.LimitRuleRepo.Clear()
	s.stores.CatalogRepo.Clear()
	s.stores.OrderRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the fixed evaluation instant of the test
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// SetNow moves the fixed evaluation instant
func (s *BaseServiceTestSuite) SetNow(now time.Time) {
	s.now = now
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
