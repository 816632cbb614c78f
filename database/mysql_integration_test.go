//go:build integration

package database_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"movietracker/database"
	"movietracker/internal/config"
	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"
	"movietracker/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/gorm"
)

// Run with: go test -tags integration ./database/...
type MySQLIntegrationTestSuite struct {
	suite.Suite
	ctx    context.Context
	ctr    *tcmysql.MySQLContainer
	db     *gorm.DB
	logger *slog.Logger
}

// SetupSuite starts one MySQL container for every test in the suite
func (s *MySQLIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	ctr, err := tcmysql.Run(s.ctx, "mysql:8.0",
		tcmysql.WithDatabase("movietracker"),
		tcmysql.WithUsername("movietracker"),
		tcmysql.WithPassword("movietracker"),
	)
	s.ctr = ctr
	s.Require().NoError(err)

	dsn, err := ctr.ConnectionString(s.ctx, "parseTime=true")
	s.Require().NoError(err)

	cfg := &config.Config{DBDriver: "mysql", DatabaseURL: dsn, DBMaxOpenConns: 8, DBConnectAttempts: 5}
	s.db, err = database.ConnectDB(s.ctx, cfg, s.logger)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, s.db, s.logger))
}

func (s *MySQLIntegrationTestSuite) TearDownSuite() {
	if s.db != nil {
		_ = database.Close(s.db)
	}
	_ = testcontainers.TerminateContainer(s.ctr)
}

// SetupTest empties the tables so each test starts from a bare catalog
func (s *MySQLIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("DELETE FROM constituent_titles").Error)
	s.Require().NoError(s.db.Exec("DELETE FROM catalog_items").Error)
	s.Require().NoError(s.db.Exec("UPDATE watch_sequences SET last_claimed = 0").Error)
}

func (s *MySQLIntegrationTestSuite) newItem(title string) *models.CatalogItem {
	return &models.CatalogItem{
		Title: title, Format: models.FormatDVD, Is3D: models.No, DigitalType: models.DigitalNone,
		CaseType: models.CasePlain, Status: models.StatusOwned, Watched: models.No,
	}
}

func (s *MySQLIntegrationTestSuite) TestConcurrentToggleClaimsDistinctOrders() {
	repo := repository.NewCatalogItemRepository(s.db)
	const n = 16
	ids := make([]int64, n)
	for i := range ids {
		item := s.newItem("Item")
		s.Require().NoError(repo.Create(s.ctx, item))
		ids[i] = item.ID
	}

	var wg sync.WaitGroup
	orders := make(chan int64, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			item, err := repo.ToggleWatched(s.ctx, id)
			if s.NoError(err) && s.NotNil(item.WatchOrder) {
				orders <- *item.WatchOrder
			}
		}(id)
	}
	wg.Wait()
	close(orders)

	seen := map[int64]bool{}
	for o := range orders {
		s.False(seen[o], "watch order %d handed out twice", o)
		seen[o] = true
	}
	s.Len(seen, n)
}

func (s *MySQLIntegrationTestSuite) TestListFiltersByTitleSubstring() {
	repo := repository.NewCatalogItemRepository(s.db)
	for _, title := range []string{"Alien", "Aliens", "Alien 3", "Heat"} {
		s.Require().NoError(repo.Create(s.ctx, s.newItem(title)))
	}

	title := "alien"
	params := query.Params{Sort: query.SortTitle, Order: query.Ascending, Page: 1}
	params.Filters.TitleContains = &title
	res, err := repo.List(s.ctx, params)
	s.Require().NoError(err)
	s.EqualValues(3, res.Total)
	s.Require().Len(res.Items, 3)
	s.Equal("Alien", res.Items[0].Title)
}

func (s *MySQLIntegrationTestSuite) TestImportAdvancesWatchSequence() {
	file := `[{"title": "Heat", "format": "DVD", "digital_type": "None", "case_type": "Plain",
	           "status": "Owned", "watched": "Y", "watch_order": 41}]`
	_, err := database.Import(s.ctx, s.db, strings.NewReader(file), s.logger)
	s.Require().NoError(err)

	repo := repository.NewCatalogItemRepository(s.db)
	item := s.newItem("Ronin")
	s.Require().NoError(repo.Create(s.ctx, item))

	toggled, err := repo.ToggleWatched(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Require().NotNil(toggled.WatchOrder)
	s.EqualValues(42, *toggled.WatchOrder)
}

func TestMySQLIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(MySQLIntegrationTestSuite))
}
