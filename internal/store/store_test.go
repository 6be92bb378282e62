package store

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-backend/config"
	appdb "maintenance-backend/internal/db"
	"maintenance-backend/internal/filestore"
	"maintenance-backend/internal/model"
)

const testLowStock = 2

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every transaction on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := appdb.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, appdb.Migrate(gormDB, zap.NewNop()))
	return gormDB
}

type fixture struct {
	db     *gorm.DB
	store  *Store
	alerts *recordingAlerter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithFiles(t, filestore.NewDisk(t.TempDir(), zap.NewNop()))
}

func newFixtureWithFiles(t *testing.T, files filestore.FileStore) *fixture {
	t.Helper()

	gormDB := newTestDB(t)
	alerts := &recordingAlerter{}
	s := NewGormStore(gormDB, Options{
		Log:    zap.NewNop(),
		Files:  files,
		Alerts: alerts,
		Action: ActionStoreConfig{ImageDir: "action_images", LowStockThreshold: testLowStock},
	})
	return &fixture{db: gormDB, store: s, alerts: alerts}
}

func (f *fixture) user(t *testing.T) *model.User {
	t.Helper()
	u := model.User{Name: gofakeit.Name(), Email: strings.ToLower(gofakeit.UUID()) + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	return &u
}

func (f *fixture) part(t *testing.T, quantity int) *model.SparePart {
	t.Helper()
	p := model.SparePart{Code: gofakeit.UUID(), Name: gofakeit.Word(), Quantity: quantity}
	require.NoError(t, f.db.Create(&p).Error)
	return &p
}

func (f *fixture) report(t *testing.T, userID int64) *model.MachineReport {
	t.Helper()
	r := model.MachineReport{UserID: userID, MachineName: gofakeit.Word(), Status: MachineReportStatusOpen}
	require.NoError(t, f.db.Omit("User").Create(&r).Error)
	return &r
}

func (f *fixture) stock(t *testing.T, partID int64) int {
	t.Helper()
	var p model.SparePart
	require.NoError(t, f.db.First(&p, partID).Error)
	return p.Quantity
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

func actionInput(partID *int64, quantity int) ActionInput {
	return ActionInput{
		Status:      model.ActionPending,
		Description: gofakeit.Word(),
		Date:        time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		SparePartID: partID,
		Quantity:    quantity,
	}
}

func ptr(id int64) *int64 { return &id }

type recordingAlerter struct {
	mu    sync.Mutex
	parts []int64
}

func (a *recordingAlerter) Dispatch(sparePartID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parts = append(a.parts, sparePartID)
}

func (a *recordingAlerter) dispatched() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int64(nil), a.parts...)
}

// mockFileStore is a testify mock of filestore.FileStore.
type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) Save(ctx context.Context, dir, filename string, data io.Reader) (string, error) {
	args := m.Called(ctx, dir, filename, data)
	return args.String(0), args.Error(1)
}

func (m *mockFileStore) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}
