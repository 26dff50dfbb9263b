package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

// mockStore hands every repository accessor a testify mock and runs ExecTx
// callbacks against itself, so transactional code paths are exercised without
// a database.
type mockStore struct {
	users         *MockUserRepo
	sections      *MockSectionRepo
	products      *MockProductRepo
	reservations  *MockReservationRepo
	movements     *MockMovementRepo
	ledger        *MockLedgerRepo
	notifications *MockNotificationRepo
	audit         *MockAuditRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		users:         new(MockUserRepo),
		sections:      new(MockSectionRepo),
		products:      new(MockProductRepo),
		reservations:  new(MockReservationRepo),
		movements:     new(MockMovementRepo),
		ledger:        new(MockLedgerRepo),
		notifications: new(MockNotificationRepo),
		audit:         new(MockAuditRepo),
	}
}

func (s *mockStore) Users() repository.UserRepository                 { return s.users }
func (s *mockStore) Sections() repository.SectionRepository           { return s.sections }
func (s *mockStore) Products() repository.ProductRepository           { return s.products }
func (s *mockStore) Reservations() repository.ReservationRepository   { return s.reservations }
func (s *mockStore) Movements() repository.MovementRepository         { return s.movements }
func (s *mockStore) Ledger() repository.LedgerRepository              { return s.ledger }
func (s *mockStore) Notifications() repository.NotificationRepository { return s.notifications }
func (s *mockStore) Audit() repository.AuditRepository                { return s.audit }

func (s *mockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) DisableInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockSectionRepo
type MockSectionRepo struct {
	mock.Mock
}

func (m *MockSectionRepo) Create(ctx context.Context, section *domain.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}
func (m *MockSectionRepo) GetByID(ctx context.Context, id int32) (*domain.Section, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Section), args.Error(1)
}
func (m *MockSectionRepo) List(ctx context.Context) ([]domain.Section, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Section), args.Error(1)
}
func (m *MockSectionRepo) Update(ctx context.Context, section *domain.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}
func (m *MockSectionRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockSectionRepo) CreateClosure(ctx context.Context, closure *domain.SectionClosure) error {
	args := m.Called(ctx, closure)
	return args.Error(0)
}
func (m *MockSectionRepo) DeleteClosure(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockSectionRepo) ClosuresInRange(ctx context.Context, sectionID int32, start, end time.Time) ([]domain.SectionClosure, error) {
	args := m.Called(ctx, sectionID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SectionClosure), args.Error(1)
}
func (m *MockSectionRepo) DeleteClosuresEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}
func (m *MockProductRepo) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}
func (m *MockProductRepo) UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockProductRepo) ListBySection(ctx context.Context, sectionID int32, page, pageSize int32) ([]domain.Product, int32, error) {
	args := m.Called(ctx, sectionID, page, pageSize)
	return args.Get(0).([]domain.Product), args.Get(1).(int32), args.Error(2)
}
func (m *MockProductRepo) SetLastMovement(ctx context.Context, id int32, condition domain.ProductCondition, at time.Time) error {
	args := m.Called(ctx, id, condition, at)
	return args.Error(0)
}
func (m *MockProductRepo) Lock(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) FindOverlapping(ctx context.Context, productID int32, start, end time.Time, excludeID *int32) ([]domain.Reservation, error) {
	args := m.Called(ctx, productID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) FindBlockingInMonth(ctx context.Context, productID int32, monthStart, monthEnd time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, productID, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.ReservationStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) MarkRefunded(ctx context.Context, id int32, amount int32) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}
func (m *MockReservationRepo) ApplyExtension(ctx context.Context, id int32, newEnd time.Time, addedCost int32) error {
	args := m.Called(ctx, id, newEnd, addedCost)
	return args.Error(0)
}
func (m *MockReservationRepo) UpdateAdminNotes(ctx context.Context, id int32, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}
func (m *MockReservationRepo) ListByUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListByProduct(ctx context.Context, productID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, productID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListEndingOn(ctx context.Context, date time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// MockMovementRepo
type MockMovementRepo struct {
	mock.Mock
}

func (m *MockMovementRepo) Create(ctx context.Context, mv *domain.ProductMovement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}
func (m *MockMovementRepo) GetByID(ctx context.Context, id int32) (*domain.ProductMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductMovement), args.Error(1)
}
func (m *MockMovementRepo) ListByReservation(ctx context.Context, reservationID int32) ([]domain.ProductMovement, error) {
	args := m.Called(ctx, reservationID)
	return args.Get(0).([]domain.ProductMovement), args.Error(1)
}
func (m *MockMovementRepo) ListByProduct(ctx context.Context, productID int32, page, pageSize int32) ([]domain.ProductMovement, int32, error) {
	args := m.Called(ctx, productID, page, pageSize)
	return args.Get(0).([]domain.ProductMovement), args.Get(1).(int32), args.Error(2)
}
func (m *MockMovementRepo) CountByReservationAndType(ctx context.Context, reservationID int32, movementType domain.MovementType) (int32, error) {
	args := m.Called(ctx, reservationID, movementType)
	return args.Get(0).(int32), args.Error(1)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) GetBalanceForUpdate(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockLedgerRepo) GetBalance(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockLedgerRepo) UpdateBalance(ctx context.Context, userID int32, balance int32) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}
func (m *MockLedgerRepo) CreateTransaction(ctx context.Context, tx *domain.CreditTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockLedgerRepo) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.CreditTransaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.CreditTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedgerRepo) GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockAuditRepo) ListByTarget(ctx context.Context, targetType string, targetID int32, page, pageSize int32) ([]domain.AuditEntry, int32, error) {
	args := m.Called(ctx, targetType, targetID, page, pageSize)
	return args.Get(0).([]domain.AuditEntry), args.Get(1).(int32), args.Error(2)
}

// MockQRCodec
type MockQRCodec struct {
	mock.Mock
}

func (m *MockQRCodec) GenerateReservationCode(reservationID int32) (string, error) {
	args := m.Called(reservationID)
	return args.String(0), args.Error(1)
}
func (m *MockQRCodec) VerifyReservationCode(payload string) (int32, error) {
	args := m.Called(payload)
	return args.Get(0).(int32), args.Error(1)
}

// nopAudit and nopNotifier satisfy the post-commit sinks without assertions.
type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, entry domain.AuditEntry) {}

type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, userID int32, notifType, title, message string, attrs map[string]string) {
}
