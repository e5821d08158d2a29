package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAvailability_SetAvailableIsOneStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityGormRepository(db)

	mock.ExpectExec(`UPDATE "availability_slots" SET .*"available"=.* WHERE staff_id = .* AND date = .* AND time_slot IN`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.SetAvailable(context.Background(), 4, "2025-06-02", []string{"14:00:00", "14:10:00", "14:20:00"}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_SetAvailableNothingToDo(t *testing.T) {
	db, mock := newMockDB(t)

	n, err := NewAvailabilityGormRepository(db).SetAvailable(context.Background(), 4, "2025-06-02", nil, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_InsertMissingSkipsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityGormRepository(db)

	mock.ExpectQuery(`INSERT INTO "availability_slots" .* ON CONFLICT \("staff_id","date","time_slot"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))

	n, err := repo.InsertMissing(context.Background(), []models.AvailabilitySlot{
		{StaffID: 1, Date: "2025-06-02", TimeSlot: "09:00:00", Available: true},
		{StaffID: 1, Date: "2025-06-02", TimeSlot: "09:10:00", Available: true},
		{StaffID: 1, Date: "2025-06-02", TimeSlot: "09:20:00", Available: true},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_DeleteBefore(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM "availability_slots" WHERE date <`).
		WithArgs("2025-05-01").
		WillReturnResult(sqlmock.NewResult(0, 96))

	n, err := NewAvailabilityGormRepository(db).DeleteBefore(context.Background(), "2025-05-01")
	require.NoError(t, err)
	assert.EqualValues(t, 96, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointment_LockStaffUsesForUpdate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "id" FROM "staff_members" WHERE id IN .* ORDER BY id ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	err := NewAppointmentGormRepository(db).LockStaff(context.Background(), []uint{1, 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointment_LockAppointmentUsesForUpdate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "id" FROM "appointments" WHERE id = \$1 FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	err := NewAppointmentGormRepository(db).LockAppointment(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointment_MissingRowIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "staff_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := NewAppointmentGormRepository(db).GetStaff(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointment_ExclusionViolationSurfaces(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "appointment_staff_assignments"`).
		WillReturnError(&pgconn.PgError{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})

	err := NewAppointmentGormRepository(db).CreateAppointment(context.Background(), &models.Appointment{
		ClientID:         1,
		PetID:            1,
		PrimaryServiceID: 1,
		Date:             "2025-06-02",
		Time:             "10:00:00",
		DurationMin:      60,
		Status:           "confirmed",
		Assignments: []models.AppointmentStaffAssignment{
			{StaffID: 1, ServiceID: 1, Date: "2025-06-02", StartMin: 600, EndMin: 660, Active: true},
		},
	})
	require.Error(t, err)
	assert.True(t, httperr.IsExclusionConflict(err))
}

func TestPriceResolver(t *testing.T) {
	db, mock := newMockDB(t)
	resolver := NewPriceGormResolver(db)

	mock.ExpectQuery(`SELECT \* FROM "service_prices" WHERE .*LOWER\(size\).* ORDER BY breed DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "service_id", "breed", "size", "price", "duration_min"}).
			AddRow(1, 3, "poodle", "small", 0.0, nil))

	res, err := resolver.Resolve(context.Background(), 3, "Poodle", "small")
	require.NoError(t, err)
	require.NotNil(t, res.Price)
	assert.Zero(t, *res.Price)
	assert.Nil(t, res.DurationMin)

	mock.ExpectQuery(`SELECT \* FROM "service_prices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err = resolver.Resolve(context.Background(), 3, "husky", "large")
	require.NoError(t, err)
	assert.Nil(t, res.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}
