package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// Constraints gorm cannot express. The exclusion constraint is what
// finally refuses two active, non-override assignments of one staff member
// on overlapping windows, whatever happened before the insert.
var constraints = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'appointment_staff_no_overlap'
	) THEN
		ALTER TABLE appointment_staff_assignments
			ADD CONSTRAINT appointment_staff_no_overlap
			EXCLUDE USING gist (
				staff_id WITH =,
				date WITH =,
				int4range(start_min, end_min) WITH &&
			) WHERE (active AND NOT override);
	END IF;
END$$`,
}

// gormWriter sends gorm's messages to zerolog. gorm only prints at warn
// level and above here, so everything goes out as a warning.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn().Msgf(format, args...)
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(
		gormWriter{log: log.With().Str("component", "gorm").Logger()},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func NewDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.StaffMember{},
		&models.Service{},
		&models.ServicePrice{},
		&models.Client{},
		&models.Pet{},
		&models.AvailabilitySlot{},
		&models.Appointment{},
		&models.AppointmentStaffAssignment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate constraints: %w", err)
		}
	}
	return nil
}
