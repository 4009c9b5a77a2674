// Package history persists race sessions and laps to a local SQLite
// database via gorm, and answers the average-rate queries the live
// estimator uses to seed its cold-start defaults. It is the sole concrete
// implementation of strategy.History shipped in this repository.
package history

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/psybedev/tracktic-strategy/strategy"
)

// Session is the persisted row backing strategy.RaceSession.
type Session struct {
	ID           int64 `gorm:"primaryKey"`
	FuelTankSize float64
	MaxFuelSave  float64
	MinFuel      float64
	TrackID      int64 `gorm:"index"`
	TrackName    string
	LayoutName   string
	CarID        int64 `gorm:"index"`
	CarName      string
}

// Lap is one persisted lap, foreign-keyed to its Session.
type Lap struct {
	ID            int64 `gorm:"primaryKey"`
	SessionID     int64 `gorm:"index"`
	Seq           int
	FuelUsed      float64
	FuelLeftAtEnd float64
	TimeSeconds   float64
	Condition     uint8
}

// Repository implements strategy.History over a gorm-managed SQLite
// database. It tracks, per attached session, how many laps have already
// been written so repeated AppendLaps calls with an unchanged prefix never
// duplicate rows.
type Repository struct {
	db          *gorm.DB
	lapsWritten map[strategy.SessionID]int
}

// Open opens (creating if necessary) the SQLite database at dsn and
// migrates the schema additively, mirroring the "ALTER TABLE ADD COLUMN"
// style migration the lap-history format has always used.
func Open(dsn string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Session{}, &Lap{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Repository{db: db, lapsWritten: make(map[strategy.SessionID]int)}, nil
}

// Close releases the underlying database connection.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordSession inserts a new session row and returns its identifier.
func (r *Repository) RecordSession(session strategy.RaceSession) (strategy.SessionID, error) {
	row := Session{
		FuelTankSize: session.FuelTankSize,
		MaxFuelSave:  session.MaxFuelSave,
		MinFuel:      session.MinFuel,
		TrackID:      session.TrackID,
		TrackName:    session.TrackName,
		LayoutName:   session.LayoutName,
		CarID:        session.CarID,
		CarName:      session.CarName,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("history: insert session: %w", err)
	}
	id := strategy.SessionID(row.ID)
	r.lapsWritten[id] = 0
	return id, nil
}

// AppendLaps persists laps[fromIndex:]. It is idempotent against repeated
// calls carrying an unchanged fromIndex and an unchanged prefix: the
// high-water mark set by RecordSession and advanced after each successful
// append is compared against fromIndex, and only genuinely new laps are
// inserted.
func (r *Repository) AppendLaps(session strategy.SessionID, laps []strategy.Lap, fromIndex int) error {
	written, ok := r.lapsWritten[session]
	if !ok {
		written = fromIndex
	}
	if fromIndex < written {
		fromIndex = written
	}
	if fromIndex >= len(laps) {
		return nil
	}
	fresh := laps[fromIndex:]
	if len(fresh) == 0 {
		return nil
	}

	rows := make([]Lap, len(fresh))
	for i, l := range fresh {
		rows[i] = Lap{
			SessionID:     int64(session),
			Seq:           fromIndex + i,
			FuelUsed:      l.FuelUsed,
			FuelLeftAtEnd: l.FuelLeftAtEnd,
			TimeSeconds:   l.Time.Seconds(),
			Condition:     uint8(l.Condition),
		}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("history: append laps: %w", err)
	}
	r.lapsWritten[session] = fromIndex + len(fresh)
	return nil
}

// AverageRate returns the average fuel/time over the most recent five laps
// across all prior sessions for this (car, track) pair whose condition bits
// exactly match conditionBits, per the aggregate query the live estimator's
// cold-start defaults have always been seeded from.
func (r *Repository) AverageRate(carID, trackID int64, conditionBits strategy.LapCondition) (strategy.Rate, bool) {
	var result struct {
		AvgFuel *float64
		AvgTime *float64
	}
	sub := r.db.Table("laps").
		Select("laps.fuel_used, laps.time_seconds").
		Joins("join sessions on sessions.id = laps.session_id").
		Where("sessions.car_id = ? AND sessions.track_id = ? AND laps.condition = ?", carID, trackID, uint8(conditionBits)).
		Order("laps.id desc").
		Limit(5)

	err := r.db.Table("(?) as recent", sub).
		Select("avg(fuel_used) as avg_fuel, avg(time_seconds) as avg_time").
		Scan(&result).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return strategy.Rate{}, false
	}
	if result.AvgFuel == nil || result.AvgTime == nil {
		return strategy.Rate{}, false
	}
	return strategy.Rate{
		Fuel: *result.AvgFuel,
		Time: strategy.FromSecondsF64(*result.AvgTime),
	}, true
}
