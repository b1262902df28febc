package statistics

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/trendwatch/internal/database"
	"github.com/aristath/trendwatch/internal/domain"
	"github.com/rs/zerolog"
)

// statisticsColumns lists the columns in the order scanStatistic expects
const statisticsColumns = `id, date, universe_type, list_id, number_advance, number_decline,
number_above_sma50, number_at_or_below_sma50, number_above_sma200, number_at_or_below_sma200,
number_ritter_market_trend, number_up_on_volume, number_down_on_volume,
number_bearish_reversal, number_bullish_reversal, number_churning, number_of_instruments`

// SQLiteRepository stores statistics in the statistics table.
// The UNIQUE(date, universe_type, list_id) constraint backs the duplicate check;
// instrument-type statistics carry list_id 0.
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRepository creates a statistics repository on db
func NewSQLiteRepository(db *sql.DB, log zerolog.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		log: log.With().Str("repo", "statistics").Logger(),
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Insert stores stat, failing with ErrDuplicateStatistic for a taken (date, universe)
func (r *SQLiteRepository) Insert(stat *Statistic) error {
	if err := stat.validateUniverse(); err != nil {
		return err
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(
			"SELECT COUNT(*) FROM statistics WHERE date = ? AND universe_type = ? AND list_id = ?",
			domain.UTCDate(stat.Date).Unix(), string(stat.UniverseType), stat.ListID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check existing statistic: %w", err)
		}
		if exists > 0 {
			return ErrDuplicateStatistic
		}

		_, err = tx.Exec(
			"INSERT INTO statistics ("+statisticsColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			statisticArgs(stat)...,
		)
		if isUniqueViolation(err) {
			return ErrDuplicateStatistic
		}
		if err != nil {
			return fmt.Errorf("failed to insert statistic: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().
		Str("universe", string(stat.UniverseType)).
		Int64("list_id", stat.ListID).
		Time("date", stat.Date).
		Msg("Statistic inserted")

	return nil
}

// Update overwrites the counters of the statistic of the same (date, universe)
func (r *SQLiteRepository) Update(stat *Statistic) error {
	if err := stat.validateUniverse(); err != nil {
		return err
	}

	result, err := r.db.Exec(`
		UPDATE statistics SET
			number_advance = ?, number_decline = ?,
			number_above_sma50 = ?, number_at_or_below_sma50 = ?,
			number_above_sma200 = ?, number_at_or_below_sma200 = ?,
			number_ritter_market_trend = ?, number_up_on_volume = ?, number_down_on_volume = ?,
			number_bearish_reversal = ?, number_bullish_reversal = ?, number_churning = ?,
			number_of_instruments = ?
		WHERE date = ? AND universe_type = ? AND list_id = ?`,
		stat.NumberAdvance, stat.NumberDecline,
		stat.NumberAboveSma50, stat.NumberAtOrBelowSma50,
		stat.NumberAboveSma200, stat.NumberAtOrBelowSma200,
		stat.NumberRitterMarketTrend, stat.NumberUpOnVolume, stat.NumberDownOnVolume,
		stat.NumberBearishReversal, stat.NumberBullishReversal, stat.NumberChurning,
		stat.NumberOfInstruments,
		domain.UTCDate(stat.Date).Unix(), string(stat.UniverseType), stat.ListID,
	)
	if err != nil {
		return fmt.Errorf("failed to update statistic: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStatisticNotFound
	}

	return nil
}

// Get returns the statistic of (date, universe) or ErrStatisticNotFound
func (r *SQLiteRepository) Get(date time.Time, universe domain.InstrumentType) (*Statistic, error) {
	return r.get(date, universe, 0)
}

// GetForList returns the statistic of list listID on date or ErrStatisticNotFound
func (r *SQLiteRepository) GetForList(date time.Time, listID int64) (*Statistic, error) {
	return r.get(date, domain.InstrumentTypeList, listID)
}

func (r *SQLiteRepository) get(date time.Time, universe domain.InstrumentType, listID int64) (*Statistic, error) {
	row := r.db.QueryRow(
		"SELECT "+statisticsColumns+" FROM statistics WHERE date = ? AND universe_type = ? AND list_id = ?",
		domain.UTCDate(date).Unix(), string(universe), listID,
	)

	stat, err := scanStatistic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatisticNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statistic: %w", err)
	}
	return stat, nil
}

// List returns the statistics of universe, newest first
func (r *SQLiteRepository) List(universe domain.InstrumentType, limit int) ([]*Statistic, error) {
	return r.list(universe, 0, limit)
}

// ListForList returns the statistics of list listID, newest first
func (r *SQLiteRepository) ListForList(listID int64, limit int) ([]*Statistic, error) {
	return r.list(domain.InstrumentTypeList, listID, limit)
}

func (r *SQLiteRepository) list(universe domain.InstrumentType, listID int64, limit int) ([]*Statistic, error) {
	query := "SELECT " + statisticsColumns + " FROM statistics WHERE universe_type = ? AND list_id = ? ORDER BY date DESC"
	args := []interface{}{string(universe), listID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	var stats []*Statistic
	for rows.Next() {
		stat, err := scanStatistic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statistic: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics: %w", err)
	}

	return stats, nil
}

func statisticArgs(s *Statistic) []interface{} {
	return []interface{}{
		s.ID, domain.UTCDate(s.Date).Unix(), string(s.UniverseType), s.ListID,
		s.NumberAdvance, s.NumberDecline,
		s.NumberAboveSma50, s.NumberAtOrBelowSma50, s.NumberAboveSma200, s.NumberAtOrBelowSma200,
		s.NumberRitterMarketTrend, s.NumberUpOnVolume, s.NumberDownOnVolume,
		s.NumberBearishReversal, s.NumberBullishReversal, s.NumberChurning, s.NumberOfInstruments,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStatistic(row rowScanner) (*Statistic, error) {
	var s Statistic
	var dateUnix int64
	var universe string

	err := row.Scan(
		&s.ID, &dateUnix, &universe, &s.ListID,
		&s.NumberAdvance, &s.NumberDecline,
		&s.NumberAboveSma50, &s.NumberAtOrBelowSma50, &s.NumberAboveSma200, &s.NumberAtOrBelowSma200,
		&s.NumberRitterMarketTrend, &s.NumberUpOnVolume, &s.NumberDownOnVolume,
		&s.NumberBearishReversal, &s.NumberBullishReversal, &s.NumberChurning, &s.NumberOfInstruments,
	)
	if err != nil {
		return nil, err
	}

	s.Date = time.Unix(dateUnix, 0).UTC()
	s.UniverseType = domain.InstrumentType(universe)
	return &s, nil
}
