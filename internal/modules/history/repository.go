package history

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

// Repository reads and writes instruments, lists and quotations in SQLite
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a history repository on db
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// UpsertInstrument inserts inst or updates the instrument with the same
// symbol, and sets inst.ID.
func (r *Repository) UpsertInstrument(inst *domain.Instrument) error {
	if !inst.Type.Valid() {
		return fmt.Errorf("invalid instrument type %q for %s", inst.Type, inst.Symbol)
	}

	_, err := r.db.Exec(`
		INSERT INTO instruments (symbol, name, type, stock_exchange)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			stock_exchange = excluded.stock_exchange
	`, inst.Symbol, inst.Name, string(inst.Type), inst.StockExchange)
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", inst.Symbol, err)
	}

	if err := r.db.QueryRow("SELECT id FROM instruments WHERE symbol = ?", inst.Symbol).Scan(&inst.ID); err != nil {
		return fmt.Errorf("failed to read instrument id for %s: %w", inst.Symbol, err)
	}
	return nil
}

// Instrument returns the instrument with id
func (r *Repository) Instrument(id int64) (*domain.Instrument, error) {
	row := r.db.QueryRow("SELECT id, symbol, name, type, stock_exchange FROM instruments WHERE id = ?", id)
	inst, err := scanInstrument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instrument %d: %w", id, ErrInstrumentNotFound)
	}
	return inst, err
}

// InstrumentBySymbol returns the instrument with symbol
func (r *Repository) InstrumentBySymbol(symbol string) (*domain.Instrument, error) {
	row := r.db.QueryRow("SELECT id, symbol, name, type, stock_exchange FROM instruments WHERE symbol = ?", symbol)
	inst, err := scanInstrument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instrument %s: %w", symbol, ErrInstrumentNotFound)
	}
	return inst, err
}

// CreateList creates an instrument list, or returns the ID of the existing one
func (r *Repository) CreateList(name string) (int64, error) {
	if _, err := r.db.Exec("INSERT OR IGNORE INTO instrument_lists (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("failed to create list %s: %w", name, err)
	}
	var id int64
	if err := r.db.QueryRow("SELECT id FROM instrument_lists WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read list id for %s: %w", name, err)
	}
	return id, nil
}

// AddToList adds instruments to a list. Existing members are kept.
func (r *Repository) AddToList(listID int64, instrumentIDs ...int64) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT OR IGNORE INTO instrument_list_members (list_id, instrument_id) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, id := range instrumentIDs {
			if _, err := stmt.Exec(listID, id); err != nil {
				return fmt.Errorf("failed to add instrument %d to list %d: %w", id, listID, err)
			}
		}
		return nil
	})
}

// ListInstruments implements InstrumentSource
func (r *Repository) ListInstruments(listIDs ...int64) ([]*domain.Instrument, error) {
	query := "SELECT id, symbol, name, type, stock_exchange FROM instruments ORDER BY symbol"
	args := make([]interface{}, len(listIDs))
	if len(listIDs) > 0 {
		placeholders := make([]string, len(listIDs))
		for i, id := range listIDs {
			placeholders[i] = "?"
			args[i] = id
		}
		query = `
			SELECT DISTINCT i.id, i.symbol, i.name, i.type, i.stock_exchange
			FROM instruments i
			JOIN instrument_list_members m ON m.instrument_id = i.id
			WHERE m.list_id IN (` + strings.Join(placeholders, ", ") + `)
			ORDER BY i.symbol`
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	var instruments []*domain.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instruments: %w", err)
	}

	return instruments, nil
}

// SaveQuotations inserts or replaces the quotations of an instrument by date
// in one transaction and sets their IDs.
func (r *Repository) SaveQuotations(instrumentID int64, quotations []*domain.Quotation) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		upsert, err := tx.Prepare(`
			INSERT INTO quotations (instrument_id, date, open, high, low, close, volume, currency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(instrument_id, date) DO UPDATE SET
				open = excluded.open,
				high = excluded.high,
				low = excluded.low,
				close = excluded.close,
				volume = excluded.volume,
				currency = excluded.currency
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer upsert.Close()

		for _, q := range quotations {
			dateUnix := domain.UTCDate(q.Date).Unix()
			currency := q.Currency
			if currency == "" {
				currency = domain.CurrencyUSD
			}

			if _, err := upsert.Exec(instrumentID, dateUnix, q.Open, q.High, q.Low, q.Close, q.Volume, string(currency)); err != nil {
				return fmt.Errorf("failed to save quotation of %s: %w", q.Date.Format("2006-01-02"), err)
			}
			if err := tx.QueryRow(
				"SELECT id FROM quotations WHERE instrument_id = ? AND date = ?", instrumentID, dateUnix,
			).Scan(&q.ID); err != nil {
				return fmt.Errorf("failed to read quotation id: %w", err)
			}
			q.InstrumentID = instrumentID
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().
		Int64("instrument_id", instrumentID).
		Int("count", len(quotations)).
		Msg("Saved quotations")

	return nil
}

// Quotations implements QuotationSource
func (r *Repository) Quotations(instrumentID int64) (domain.Sequence, error) {
	rows, err := r.db.Query(`
		SELECT id, date, open, high, low, close, volume, currency
		FROM quotations
		WHERE instrument_id = ?
		ORDER BY date DESC
	`, instrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotations: %w", err)
	}
	defer rows.Close()

	var quotations []*domain.Quotation
	for rows.Next() {
		q := &domain.Quotation{InstrumentID: instrumentID}
		var dateUnix int64
		var currency string
		if err := rows.Scan(&q.ID, &dateUnix, &q.Open, &q.High, &q.Low, &q.Close, &q.Volume, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		q.Date = time.Unix(dateUnix, 0).UTC()
		q.Currency = domain.Currency(currency)
		quotations = append(quotations, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotations: %w", err)
	}

	seq, err := domain.NewSequence(quotations)
	if err != nil {
		return nil, fmt.Errorf("failed to build sequence of instrument %d: %w", instrumentID, err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstrument(row rowScanner) (*domain.Instrument, error) {
	var inst domain.Instrument
	var instrumentType string
	if err := row.Scan(&inst.ID, &inst.Symbol, &inst.Name, &instrumentType, &inst.StockExchange); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan instrument: %w", err)
	}
	inst.Type = domain.InstrumentType(instrumentType)
	return &inst, nil
}
