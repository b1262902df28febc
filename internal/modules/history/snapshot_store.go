package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/trendwatch/internal/database"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotStore persists the snapshot side-table as msgpack blobs keyed by quotation ID
type SnapshotStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotStore creates a snapshot store on db
func NewSnapshotStore(db *sql.DB, log zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Save writes every snapshot held by table. A quotation with only one kind
// of snapshot keeps the stored blob of the other kind.
func (s *SnapshotStore) Save(table *snapshots.Table) error {
	movingAverages := table.MovingAverages()
	relativeStrengths := table.RelativeStrengths()

	ids := make(map[int64]struct{}, len(movingAverages))
	for id := range movingAverages {
		ids[id] = struct{}{}
	}
	for id := range relativeStrengths {
		ids[id] = struct{}{}
	}

	now := time.Now().Unix()
	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO quotation_snapshots (quotation_id, moving_average, relative_strength, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(quotation_id) DO UPDATE SET
				moving_average = COALESCE(excluded.moving_average, quotation_snapshots.moving_average),
				relative_strength = COALESCE(excluded.relative_strength, quotation_snapshots.relative_strength),
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for id := range ids {
			// nil binds NULL so the stored blob survives the COALESCE
			var maBlob, rsBlob interface{}
			if ma, ok := movingAverages[id]; ok {
				b, err := msgpack.Marshal(ma)
				if err != nil {
					return fmt.Errorf("failed to encode moving average of quotation %d: %w", id, err)
				}
				maBlob = b
			}
			if rs, ok := relativeStrengths[id]; ok {
				b, err := msgpack.Marshal(rs)
				if err != nil {
					return fmt.Errorf("failed to encode relative strength of quotation %d: %w", id, err)
				}
				rsBlob = b
			}
			if _, err := stmt.Exec(id, maBlob, rsBlob, now); err != nil {
				return fmt.Errorf("failed to save snapshot of quotation %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().Int("count", len(ids)).Msg("Saved snapshots")
	return nil
}

// Load reads every stored snapshot into table and returns how many rows were read
func (s *SnapshotStore) Load(table *snapshots.Table) (int, error) {
	rows, err := s.db.Query("SELECT quotation_id, moving_average, relative_strength FROM quotation_snapshots")
	if err != nil {
		return 0, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		var maBlob, rsBlob []byte
		if err := rows.Scan(&id, &maBlob, &rsBlob); err != nil {
			return count, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		if len(maBlob) > 0 {
			var ma snapshots.MovingAverage
			if err := msgpack.Unmarshal(maBlob, &ma); err != nil {
				return count, fmt.Errorf("failed to decode moving average of quotation %d: %w", id, err)
			}
			table.SetMovingAverage(id, ma)
		}
		if len(rsBlob) > 0 {
			var rs snapshots.RelativeStrength
			if err := msgpack.Unmarshal(rsBlob, &rs); err != nil {
				return count, fmt.Errorf("failed to decode relative strength of quotation %d: %w", id, err)
			}
			table.SetRelativeStrength(id, rs)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return count, nil
}
