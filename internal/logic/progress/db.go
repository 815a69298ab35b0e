package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"serum-indexer-sol/internal/pkg/sqldb"
)

const slotTable = "progress_slot"

// DBProgressStore 管理 slot 的 DB 存储。
// 写入用于持久记录进度，服务恢复后可用；不做高频判重，只作为 fallback。
type DBProgressStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewDBProgressStore(db *sql.DB, dialect sqldb.Dialect) *DBProgressStore {
	return &DBProgressStore{db: db, dialect: dialect}
}

// EnsureSchema 创建进度表（已存在时不做任何操作）
func (d *DBProgressStore) EnsureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + slotTable + ` (
		slot       BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		source     SMALLINT NOT NULL,
		block_time BIGINT NOT NULL,
		status     SMALLINT NOT NULL,
		records    INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := d.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s failed: %w", slotTable, err)
	}
	return nil
}

// GetSlotStatus 查询 slot 的持久化状态，不存在时返回 SlotUnknown
func (d *DBProgressStore) GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	query := `SELECT status FROM ` + slotTable + ` WHERE slot = ?`
	var status int
	err := d.db.QueryRowContext(ctx, query, slot).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return SlotUnknown, nil
	}
	if err != nil {
		return SlotUnknown, fmt.Errorf("query slot %d error: %w", slot, err)
	}
	return SlotStatus(status), nil
}

// BatchUpsertSlots 批量写入 slot 记录，按 batchLimit 分批；主键冲突时更新状态
func (d *DBProgressStore) BatchUpsertSlots(ctx context.Context, slots []*SlotRecord) error {
	const batchLimit = 500
	for i := 0; i < len(slots); i += batchLimit {
		end := min(i+batchLimit, len(slots))
		if err := d.insertChunk(ctx, slots[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (d *DBProgressStore) insertChunk(ctx context.Context, slots []*SlotRecord) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO ` + slotTable + ` (slot, source, block_time, status, records) VALUES `)
	args := make([]any, 0, len(slots)*5)
	for i, s := range slots {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(" + sqldb.Placeholders(5) + ")")
		args = append(args, s.Slot, s.Source, s.BlockTime, int(s.Status), s.Records)
	}
	sb.WriteString(d.dialect.UpsertClause("slot", "status", "records"))

	if _, err := d.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upsert %d slots failed: %w", len(slots), err)
	}
	return nil
}

// DeleteSlotsBefore 分批删除早于 safeSlot 的记录（用于进度 GC），返回删除总数
func (d *DBProgressStore) DeleteSlotsBefore(ctx context.Context, safeSlot uint64) (int64, error) {
	const batchSize = 1000

	query := `DELETE FROM ` + slotTable + ` WHERE slot < ? ORDER BY slot LIMIT ?`
	if d.dialect == sqldb.SQLite {
		query = `DELETE FROM ` + slotTable + ` WHERE slot IN (SELECT slot FROM ` + slotTable + ` WHERE slot < ? ORDER BY slot LIMIT ?)`
	}

	var total int64
	for {
		res, err := d.db.ExecContext(ctx, query, safeSlot, batchSize)
		if err != nil {
			return total, fmt.Errorf("delete old slots failed: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
		if n < batchSize {
			return total, nil
		}
	}
}

// LatestSlot 返回已记录的最大 slot，无记录时返回 0
func (d *DBProgressStore) LatestSlot(ctx context.Context) (uint64, error) {
	var latest sql.NullInt64
	if err := d.db.QueryRowContext(ctx, `SELECT MAX(slot) FROM `+slotTable).Scan(&latest); err != nil {
		return 0, fmt.Errorf("fetch latest slot failed: %w", err)
	}
	if !latest.Valid {
		return 0, nil
	}
	return uint64(latest.Int64), nil
}
