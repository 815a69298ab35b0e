package sink

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/pkg/sqldb"

	"google.golang.org/protobuf/encoding/protojson"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSink 将所有实体写入同一张表，属性以 JSON 文本存放在 attributes 列
type SQLSink struct {
	db      *sql.DB
	dialect sqldb.Dialect
	table   string
	insert  string
}

func NewSQLSink(db *sql.DB, dialect sqldb.Dialect, table string) (*SQLSink, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	s := &SQLSink{db: db, dialect: dialect, table: table}
	s.insert = `INSERT INTO ` + table +
		` (id, entity_type, slot, block_time, signature, tx_index, ix_index, inner_index, attributes) VALUES (` +
		sqldb.Placeholders(9) + `)` +
		dialect.UpsertClause("id", "attributes")
	return s, nil
}

// EnsureSchema 创建 Record 表（已存在时不做任何操作）
func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id          %s NOT NULL PRIMARY KEY,
		entity_type VARCHAR(64) NOT NULL,
		slot        BIGINT UNSIGNED NOT NULL,
		block_time  BIGINT NOT NULL,
		signature   VARCHAR(128) NOT NULL,
		tx_index    INTEGER NOT NULL,
		ix_index    INTEGER NOT NULL,
		inner_index INTEGER NOT NULL,
		attributes  %s NOT NULL
	)`, s.table, s.dialect.KeyType(), s.dialect.TextType())
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s failed: %w", s.table, err)
	}
	return nil
}

func (s *SQLSink) Save(ctx context.Context, entityType string, rec *entity.Record) error {
	attrs, err := protojson.Marshal(rec.ToStruct())
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	m := rec.Meta
	_, err = s.db.ExecContext(ctx, s.insert,
		rec.ID, entityType, m.Slot, m.BlockTime, m.Signature, m.TxIndex, m.IxIndex, m.InnerIndex, string(attrs))
	if err != nil {
		return fmt.Errorf("sql insert %s id=%s: %w", s.table, rec.ID, err)
	}
	return nil
}
