package sqldb

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect 区分 sqlite3 与 mysql 在 upsert / 批量删除上的语法差异
type Dialect string

const (
	SQLite Dialect = "sqlite3"
	MySQL  Dialect = "mysql"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(strings.ToLower(driver)) {
	case SQLite:
		return SQLite, nil
	case MySQL:
		return MySQL, nil
	default:
		return "", fmt.Errorf("unsupported sql driver: %q", driver)
	}
}

// Open 打开数据库连接并做一次 Ping
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// 内存库每个连接相互独立，限制为单连接
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// Placeholders 生成 n 个 "?" 组成的占位符列表，两种方言通用
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// UpsertClause 返回主键冲突时更新 columns 的子句
func (d Dialect) UpsertClause(key string, columns ...string) string {
	sets := make([]string, 0, len(columns))
	switch d {
	case MySQL:
		for _, c := range columns {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
		return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	default:
		for _, c := range columns {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
		return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
	}
}

// TextType 返回可存放较长 JSON 的列类型
func (d Dialect) TextType() string {
	if d == MySQL {
		return "MEDIUMTEXT"
	}
	return "TEXT"
}

// KeyType 返回可作为主键的字符串列类型
func (d Dialect) KeyType() string {
	if d == MySQL {
		return "VARCHAR(64)"
	}
	return "TEXT"
}
