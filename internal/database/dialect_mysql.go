package database

import (
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN takes a go-sql-driver DSN and forces parseTime, which scanning the
// DATETIME columns into time.Time needs. The driver's default utf8mb4 collation
// keeps diacritics intact. A DSN the driver cannot parse is passed through for
// sql.Open to report.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	cfg, err := mysql.ParseDSN(config.URL)
	if err != nil {
		return config.URL
	}

	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

// SupportsLastInsertId is true: lessons.id is AUTO_INCREMENT. Items and
// sessions are keyed by uuid strings and never need a generated ID.
func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// UpsertSettings relies on setting_key being the primary key; VALUES() reads
// the row that failed to insert
func (d *MySQLDialect) UpsertSettings() string {
	return "INSERT INTO settings (setting_key, setting_value) VALUES (?, ?) " +
		"ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = CURRENT_TIMESTAMP"
}
