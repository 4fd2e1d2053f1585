package db

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/helpdesk/internal/models"
)

// logOutput receives slow-query and error lines from GORM.
var logOutput io.Writer = os.Stdout

// New creates a new GORM database connection. The driver is chosen from the
// DSN: postgres:// and mysql:// URLs go to their servers, anything else is a
// local SQLite file path created on first use.
func New(dsn string) (*gorm.DB, error) {
	dialector, sqliteFile, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(log.New(logOutput, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if sqliteFile {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
	}

	log.Printf("connected to database (%s)", db.Dialector.Name())
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false, nil
	case strings.HasPrefix(dsn, "mysql://"):
		normalized, err := mysqlDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return nil, false, err
		}
		return gormmysql.Open(normalized), false, nil
	case dsn == "":
		return nil, false, errors.New("empty database url")
	default:
		return sqlite.Open(dsn), true, nil
	}
}

// mysqlDSN validates a go-sql-driver DSN and forces the options the ticket
// tables rely on.
func mysqlDSN(raw string) (string, error) {
	cfg, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", errors.Wrap(err, "parse mysql dsn")
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

// legacyColumns are columns added to the tickets table after its first
// release. Each is added when missing so old database files keep working.
var legacyColumns = []struct {
	name string
	ddl  string
}{
	{name: "priority", ddl: "ALTER TABLE tickets ADD COLUMN priority TEXT DEFAULT 'Low'"},
	{name: "created_date", ddl: "ALTER TABLE tickets ADD COLUMN created_date TEXT NOT NULL DEFAULT '1970-01-01 00:00:00'"},
}

// Migrate creates the users and tickets tables if absent and applies additive
// column migrations to tables that already exist. Existing tables are never
// rebuilt, so files written by earlier releases (foreign keys, looser
// nullability) are left as they are. It is safe to run on every start.
func Migrate(db *gorm.DB) error {
	m := db.Migrator()

	if !m.HasTable(&models.User{}) {
		if err := m.CreateTable(&models.User{}); err != nil {
			return errors.Wrap(err, "create users")
		}
	} else if !m.HasColumn(&models.User{}, "CreatedAt") {
		if err := m.AddColumn(&models.User{}, "CreatedAt"); err != nil {
			return errors.Wrap(err, "add column users.created_at")
		}
	}

	if !m.HasTable(&models.Ticket{}) {
		return errors.Wrap(m.CreateTable(&models.Ticket{}), "create tickets")
	}
	for _, col := range legacyColumns {
		if m.HasColumn(&models.Ticket{}, col.name) {
			continue
		}
		if err := db.Exec(col.ddl).Error; err != nil {
			// Another process may have added it between the check and the ALTER.
			log.Printf("add column tickets.%s: %v", col.name, err)
		}
	}
	return normalizePriorities(db)
}

// normalizePriorities rewrites priority labels stored by earlier releases
// ("Mid", empty, NULL) to the values the ticket views offer.
func normalizePriorities(db *gorm.DB) error {
	if err := db.Exec("UPDATE tickets SET priority = ? WHERE priority = ?",
		models.TicketPriorityMedium, "Mid").Error; err != nil {
		return errors.Wrap(err, "normalize mid priority")
	}
	if err := db.Exec("UPDATE tickets SET priority = ? WHERE priority IS NULL OR priority = ''",
		models.TicketPriorityLow).Error; err != nil {
		return errors.Wrap(err, "normalize empty priority")
	}
	return nil
}
