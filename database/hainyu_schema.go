package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hainyu_headers (
    hainyu_id    TEXT PRIMARY KEY,
    date         TEXT,
    shipper      TEXT,
    dest         TEXT,
    item_name    TEXT,
    mark         TEXT,
    mark_image   TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS hainyu_items (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    hainyu_id    TEXT,
    row_index    INTEGER,
    package_type TEXT,
    qty          REAL,
    no_from      REAL,
    no_to        REAL,
    L            REAL,
    W            REAL,
    H            REAL,
    weight_kg    REAL,
    m3           REAL
);
`

// InitSchema はデータベーススキーマを適用します。起動時に一度だけ呼び出します。
// 既存データには一切触れません（DROP/TRUNCATEなし）。
func InitSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply hainyu schema: %w", err)
	}

	// 旧バージョンのDBには mark_image 列がないため、なければ追加する
	ok, err := columnExists(db, "hainyu_headers", "mark_image")
	if err != nil {
		return fmt.Errorf("failed to inspect hainyu_headers columns: %w", err)
	}
	if !ok {
		log.Println("Adding mark_image column to hainyu_headers...")
		if _, err := db.Exec(`ALTER TABLE hainyu_headers ADD COLUMN mark_image TEXT`); err != nil {
			return fmt.Errorf("failed to add mark_image column: %w", err)
		}
	}
	return nil
}

func columnExists(db *sqlx.DB, table, column string) (bool, error) {
	rows, err := db.Queryx(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    interface{}
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
