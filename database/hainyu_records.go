package database

import (
	"database/sql"
	"fmt"
	"hainyu/model"

	"github.com/jmoiron/sqlx"
)

// ErrHeaderNotFound は搬入番号が未登録の場合に返されます。
var ErrHeaderNotFound = sql.ErrNoRows

// GetHeader は搬入番号でヘッダーを1件取得します。
// 未登録の場合は ErrHeaderNotFound を返します。
func GetHeader(db *sqlx.DB, hainyuID string) (*model.HainyuHeader, error) {
	var h model.HainyuHeader
	const q = `
		SELECT hainyu_id, date, shipper, dest, item_name, mark, mark_image, last_updated
		FROM hainyu_headers
		WHERE hainyu_id = ?
	`
	err := db.Get(&h, q, hainyuID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrHeaderNotFound
		}
		return nil, fmt.Errorf("GetHeader (%s) failed: %w", hainyuID, err)
	}
	return &h, nil
}

// GetItems はヘッダーに属する明細を行番号順で取得します。
func GetItems(db *sqlx.DB, hainyuID string) ([]model.HainyuItem, error) {
	items := []model.HainyuItem{}
	const q = `
		SELECT hainyu_id, row_index, package_type, qty, no_from, no_to, L, W, H, weight_kg, m3
		FROM hainyu_items
		WHERE hainyu_id = ?
		ORDER BY row_index
	`
	err := db.Select(&items, q, hainyuID)
	if err != nil {
		return nil, fmt.Errorf("GetItems (%s) failed: %w", hainyuID, err)
	}
	return items, nil
}

// UpsertHeaderInTx はヘッダーを挿入または更新します。
// mark_image はこの文では触りません（画像アップロード側だけが設定します）。
func UpsertHeaderInTx(tx *sqlx.Tx, hainyuID string, h model.HainyuHeader, now string) error {
	const q = `
		INSERT INTO hainyu_headers
			(hainyu_id, date, shipper, dest, item_name, mark, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hainyu_id) DO UPDATE SET
			date         = excluded.date,
			shipper      = excluded.shipper,
			dest         = excluded.dest,
			item_name    = excluded.item_name,
			mark         = excluded.mark,
			last_updated = excluded.last_updated
	`
	_, err := tx.Exec(q, hainyuID, h.Date, h.Shipper, h.Dest, h.ItemName, h.Mark, now)
	if err != nil {
		return fmt.Errorf("UpsertHeaderInTx (%s) failed: %w", hainyuID, err)
	}
	return nil
}

// ReplaceItemsInTx は既存の明細を一旦削除してから、受け取ったリストを
// 行番号を振り直して入れ直します。削除と挿入は呼び出し側のトランザクション内で
// まとめてコミットされます。空リストは明細ゼロ件として有効です。
func ReplaceItemsInTx(tx *sqlx.Tx, hainyuID string, items []model.HainyuItem) error {
	if _, err := tx.Exec(`DELETE FROM hainyu_items WHERE hainyu_id = ?`, hainyuID); err != nil {
		return fmt.Errorf("ReplaceItemsInTx: delete for %s failed: %w", hainyuID, err)
	}

	const q = `
		INSERT INTO hainyu_items
			(hainyu_id, row_index, package_type, qty, no_from, no_to, L, W, H, weight_kg, m3)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for idx, item := range items {
		_, err := tx.Exec(q, hainyuID, idx, item.PackageType,
			item.Qty, item.NoFrom, item.NoTo, item.L, item.W, item.H, item.WeightKg, item.M3)
		if err != nil {
			return fmt.Errorf("ReplaceItemsInTx: insert row %d for %s failed: %w", idx, hainyuID, err)
		}
	}
	return nil
}

// SetMarkImageInTx はヘッダーの画像パスだけを設定します。
// ヘッダーが未登録の場合は空欄のヘッダーを作成します（画像が構造データより
// 先に届くモバイル撮影フローのため）。既存行の他の項目には触りません。
func SetMarkImageInTx(tx *sqlx.Tx, hainyuID, imagePath, now string) error {
	const q = `
		INSERT INTO hainyu_headers
			(hainyu_id, date, shipper, dest, item_name, mark, mark_image, last_updated)
		VALUES (?, '', '', '', '', '', ?, ?)
		ON CONFLICT(hainyu_id) DO UPDATE SET
			mark_image = excluded.mark_image
	`
	_, err := tx.Exec(q, hainyuID, imagePath, now)
	if err != nil {
		return fmt.Errorf("SetMarkImageInTx (%s) failed: %w", hainyuID, err)
	}
	return nil
}
