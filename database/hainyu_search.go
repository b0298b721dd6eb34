package database

import (
	"fmt"
	"hainyu/model"

	"github.com/jmoiron/sqlx"
)

// SearchHeaders はヘッダーを横断検索します。qが空の場合は更新が新しい順に
// 最大100件を返します。並び順は更新日時（なければ日付）降順、同値は搬入番号降順。
func SearchHeaders(db *sqlx.DB, q string) ([]model.SearchResult, error) {
	results := []model.SearchResult{}

	if q == "" {
		const query = `
			SELECT hainyu_id, date, shipper, dest, item_name, last_updated
			FROM hainyu_headers
			ORDER BY COALESCE(last_updated, date) DESC, hainyu_id DESC
			LIMIT 100
		`
		if err := db.Select(&results, query); err != nil {
			return nil, fmt.Errorf("SearchHeaders (all) failed: %w", err)
		}
		return results, nil
	}

	const query = `
		SELECT hainyu_id, date, shipper, dest, item_name, last_updated
		FROM hainyu_headers
		WHERE hainyu_id LIKE ?
		   OR shipper   LIKE ?
		   OR dest      LIKE ?
		   OR item_name LIKE ?
		   OR mark      LIKE ?
		ORDER BY COALESCE(last_updated, date) DESC, hainyu_id DESC
		LIMIT 100
	`
	like := "%" + q + "%"
	if err := db.Select(&results, query, like, like, like, like, like); err != nil {
		return nil, fmt.Errorf("SearchHeaders (%q) failed: %w", q, err)
	}
	return results, nil
}

// SummarizeHeaders はヘッダーごとの明細集計を返します。絞り込みはすべて任意の
// AND条件です。明細ゼロ件のヘッダーも合計0で含まれます。日付降順・搬入番号昇順、
// 最大500件。
func SummarizeHeaders(db *sqlx.DB, f model.SummaryFilters) ([]model.SummaryRow, error) {
	query := `
		SELECT
			h.hainyu_id,
			h.date,
			h.shipper,
			h.dest,
			h.item_name,
			h.mark_image,
			COUNT(i.id)                                              AS item_count,
			COALESCE(SUM(i.qty), 0)                                  AS total_qty,
			COALESCE(SUM(i.m3), 0)                                   AS total_m3,
			COALESCE(SUM(COALESCE(i.qty, 0) * COALESCE(i.weight_kg, 0)), 0) AS total_weight
		FROM hainyu_headers h
		LEFT JOIN hainyu_items i ON i.hainyu_id = h.hainyu_id
	`
	var conds []string
	var args []interface{}
	if f.DateFrom != "" {
		conds = append(conds, "h.date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		conds = append(conds, "h.date <= ?")
		args = append(args, f.DateTo)
	}
	if f.Shipper != "" {
		conds = append(conds, "h.shipper LIKE ?")
		args = append(args, "%"+f.Shipper+"%")
	}
	if f.Dest != "" {
		conds = append(conds, "h.dest LIKE ?")
		args = append(args, "%"+f.Dest+"%")
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += `
		GROUP BY h.hainyu_id
		ORDER BY h.date DESC, h.hainyu_id ASC
		LIMIT 500
	`

	results := []model.SummaryRow{}
	if err := db.Select(&results, query, args...); err != nil {
		return nil, fmt.Errorf("SummarizeHeaders failed: %w", err)
	}
	return results, nil
}
