package hainyu

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hainyu/database"
	"hainyu/model"

	"github.com/jmoiron/sqlx"
)

// SavePayload はフロントエンドから受け取る保存データです。
// 明細の数値項目は文字列で届くことがあるため any で受けて後から変換します。
type SavePayload struct {
	Header *HeaderInput `json:"header"`
	Items  []ItemInput  `json:"items"`
}

type HeaderInput struct {
	Date     string `json:"date"`
	Shipper  string `json:"shipper"`
	Dest     string `json:"dest"`
	ItemName string `json:"itemName"`
	Mark     string `json:"mark"`
}

type ItemInput struct {
	PackageType any `json:"packageType"`
	Qty         any `json:"qty"`
	NoFrom      any `json:"noFrom"`
	NoTo        any `json:"noTo"`
	L           any `json:"L"`
	W           any `json:"W"`
	H           any `json:"H"`
	WeightKg    any `json:"weightKg"`
	M3          any `json:"m3"`
}

// GetHainyuHandler は搬入番号ごとのヘッダーと明細を返します。
func GetHainyuHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hainyuID := strings.TrimPrefix(r.URL.Path, "/api/hainyu/")
		if hainyuID == "" {
			http.Error(w, "hainyu id is required", http.StatusBadRequest)
			return
		}

		header, err := database.GetHeader(db, hainyuID)
		if err != nil {
			if err == database.ErrHeaderNotFound {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
				return
			}
			log.Printf("Error loading header for %s: %v", hainyuID, err)
			http.Error(w, "Failed to load hainyu record", http.StatusInternalServerError)
			return
		}

		items, err := database.GetItems(db, hainyuID)
		if err != nil {
			log.Printf("Error loading items for %s: %v", hainyuID, err)
			http.Error(w, "Failed to load hainyu items", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"header":      header,
			"items":       items,
			"lastUpdated": header.LastUpdated,
		})
	}
}

// SaveHainyuHandler は搬入記録の保存を処理します。ヘッダーのupsertと
// 明細の総入れ替えを1トランザクションで行います。
func SaveHainyuHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hainyuID := strings.TrimPrefix(r.URL.Path, "/api/hainyu/")
		if hainyuID == "" {
			http.Error(w, "hainyu id is required", http.StatusBadRequest)
			return
		}

		var payload SavePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "no data", http.StatusBadRequest)
			return
		}
		if payload.Header == nil && payload.Items == nil {
			http.Error(w, "no data", http.StatusBadRequest)
			return
		}

		header := model.HainyuHeader{}
		if payload.Header != nil {
			date := payload.Header.Date
			header.Date = &date
			header.Shipper = payload.Header.Shipper
			header.Dest = payload.Header.Dest
			header.ItemName = payload.Header.ItemName
			header.Mark = payload.Header.Mark
		}

		items := make([]model.HainyuItem, 0, len(payload.Items))
		for _, in := range payload.Items {
			items = append(items, model.HainyuItem{
				PackageType: toText(in.PackageType),
				Qty:         toNumber(in.Qty),
				NoFrom:      toNumber(in.NoFrom),
				NoTo:        toNumber(in.NoTo),
				L:           toNumber(in.L),
				W:           toNumber(in.W),
				H:           toNumber(in.H),
				WeightKg:    toNumber(in.WeightKg),
				M3:          toNumber(in.M3),
			})
		}

		now := time.Now().UTC().Format("2006-01-02T15:04:05")

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.UpsertHeaderInTx(tx, hainyuID, header, now); err != nil {
			log.Printf("Failed to upsert header for %s: %v", hainyuID, err)
			http.Error(w, "Failed to save hainyu header", http.StatusInternalServerError)
			return
		}
		if err := database.ReplaceItemsInTx(tx, hainyuID, items); err != nil {
			log.Printf("Failed to replace items for %s: %v", hainyuID, err)
			http.Error(w, "Failed to save hainyu items", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          true,
			"lastUpdated": now,
		})
	}
}

// toText はJSON値を文字列項目に変換します。文字列以外は空扱いです。
func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// toNumber はJSON値を数値項目に変換します。数値にならない値は
// 0ではなくNULL（nil）として保存します。
func toNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
