package summary

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"hainyu/database"
	"hainyu/model"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func filtersFromQuery(r *http.Request) model.SummaryFilters {
	q := r.URL.Query()
	return model.SummaryFilters{
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		Shipper:  q.Get("shipper"),
		Dest:     q.Get("dest"),
	}
}

// GetSummaryHandler はヘッダーごとの明細集計をJSONで返します。
func GetSummaryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := database.SummarizeHeaders(db, filtersFromQuery(r))
		if err != nil {
			log.Printf("Summary aggregation failed: %v", err)
			http.Error(w, "Failed to get hainyu summary", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": results,
		})
	}
}

// ExportSummaryCSVHandler は集計結果をShift-JISのCSVでダウンロードさせます。
// （日本語版Excelでそのまま開けるようにするため）
func ExportSummaryCSVHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := database.SummarizeHeaders(db, filtersFromQuery(r))
		if err != nil {
			http.Error(w, "Failed to get hainyu summary for export: "+err.Error(), http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		cw := csv.NewWriter(transform.NewWriter(&buf, japanese.ShiftJIS.NewEncoder()))

		header := []string{"搬入番号", "日付", "荷主", "揚地", "品名", "行数", "合計個数", "合計M3", "合計重量"}
		if err := cw.Write(header); err != nil {
			http.Error(w, "Failed to write CSV header", http.StatusInternalServerError)
			return
		}

		for _, row := range results {
			date := ""
			if row.Date != nil {
				date = *row.Date
			}
			record := []string{
				row.HainyuID,
				date,
				row.Shipper,
				row.Dest,
				row.ItemName,
				fmt.Sprintf("%d", row.ItemCount),
				fmt.Sprintf("%g", row.TotalQty),
				fmt.Sprintf("%.3f", row.TotalM3),
				fmt.Sprintf("%.2f", row.TotalWeight),
			}
			if err := cw.Write(record); err != nil {
				http.Error(w, "Failed to write CSV row", http.StatusInternalServerError)
				return
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			http.Error(w, "Failed to flush CSV", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("搬入集計_%s.csv", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=Shift_JIS")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(buf.Bytes())
	}
}
