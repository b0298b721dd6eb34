package search

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"hainyu/database"

	"github.com/jmoiron/sqlx"
)

// SearchHainyuHandler はヘッダーの横断検索結果を返します。
func SearchHainyuHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))

		results, err := database.SearchHeaders(db, q)
		if err != nil {
			log.Printf("Search failed for %q: %v", q, err)
			http.Error(w, "Failed to search hainyu records", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": results,
		})
	}
}
