package main

import (
	"net/http"
	"strings"

	"hainyu/hainyu"
	"hainyu/markimage"
	"hainyu/search"
	"hainyu/summary"

	"github.com/jmoiron/sqlx"
)

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {

	getHainyu := hainyu.GetHainyuHandler(dbConn)
	saveHainyu := hainyu.SaveHainyuHandler(dbConn)
	uploadMarkImage := markimage.UploadMarkImageHandler(dbConn)

	mux.HandleFunc("/api/hainyu/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/mark_image") {
			if r.Method != http.MethodPost {
				http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
				return
			}
			uploadMarkImage(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			getHainyu(w, r)
		case http.MethodPost:
			saveHainyu(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/search", getOnly(search.SearchHainyuHandler(dbConn)))

	mux.HandleFunc("/api/summary", getOnly(summary.GetSummaryHandler(dbConn)))
	mux.HandleFunc("/api/summary/export_csv", getOnly(summary.ExportSummaryCSVHandler(dbConn)))

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}
