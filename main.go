package main

import (
	"html/template"
	"log"
	"net/http"
	"os"
	"os/exec"
	"runtime"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"hainyu/config"
	"hainyu/database"
)

var appTemplate *template.Template

// 画面ルートとテンプレートファイルの対応
var pageTemplates = map[string]string{
	"/":            "index.html",
	"/edit":        "edit.html",
	"/mobile-edit": "mobile_edit.html",
	"/report":      "report.html",
	"/search":      "search.html",
	"/list":        "list.html",
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("WARN: Failed to load config file: %v. Using defaults.", err)
		cfg = config.GetConfig()
	}

	log.Println("Connecting to database...")
	dbConn, err := sqlx.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer dbConn.Close()
	log.Println("Database connection successful.")

	if err := database.InitSchema(dbConn); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	log.Println("Database initialization complete.")

	staticFS := os.DirFS("static")
	appTemplate, err = template.ParseFS(staticFS, "*.html")
	if err != nil {
		log.Fatalf("Failed to parse static/*.html: %v", err)
	}
	log.Println("HTML templates loaded and parsed.")

	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir("./static"))))

	// アップロードされたマーク画像の配信
	mux.Handle("/images/", http.StripPrefix("/images/",
		http.FileServer(http.Dir(cfg.ImageDirPath))))

	for route, tmplName := range pageTemplates {
		mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
			if route == "/" && r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := appTemplate.ExecuteTemplate(w, tmplName, nil); err != nil {
				log.Printf("Error executing template %s: %v", tmplName, err)
			}
		})
	}

	SetupRoutes(mux, dbConn)

	log.Printf("Starting server on http://localhost%s", cfg.Port)

	openBrowser("http://localhost" + cfg.Port)

	if err := http.ListenAndServe(cfg.Port, mux); err != nil {
		log.Fatalf("server start error: %v", err)
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Printf("failed to open browser: %v", err)
	}
}
