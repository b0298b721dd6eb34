package markimage

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hainyu/config"
	"hainyu/database"

	"github.com/jmoiron/sqlx"
)

// 受け付ける画像拡張子。これ以外（および拡張子なし）は .jpg にフォールバックします。
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// UploadMarkImageHandler は搬入番号へのマーク画像アップロードを処理します。
// 画像はリサイズ等をせずそのまま保存し、ヘッダーの画像パスだけを更新します。
// ヘッダーが未登録でも空欄のヘッダーを作って受け付けます。
func UploadMarkImageHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hainyuID := strings.TrimPrefix(r.URL.Path, "/api/hainyu/")
		hainyuID = strings.TrimSuffix(hainyuID, "/mark_image")
		if hainyuID == "" {
			http.Error(w, "hainyu id is required", http.StatusBadRequest)
			return
		}

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			respondJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			respondJSONError(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if fileHeader.Filename == "" {
			respondJSONError(w, "empty filename", http.StatusBadRequest)
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedExtensions[ext] {
			ext = ".jpg"
		}

		fileBytes, err := io.ReadAll(file)
		if err != nil {
			respondJSONError(w, "Failed to read uploaded file", http.StatusInternalServerError)
			return
		}

		imageDir := config.GetConfig().ImageDirPath
		if err := os.MkdirAll(imageDir, 0755); err != nil {
			log.Printf("Failed to create image directory %s: %v", imageDir, err)
			respondJSONError(w, "Failed to prepare image directory", http.StatusInternalServerError)
			return
		}

		// 搬入番号＋UNIX秒で衝突を避ける
		fileName := fmt.Sprintf("%s_%d%s", hainyuID, time.Now().Unix(), ext)
		savePath := filepath.Join(imageDir, fileName)
		if err := os.WriteFile(savePath, fileBytes, 0644); err != nil {
			log.Printf("Failed to save mark image %s: %v", savePath, err)
			respondJSONError(w, "Failed to save image file", http.StatusInternalServerError)
			return
		}

		imagePath := "images/" + fileName
		now := time.Now().UTC().Format("2006-01-02T15:04:05")

		tx, err := db.Beginx()
		if err != nil {
			removeSavedImage(savePath)
			respondJSONError(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.SetMarkImageInTx(tx, hainyuID, imagePath, now); err != nil {
			log.Printf("Failed to set mark image for %s: %v", hainyuID, err)
			removeSavedImage(savePath)
			respondJSONError(w, "Failed to update hainyu header", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			removeSavedImage(savePath)
			respondJSONError(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		log.Printf("Saved mark image for %s: %s", hainyuID, imagePath)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"imagePath": imagePath,
			"imageUrl":  "/" + imagePath,
		})
	}
}

// ヘッダー更新に失敗したとき、パス未記録のままファイルだけ残らないように削除する
func removeSavedImage(path string) {
	if err := os.Remove(path); err != nil {
		log.Printf("WARN: Failed to remove orphaned image file %s: %v", path, err)
	}
}

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
