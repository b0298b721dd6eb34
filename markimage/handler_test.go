package markimage

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hainyu/config"
	"hainyu/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.InitSchema(db))
	t.Cleanup(func() { db.Close() })
	return db
}

// 設定ファイルと画像保存先を一時ディレクトリへ向ける
func useTempImageDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
	imageDir := filepath.Join(dir, "images")
	require.NoError(t, config.SaveConfig(config.Config{ImageDirPath: imageDir}))
	return imageDir
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, db *sqlx.DB, id, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/hainyu/"+id+"/mark_image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	UploadMarkImageHandler(db)(rec, req)
	return rec
}

func TestUploadKeepsLowercasedExtension(t *testing.T) {
	imageDir := useTempImageDir(t)
	db := newTestDB(t)

	content := []byte("fake png bytes")
	rec := upload(t, db, "X123", "photo.PNG", content)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.True(t, strings.HasPrefix(resp["imagePath"], "images/X123_"))
	assert.True(t, strings.HasSuffix(resp["imagePath"], ".png"))
	assert.Equal(t, "/"+resp["imagePath"], resp["imageUrl"])

	// バイト列がそのまま保存されること
	saved, err := os.ReadFile(filepath.Join(imageDir, filepath.Base(resp["imagePath"])))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestUploadUnknownExtensionFallsBackToJpg(t *testing.T) {
	useTempImageDir(t)
	db := newTestDB(t)

	rec := upload(t, db, "X124", "mark.txt", []byte("data"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp["imagePath"], ".jpg"))

	rec = upload(t, db, "X125", "noext", []byte("data"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp["imagePath"], ".jpg"))
}

func TestUploadWithoutFileReturns400(t *testing.T) {
	useTempImageDir(t)
	db := newTestDB(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/hainyu/X126/mark_image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	UploadMarkImageHandler(db)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadEmptyFilenameReturns400(t *testing.T) {
	useTempImageDir(t)
	db := newTestDB(t)

	rec := upload(t, db, "X127", "", []byte("data"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRemovesFileWhenHeaderUpdateFails(t *testing.T) {
	imageDir := useTempImageDir(t)
	db := newTestDB(t)

	// ヘッダー更新を確実に失敗させる
	_, err := db.Exec(`DROP TABLE hainyu_headers`)
	require.NoError(t, err)

	rec := upload(t, db, "X128", "mark.png", []byte("data"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// 失敗時はパス未記録のファイルが残らないこと
	entries, err := os.ReadDir(imageDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadToUnknownIDCreatesHeader(t *testing.T) {
	useTempImageDir(t)
	db := newTestDB(t)

	rec := upload(t, db, "FRESH-1", "mark.jpeg", []byte("data"))
	require.Equal(t, http.StatusOK, rec.Code)

	header, err := database.GetHeader(db, "FRESH-1")
	require.NoError(t, err)
	assert.Equal(t, "", header.Shipper)
	assert.Equal(t, "", header.Mark)
	require.NotNil(t, header.MarkImage)
	assert.True(t, strings.HasSuffix(*header.MarkImage, ".jpeg"))
}
