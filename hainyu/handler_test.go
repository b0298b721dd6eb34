package hainyu

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func TestSaveThenGetRoundTrip(t *testing.T) {
	db := newTestDB(t)

	body := `{
		"header": {"date":"2024-01-01","shipper":"ACME","dest":"Tokyo","itemName":"Boxes","mark":"M1"},
		"items": [{"packageType":"CTN","qty":10,"L":1,"W":1,"H":1,"weightKg":5,"m3":1}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/hainyu/X123", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SaveHainyuHandler(db)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var saveResp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saveResp))
	assert.Equal(t, true, saveResp["ok"])
	assert.NotEmpty(t, saveResp["lastUpdated"])

	req = httptest.NewRequest(http.MethodGet, "/api/hainyu/X123", nil)
	rec = httptest.NewRecorder()
	GetHainyuHandler(db)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var getResp struct {
		Header struct {
			Date     string `json:"date"`
			Shipper  string `json:"shipper"`
			Dest     string `json:"dest"`
			ItemName string `json:"itemName"`
			Mark     string `json:"mark"`
		} `json:"header"`
		Items []struct {
			PackageType string   `json:"packageType"`
			Qty         *float64 `json:"qty"`
		} `json:"items"`
		LastUpdated *string `json:"lastUpdated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &getResp))
	assert.Equal(t, "2024-01-01", getResp.Header.Date)
	assert.Equal(t, "ACME", getResp.Header.Shipper)
	assert.Equal(t, "Tokyo", getResp.Header.Dest)
	assert.Equal(t, "Boxes", getResp.Header.ItemName)
	assert.Equal(t, "M1", getResp.Header.Mark)
	require.Len(t, getResp.Items, 1)
	assert.Equal(t, "CTN", getResp.Items[0].PackageType)
	require.NotNil(t, getResp.Items[0].Qty)
	assert.Equal(t, 10.0, *getResp.Items[0].Qty)
	assert.NotNil(t, getResp.LastUpdated)
}

func TestGetUnknownIDReturns404(t *testing.T) {
	db := newTestDB(t)

	req := httptest.NewRequest(http.MethodGet, "/api/hainyu/UNKNOWN", nil)
	rec := httptest.NewRecorder()
	GetHainyuHandler(db)(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not found", resp["error"])
}

func TestSaveEmptyBodyReturns400(t *testing.T) {
	db := newTestDB(t)

	req := httptest.NewRequest(http.MethodPost, "/api/hainyu/X123", strings.NewReader(""))
	rec := httptest.NewRecorder()
	SaveHainyuHandler(db)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/hainyu/X123", strings.NewReader("null"))
	rec = httptest.NewRecorder()
	SaveHainyuHandler(db)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveCoercesMalformedNumericsToNull(t *testing.T) {
	db := newTestDB(t)

	body := `{
		"header": {"shipper":"ACME"},
		"items": [{"packageType":"CTN","qty":"abc","weightKg":"12.5","m3":""}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/hainyu/X900", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SaveHainyuHandler(db)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	items, err := database.GetItems(db, "X900")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Qty) // "abc" は0ではなくNULL
	require.NotNil(t, items[0].WeightKg)
	assert.Equal(t, 12.5, *items[0].WeightKg)
	assert.Nil(t, items[0].M3)
}

func TestToNumber(t *testing.T) {
	assert.Nil(t, toNumber(nil))
	assert.Nil(t, toNumber("abc"))
	assert.Nil(t, toNumber(true))
	require.NotNil(t, toNumber(1.5))
	assert.Equal(t, 1.5, *toNumber(1.5))
	require.NotNil(t, toNumber(" 2.5 "))
	assert.Equal(t, 2.5, *toNumber(" 2.5 "))
}
