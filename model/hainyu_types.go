package model

// HainyuHeader は搬入番号ごとの基本情報です。
type HainyuHeader struct {
	HainyuID    string  `db:"hainyu_id" json:"hainyuId"`
	Date        *string `db:"date" json:"date"`
	Shipper     string  `db:"shipper" json:"shipper"`
	Dest        string  `db:"dest" json:"dest"`
	ItemName    string  `db:"item_name" json:"itemName"`
	Mark        string  `db:"mark" json:"mark"`
	MarkImage   *string `db:"mark_image" json:"markImage"`
	LastUpdated *string `db:"last_updated" json:"lastUpdated"`
}

// HainyuItem は搬入明細の1行です。数値項目は未入力を NULL のまま保持します。
type HainyuItem struct {
	HainyuID    string   `db:"hainyu_id" json:"-"`
	RowIndex    int      `db:"row_index" json:"-"`
	PackageType string   `db:"package_type" json:"packageType"`
	Qty         *float64 `db:"qty" json:"qty"`
	NoFrom      *float64 `db:"no_from" json:"noFrom"`
	NoTo        *float64 `db:"no_to" json:"noTo"`
	L           *float64 `db:"L" json:"L"`
	W           *float64 `db:"W" json:"W"`
	H           *float64 `db:"H" json:"H"`
	WeightKg    *float64 `db:"weight_kg" json:"weightKg"`
	M3          *float64 `db:"m3" json:"m3"`
}

// SearchResult は検索画面の一覧行です（明細は含みません）。
type SearchResult struct {
	HainyuID    string  `db:"hainyu_id" json:"hainyuId"`
	Date        *string `db:"date" json:"date"`
	Shipper     string  `db:"shipper" json:"shipper"`
	Dest        string  `db:"dest" json:"dest"`
	ItemName    string  `db:"item_name" json:"itemName"`
	LastUpdated *string `db:"last_updated" json:"lastUpdated"`
}

// SummaryRow は集計画面の1行です。明細ゼロ件のヘッダーも合計0で含まれます。
type SummaryRow struct {
	HainyuID    string  `db:"hainyu_id" json:"hainyuId"`
	Date        *string `db:"date" json:"date"`
	Shipper     string  `db:"shipper" json:"shipper"`
	Dest        string  `db:"dest" json:"dest"`
	ItemName    string  `db:"item_name" json:"itemName"`
	ItemCount   int     `db:"item_count" json:"itemCount"`
	TotalQty    float64 `db:"total_qty" json:"totalQty"`
	TotalM3     float64 `db:"total_m3" json:"totalM3"`
	TotalWeight float64 `db:"total_weight" json:"totalWeight"`
	MarkImage   *string `db:"mark_image" json:"markImage"`
}

// SummaryFilters は集計APIの絞り込み条件です。すべて任意・AND条件です。
type SummaryFilters struct {
	DateFrom string
	DateTo   string
	Shipper  string
	Dest     string
}
