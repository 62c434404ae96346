package food

import (
	_ "embed"
	"fmt"
	"os"

	"fittrack/internal/pkg/common"
)

//go:embed data/foods.json
var embeddedCatalog []byte

// Macros 一組營養數值
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Entry 食物資料庫的一筆資料，數值對應名稱中括號標示的預設份量
type Entry struct {
	Keys     []string `json:"keys"`
	Name     string   `json:"name"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Per100g  *Macros  `json:"per100g,omitempty"`
}

// Catalog 啟動時載入一次的唯讀食物資料庫
type Catalog struct {
	entries []Entry
	// aliases[i] 為 entries[i] 正規化後的別名
	aliases [][]string
}

// DefaultCatalog 載入內嵌的食物資料庫
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(embeddedCatalog)
}

// LoadCatalogFile 從檔案載入食物資料庫
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalog(data)
}

// LoadCatalog 解析並驗證食物資料庫
func LoadCatalog(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := common.ParseJSONBytesStrict(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	c := &Catalog{
		entries: entries,
		aliases: make([][]string, len(entries)),
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if len(e.Keys) == 0 {
			return nil, fmt.Errorf("catalog entry %q has no keys", e.Name)
		}
		if e.Calories < 0 || e.Protein < 0 || e.Carbs < 0 || e.Fat < 0 {
			return nil, fmt.Errorf("catalog entry %q has negative values", e.Name)
		}
		for _, k := range e.Keys {
			alias := Normalize(k)
			if alias == "" {
				return nil, fmt.Errorf("catalog entry %q has an empty key", e.Name)
			}
			c.aliases[i] = append(c.aliases[i], alias)
		}
	}
	return c, nil
}

// Len 資料筆數
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries 回傳所有資料的副本
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
