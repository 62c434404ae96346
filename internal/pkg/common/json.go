package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v, false)
}

// ParseJSONBytesStrict 解析 JSON 位元組切片到結構體（禁止未知欄位）
func ParseJSONBytesStrict(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v, true)
}

func decodeJSON(r io.Reader, v interface{}, disallowUnknown bool) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		// 若讀到額外 token，視為錯誤
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

var (
	// ErrNoJSONObject 回應中找不到可解析的 JSON 物件
	ErrNoJSONObject = errors.New("no JSON object found in response")
	// ErrNoJSONArray 回應中找不到可解析的 JSON 陣列
	ErrNoJSONArray = errors.New("no JSON array found in response")

	codeFencePattern     = regexp.MustCompile("```(?:json|JSON)?[ \t]*\r?\n?")
	flatObjectPattern    = regexp.MustCompile(`\{[^{}]*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// StripCodeFence 移除 markdown 程式碼區塊標記
func StripCodeFence(raw string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))
}

// ExtractJSONObject 從模型回應中盡力取出 JSON 物件。
// requiredKey 不為空時，只接受含有該鍵的物件。
// 依序嘗試：去除 code fence 後直接解析、含指定鍵的扁平物件、每個扁平物件（必要時修復）、
// 第一個 { 到最後一個 } 的切片（含未加引號鍵與尾逗號修復）、補上缺少的右括號。
func ExtractJSONObject(raw, requiredKey string) (map[string]interface{}, error) {
	return ExtractJSONObjectFunc(raw, requiredKey, nil)
}

// ExtractJSONObjectFunc 與 ExtractJSONObject 相同，但候選物件還必須通過 accept；
// 不通過時繼續嘗試後面的候選。accept 為 nil 時只檢查 requiredKey。
func ExtractJSONObjectFunc(raw, requiredKey string, accept func(map[string]interface{}) bool) (map[string]interface{}, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, ErrNoJSONObject
	}

	if obj, ok := decodeObject(cleaned, requiredKey, accept); ok {
		return obj, nil
	}

	if requiredKey != "" {
		keyed := regexp.MustCompile(`\{[^{}]*"` + regexp.QuoteMeta(requiredKey) + `"\s*:[^{}]*\}`)
		for _, candidate := range keyed.FindAllString(cleaned, -1) {
			if obj, ok := decodeObject(candidate, requiredKey, accept); ok {
				return obj, nil
			}
		}
	}

	for _, candidate := range flatObjectPattern.FindAllString(cleaned, -1) {
		if obj, ok := decodeObject(candidate, requiredKey, accept); ok {
			return obj, nil
		}
		if obj, ok := decodeObject(repairJSON(candidate), requiredKey, accept); ok {
			return obj, nil
		}
	}

	start := strings.Index(cleaned, "{")
	if start == -1 {
		return nil, ErrNoJSONObject
	}
	end := strings.LastIndex(cleaned, "}")
	if end > start {
		if obj, ok := decodeObject(repairJSON(cleaned[start:end+1]), requiredKey, accept); ok {
			return obj, nil
		}
	}

	// 回應被截斷：補上右括號
	tail := strings.TrimRight(strings.TrimSpace(cleaned[start:]), ",")
	if obj, ok := decodeObject(repairJSON(tail+"}"), requiredKey, accept); ok {
		return obj, nil
	}

	return nil, ErrNoJSONObject
}

// ExtractJSONArray 從模型回應中取出 JSON 陣列。
// 也接受 {"<wrapperKey>": [...]} 形式的包裝物件。
func ExtractJSONArray(raw, wrapperKey string) ([]interface{}, error) {
	cleaned := StripCodeFence(raw)

	var arr []interface{}
	if err := ParseJSON(cleaned, &arr); err == nil {
		return arr, nil
	}

	if wrapperKey != "" {
		if obj, err := ExtractJSONObject(cleaned, wrapperKey); err == nil {
			if items, ok := obj[wrapperKey].([]interface{}); ok {
				return items, nil
			}
		}
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end <= start {
		return nil, ErrNoJSONArray
	}
	if err := ParseJSON(repairJSON(cleaned[start:end+1]), &arr); err != nil {
		return nil, ErrNoJSONArray
	}
	return arr, nil
}

// NumberValue 將 JSON 值轉為數字，接受數字與數字字串（小數逗號亦可）
func NumberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func decodeObject(candidate, requiredKey string, accept func(map[string]interface{}) bool) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := ParseJSON(candidate, &obj); err != nil || obj == nil {
		return nil, false
	}
	if requiredKey != "" {
		if _, ok := obj[requiredKey]; !ok {
			return nil, false
		}
	}
	if accept != nil && !accept(obj) {
		return nil, false
	}
	return obj, true
}

func repairJSON(candidate string) string {
	return trailingCommaPattern.ReplaceAllString(QuoteJSONKeys(candidate), "$1")
}
