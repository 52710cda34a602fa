package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealsphere/dealsphere/internal/constants"
)

// 各联盟网络的列名别名表，表头按别名归一到标准字段
var importFieldAliases = map[string]map[string]string{
	constants.DealSourceAmazon: {
		"product_name": "title",
		"item_name":    "title",
		"list_price":   "original_price",
		"price":        "sale_price",
		"deal_price":   "sale_price",
		"product_url":  "affiliate_url",
		"detail_url":   "affiliate_url",
		"image":        "image_url",
		"main_image":   "image_url",
		"node":         "category",
	},
	constants.DealSourceCJ: {
		"name":            "title",
		"retail_price":    "original_price",
		"sale_price":      "sale_price",
		"buy_url":         "affiliate_url",
		"image_url":       "image_url",
		"advertiser":      "store",
		"advertiser_name": "store",
		"category_name":   "category",
	},
	constants.DealSourceShareASale: {
		"merchantname": "store",
		"name":         "title",
		"retailprice":  "original_price",
		"price":        "sale_price",
		"link":         "affiliate_url",
		"thumbnail":    "image_url",
		"bigimage":     "image_url",
		"subcategory":  "category",
	},
}

// 通用列名，未匹配别名时直接使用
var importCanonicalFields = map[string]struct{}{
	"title":           {},
	"description":     {},
	"original_price":  {},
	"sale_price":      {},
	"store":           {},
	"category":        {},
	"affiliate_url":   {},
	"image_url":       {},
	"coupon_code":     {},
	"coupon_required": {},
}

// normalizeImportHeader 归一化表头：先查来源别名，再查通用列名
func normalizeImportHeader(source, header string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(header))
	if aliases, ok := importFieldAliases[source]; ok {
		if canonical, ok := aliases[key]; ok {
			return canonical, true
		}
	}
	if _, ok := importCanonicalFields[key]; ok {
		return key, true
	}
	return "", false
}

// ParseCandidatesCSV 解析 CSV 为候选列表
// 首行为表头，未知列被忽略，空行跳过。
func ParseCandidatesCSV(data []byte, source string) ([]DealCandidateInput, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	columns := make(map[int]string, len(records[0]))
	for i, header := range records[0] {
		if canonical, ok := normalizeImportHeader(source, header); ok {
			columns[i] = canonical
		}
	}

	candidates := make([]DealCandidateInput, 0, len(records)-1)
	for _, record := range records[1:] {
		empty := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, cell := range record {
			if canonical, ok := columns[i]; ok {
				fields[canonical] = strings.TrimSpace(cell)
			}
		}
		candidates = append(candidates, candidateFromFields(fields, source))
	}

	if len(candidates) == 0 {
		return nil, ErrEmptyFile
	}
	return candidates, nil
}

func candidateFromFields(fields map[string]string, source string) DealCandidateInput {
	couponRequired := false
	switch strings.ToLower(fields["coupon_required"]) {
	case "1", "true", "yes", "y":
		couponRequired = true
	}
	return DealCandidateInput{
		Title:          fields["title"],
		Description:    fields["description"],
		OriginalPrice:  fields["original_price"],
		SalePrice:      fields["sale_price"],
		Store:          fields["store"],
		Category:       fields["category"],
		AffiliateURL:   fields["affiliate_url"],
		ImageURL:       fields["image_url"],
		CouponCode:     fields["coupon_code"],
		CouponRequired: couponRequired,
		SourceAPI:      source,
	}
}

// ParseCandidatesJSON 解析 JSON 数组为候选列表
func ParseCandidatesJSON(data []byte, source string) ([]DealCandidateInput, error) {
	var candidates []DealCandidateInput
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyFile
	}
	for i := range candidates {
		if candidates[i].SourceAPI == "" {
			candidates[i].SourceAPI = source
		}
	}
	return candidates, nil
}
