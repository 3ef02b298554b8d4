package ranking

import "go-newsrank/internal/model"

// Dedup 过滤掉 URL 已存在的记录,只返回新文章。
// 同一批次内重复的 URL 只保留第一条,空 URL 直接丢弃。
func Dedup(batch []model.Record, known map[string]struct{}) []model.Record {
	fresh := make([]model.Record, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))

	for _, rec := range batch {
		if rec.URL == "" {
			continue
		}
		if _, ok := known[rec.URL]; ok {
			continue
		}
		if _, ok := seen[rec.URL]; ok {
			continue
		}
		seen[rec.URL] = struct{}{}
		fresh = append(fresh, rec)
	}

	return fresh
}

// URLs 提取批次中的 URL 列表
func URLs(batch []model.Record) []string {
	urls := make([]string, 0, len(batch))
	for _, rec := range batch {
		if rec.URL != "" {
			urls = append(urls, rec.URL)
		}
	}
	return urls
}
