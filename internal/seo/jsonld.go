package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v for a ld+json script block. It returns an empty string on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
		}
		if it.Item != "" {
			entry["item"] = it.Item
		}
		el = append(el, entry)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// ProductInfo is the subset of a product published as structured data.
type ProductInfo struct {
	Name        string
	Description string
	URL         string
	Images      []string
	SKU         string
	Category    string
	Author      string
	// Price is the decimal amount as a string, e.g. "19.90".
	Price    string
	Currency string
}

// Product returns a schema.org Product with a single always-available offer.
func Product(p ProductInfo) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        p.Name,
		"description": p.Description,
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if len(p.Images) > 0 {
		m["image"] = p.Images
	}
	if p.SKU != "" {
		m["sku"] = p.SKU
	}
	if p.Category != "" {
		m["category"] = p.Category
	}
	if p.Author != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": p.Author}
	}
	if p.Price != "" {
		offer := map[string]any{
			"@type":         "Offer",
			"price":         p.Price,
			"priceCurrency": p.Currency,
			"availability":  "https://schema.org/InStock",
		}
		if p.URL != "" {
			offer["url"] = p.URL
		}
		m["offers"] = offer
	}
	return m
}
