package catalog

import "sort"

// Row is one qualifying stock row (on-hand quantity already known to be
// positive by the time it reaches the projector).
type Row struct {
	ID             string
	SKU            string
	DisplayName    string
	Category       string
	Quantity       int
	UnitPriceCents int
	ImageRef       string
}

// Entry is a deduplicated, display-ready grouping of stock rows sharing
// a display name. It is derived, never persisted.
type Entry struct {
	RepresentativeID string   `json:"representative_id"`
	DisplayName      string   `json:"display_name"`
	MinPriceCents    int      `json:"min_price_cents"`
	MaxPriceCents    int      `json:"max_price_cents"`
	Quantity         int      `json:"quantity"`
	VariantCount     int      `json:"variant_count"`
	SKUs             []string `json:"skus"`
	ImageRef         string   `json:"image_ref"`
}

// Project drops rows with non-positive quantity, groups the rest by
// display name, buckets the resulting entries
// into four tiers by variant count (=1, =2, =3, >3), sorts each tier by
// display name then representative SKU, concatenates the tiers in
// ascending variant-count order and paginates globally. Entries with few
// SKU variants must not be starved off page one by entries with many
// near-duplicate rows; this is a deterministic fairness ordering, not
// relevance ranking.
func Project(rows []Row, page, perPage int) ([]Entry, int) {
	groups := map[string][]Row{}
	var names []string
	for _, r := range rows {
		if r.Quantity <= 0 {
			continue
		}
		if _, seen := groups[r.DisplayName]; !seen {
			names = append(names, r.DisplayName)
		}
		groups[r.DisplayName] = append(groups[r.DisplayName], r)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, buildEntry(name, groups[name]))
	}

	// tier index: variant count 1..3 map to 0..2, everything above to 3
	tiers := make([][]Entry, 4)
	for _, e := range entries {
		i := e.VariantCount - 1
		if i > 3 {
			i = 3
		}
		tiers[i] = append(tiers[i], e)
	}

	var ordered []Entry
	for _, tier := range tiers {
		sort.Slice(tier, func(a, b int) bool {
			if tier[a].DisplayName != tier[b].DisplayName {
				return tier[a].DisplayName < tier[b].DisplayName
			}
			return repSKU(tier[a]) < repSKU(tier[b])
		})
		ordered = append(ordered, tier...)
	}

	return paginate(ordered, page, perPage)
}

func buildEntry(name string, rows []Row) Entry {
	rep := rows[0]
	e := Entry{
		DisplayName:   name,
		MinPriceCents: rows[0].UnitPriceCents,
		MaxPriceCents: rows[0].UnitPriceCents,
	}
	skus := map[string]bool{}
	for _, r := range rows {
		e.Quantity += r.Quantity
		if r.UnitPriceCents < e.MinPriceCents {
			e.MinPriceCents = r.UnitPriceCents
		}
		if r.UnitPriceCents > e.MaxPriceCents {
			e.MaxPriceCents = r.UnitPriceCents
		}
		if !skus[r.SKU] {
			skus[r.SKU] = true
			e.SKUs = append(e.SKUs, r.SKU)
		}
		// the smallest SKU in the group supplies the representative row
		if r.SKU < rep.SKU {
			rep = r
		}
	}
	sort.Strings(e.SKUs)
	e.RepresentativeID = rep.ID
	e.ImageRef = rep.ImageRef
	e.VariantCount = len(rows)
	return e
}

func repSKU(e Entry) string {
	if len(e.SKUs) == 0 {
		return ""
	}
	return e.SKUs[0]
}

func paginate(entries []Entry, page, perPage int) ([]Entry, int) {
	if perPage <= 0 {
		perPage = 24
	}
	if page < 1 {
		page = 1
	}
	totalPages := (len(entries) + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start >= len(entries) {
		return nil, totalPages
	}
	end := start + perPage
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], totalPages
}
