package feed

import "github.com/jrsteele09/vinnote-client/tastings"

// TastingWithInteractions adds the local like/bookmark overlay to a tasting. The flags never
// reach the server and start false every time a tasting is received.
type TastingWithInteractions struct {
	tastings.Tasting
	IsLiked      bool `json:"isLiked"`
	IsBookmarked bool `json:"isBookmarked"`
}

// Decorate wraps each tasting with cleared interaction flags, keeping order.
func Decorate(ts []tastings.Tasting) []TastingWithInteractions {
	out := make([]TastingWithInteractions, len(ts))
	for i, t := range ts {
		out[i] = TastingWithInteractions{Tasting: t}
	}
	return out
}

// Strip drops the interaction overlay, keeping order.
func Strip(items []TastingWithInteractions) []tastings.Tasting {
	out := make([]tastings.Tasting, len(items))
	for i, item := range items {
		out[i] = item.Tasting
	}
	return out
}

func toggleLike(item TastingWithInteractions) TastingWithInteractions {
	if item.IsLiked {
		item.LikeCount--
	} else {
		item.LikeCount++
	}
	item.IsLiked = !item.IsLiked
	return item
}

func toggleBookmark(item TastingWithInteractions) TastingWithInteractions {
	item.IsBookmarked = !item.IsBookmarked
	return item
}

// dedupe keeps the last occurrence of each id at that occurrence's position.
// Items without an id are never merged.
func dedupe(ts []tastings.Tasting) []tastings.Tasting {
	last := make(map[string]int, len(ts))
	for i, t := range ts {
		if t.ID != "" {
			last[t.ID] = i
		}
	}
	if len(last) == len(ts) {
		return ts
	}

	out := make([]tastings.Tasting, 0, len(last))
	for i, t := range ts {
		if t.ID == "" || last[t.ID] == i {
			out = append(out, t)
		}
	}
	return out
}
