package cooking

import (
	"sort"
	"strings"
	"unicode/utf8"

	"tgbots/internal/models"
)

// aliases map colloquial names to catalog ingredients
var aliases = map[string]string{
	"картошка": "картофель",
	"картошку": "картофель",
	"спагетти": "макароны",
	"паста":    "макароны",
	"лапша":    "макароны",
	"яйцо":     "яйца",
	"свёкла":   "свекла",
	"буряк":    "свекла",
	"курицу":   "курица",
	"филе":     "курица",
	"мясо":     "говядина",
	"гречку":   "гречка",
	"огурец":   "огурцы",
	"помидор":  "помидоры",
	"томаты":   "помидоры",
	"грудинка": "бекон",
	"пармезан": "сыр",
}

func normalize(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if a, ok := aliases[w]; ok {
		w = a
	}
	return strings.ReplaceAll(w, "ё", "е")
}

// stem drops the last letter of longer words so "яйца" matches "яйцо" and "сыра" matches "сыр"
func stem(word string) string {
	if utf8.RuneCountInString(word) < 4 {
		return word
	}
	runes := []rune(word)
	return string(runes[:len(runes)-1])
}

func sameIngredient(have, want string) bool {
	h, w := normalize(have), normalize(want)
	if h == w {
		return true
	}
	// multiword catalog entries match on their first word
	if i := strings.IndexByte(w, ' '); i > 0 {
		w = w[:i]
	}
	if i := strings.IndexByte(h, ' '); i > 0 && !strings.Contains(w, " ") {
		h = h[:i]
	}
	hs, ws := stem(h), stem(w)
	if hs == ws {
		return true
	}
	short, long := hs, ws
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	return utf8.RuneCountInString(short) >= 4 && strings.HasPrefix(long, short)
}

func hasIngredient(have []string, want string) bool {
	for _, h := range have {
		if sameIngredient(h, want) {
			return true
		}
	}
	return false
}

// FindRecipes returns recipes that can be cooked from the ingredients: at least
// two required ingredients present (all of them for smaller recipes) and at most
// three missing. Results are ordered by fewest missing, then most matched.
func FindRecipes(have []string) []models.RecipeMatch {
	type scored struct {
		match   models.RecipeMatch
		matched int
	}

	var found []scored
	for _, r := range Catalog {
		matched := 0
		var missing []string
		for _, req := range r.Required {
			if hasIngredient(have, req) {
				matched++
			} else {
				missing = append(missing, req)
			}
		}
		if matched < min(2, len(r.Required)) || len(missing) > 3 {
			continue
		}
		for _, opt := range r.Optional {
			if hasIngredient(have, opt) {
				matched++
			}
		}
		found = append(found, scored{models.RecipeMatch{Recipe: r, MissingRequired: missing}, matched})
	}

	sort.SliceStable(found, func(i, j int) bool {
		mi, mj := len(found[i].match.MissingRequired), len(found[j].match.MissingRequired)
		if mi != mj {
			return mi < mj
		}
		return found[i].matched > found[j].matched
	})

	result := make([]models.RecipeMatch, 0, len(found))
	for _, s := range found {
		result = append(result, s.match)
	}
	return result
}
