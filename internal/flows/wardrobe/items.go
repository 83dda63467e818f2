package wardrobe

import (
	"strings"

	"tgbots/internal/models"
)

var skipWords = map[string]bool{
	"-":          true,
	"—":          true,
	"нет":        true,
	"пропустить": true,
	"пропуск":    true,
	"skip":       true,
}

// isSkip reports whether the answer means "nothing in this category"
func isSkip(text string) bool {
	return skipWords[strings.ToLower(strings.TrimSpace(text))]
}

// ParseItems splits a semicolon separated list; blank entries are dropped
func ParseItems(line string) []string {
	var items []string
	for _, part := range strings.Split(line, ";") {
		if part = strings.Join(strings.Fields(part), " "); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// colour stems mapped to the canonical colour name
var colorStems = []struct {
	stems []string
	name  string
}{
	{[]string{"бел"}, "белый"},
	{[]string{"чёрн", "черн"}, "чёрный"},
	{[]string{"сер"}, "серый"},
	{[]string{"син"}, "синий"},
	{[]string{"голуб"}, "голубой"},
	{[]string{"красн"}, "красный"},
	{[]string{"зелён", "зелен"}, "зелёный"},
	{[]string{"жёлт", "желт"}, "жёлтый"},
	{[]string{"розов"}, "розовый"},
	{[]string{"бежев"}, "бежевый"},
	{[]string{"коричнев"}, "коричневый"},
	{[]string{"фиолетов"}, "фиолетовый"},
	{[]string{"оранжев"}, "оранжевый"},
	{[]string{"бордов"}, "бордовый"},
	{[]string{"молочн"}, "молочный"},
}

var adjectiveEndings = []string{"ый", "ий", "ой", "ая", "яя", "ое", "ее", "ые", "ие", "ого", "его"}

// InferColor returns the first colour adjective found in the item name
func InferColor(name string) string {
	for _, word := range strings.Fields(strings.ToLower(name)) {
		word = strings.Trim(word, ".,!?()\"'")
		for _, c := range colorStems {
			for _, stem := range c.stems {
				if !strings.HasPrefix(word, stem) {
					continue
				}
				rest := strings.TrimPrefix(word, stem)
				for _, ending := range adjectiveEndings {
					if rest == ending {
						return c.name
					}
				}
			}
		}
	}
	return ""
}

var styleWords = []struct {
	prefix string
	style  string
}{
	{"делов", "деловой"},
	{"классич", "классический"},
	{"спортив", "спортивный"},
	{"вечерн", "вечерний"},
	{"джинс", "casual"},
	{"оверсайз", "casual"},
}

// InferStyle guesses a style from keywords in the item name
func InferStyle(name string) string {
	for _, word := range strings.Fields(strings.ToLower(name)) {
		for _, s := range styleWords {
			if strings.HasPrefix(word, s.prefix) {
				return s.style
			}
		}
	}
	return ""
}

// buildItems turns the accumulated "wardrobe.<code>" payload entries into rows
func buildItems(userID string, payload map[string]string) []models.WardrobeItem {
	var items []models.WardrobeItem
	for _, c := range Categories {
		for _, name := range ParseItems(payload[payloadKey(c.Code)]) {
			items = append(items, models.WardrobeItem{
				UserID:   userID,
				Category: c.Code,
				Name:     name,
				Color:    InferColor(name),
				Style:    InferStyle(name),
			})
		}
	}
	return items
}

func payloadKey(code string) string {
	return "wardrobe." + code
}
