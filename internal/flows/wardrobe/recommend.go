package wardrobe

import (
	"fmt"
	"strconv"
	"strings"

	"tgbots/internal/models"
)

// Input is everything the recommendation depends on
type Input struct {
	// Weather is nil when conditions are unknown
	Weather     *models.Weather
	Answers     map[string]string
	Wardrobe    []models.WardrobeItem
	Destination string
	Mood        string
}

var destinationAccents = map[string]string{
	"dest_work":  "аккуратный деловой акцент",
	"dest_date":  "романтичная деталь образа",
	"dest_party": "яркий акцент/украшения",
	"dest_sport": "удобная спортивная посадка",
}

var moodAccents = map[string]string{
	"mood_calm":      "сдержанные оттенки",
	"mood_energetic": "контраст/динамика",
	"mood_romantic":  "мягкие линии/пастель",
	"mood_bold":      "смелый акцент",
	"mood_cozy":      "уютные фактуры",
}

var archetypeAccents = map[string]string{
	"Энергичная":  "добавьте яркий цвет",
	"Романтичная": "нежные аксессуары",
	"Дерзкая":     "смелая деталь (кожа/металл)",
}

// Recommend composes the outfit line. Fragments are ordered: temperature band
// garments (the user's own item of the category wins over the default), weather
// additions, destination, mood, character, first accessory.
func Recommend(in Input) string {
	pick := func(category, fallback string) string {
		for _, item := range in.Wardrobe {
			if item.Category == category && item.Name != "" {
				return item.Name
			}
		}
		return fallback
	}

	var look []string
	if w := in.Weather; w != nil {
		switch t := w.Temperature; {
		case t <= 0:
			look = append(look,
				pick("base", "тёплый свитер"),
				pick("bottom", "плотные брюки/джинсы"),
				pick("outerwear", "пальто/пуховик"),
				pick("shoes", "тёплая обувь"))
		case t <= 12:
			look = append(look,
				pick("base", "лонгслив/свитшот"),
				pick("bottom", "брюки/джинсы"),
				pick("outerwear", "лёгкое пальто/тренч"),
				pick("shoes", "закрытая обувь"))
		case t <= 20:
			look = append(look,
				pick("base", "футболка/блуза"),
				pick("bottom", "брюки/джинсы/юбка"),
				pick("shoes", "кеды/туфли"))
		default:
			look = append(look,
				pick("top", "лёгкий топ"),
				pick("bottom", "юбка/шорты/лёгкие брюки"),
				pick("shoes", "сандалии/кеды"))
		}

		if w.Precipitation > 0 {
			look = append(look, "зонт/непромокаемая куртка")
		}
		if w.Wind > 8 {
			look = append(look, "ветровка/защита от ветра")
		}
	}

	if accent, ok := destinationAccents[in.Destination]; ok {
		look = append(look, accent)
	}
	if accent, ok := moodAccents[in.Mood]; ok {
		look = append(look, accent)
	}
	if accent, ok := archetypeAccents[in.Answers["psych_q3"]]; ok {
		look = append(look, accent)
	}
	if accessory := pick("accessories", ""); accessory != "" {
		look = append(look, accessory)
	}

	return "Рекомендация: " + strings.Join(look, ", ") + "."
}

// PrettyWeather formats current conditions for a message
func PrettyWeather(w *models.Weather) string {
	if w == nil {
		return "(нет данных)"
	}
	return fmt.Sprintf("Температура: %s°C, Осадки: %s мм, Ветер: %s м/с",
		formatNumber(w.Temperature), formatNumber(w.Precipitation), formatNumber(w.Wind))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
