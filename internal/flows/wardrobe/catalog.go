package wardrobe

import "tgbots/internal/dialogue"

// Main keyboard buttons; each one starts its flow from any stage
const (
	ButtonSurvey   = "🧠 Пройти опрос профиля"
	ButtonWardrobe = "👗 Заполнить гардероб"
	ButtonOutfit   = "🌤️ Что сегодня надеть?"
)

// Question is one survey question with its fixed answers
type Question struct {
	Key     string
	Text    string
	Options []string
}

// Questions is the profile survey, in order
var Questions = []Question{
	{Key: "psych_q1", Text: "Как вы обычно относитесь к ярким образам?", Options: []string{"Люблю выделяться", "Предпочитаю сдержанность", "Ситуативно"}},
	{Key: "psych_q2", Text: "Что для вас важнее?", Options: []string{"Комфорт", "Стиль", "Баланс"}},
	{Key: "psych_q3", Text: "Как описали бы свой характер?", Options: []string{"Спокойная", "Энергичная", "Романтичная", "Дерзкая"}},
}

// Option is a labelled callback code
type Option struct {
	Label string
	Code  string
}

// Category is a wardrobe category
type Category Option

// Categories is the wardrobe entry sequence
var Categories = []Category{
	{Label: "Базовые вещи", Code: "base"},
	{Label: "Верх", Code: "top"},
	{Label: "Низ", Code: "bottom"},
	{Label: "Обувь", Code: "shoes"},
	{Label: "Верхняя одежда", Code: "outerwear"},
	{Label: "Украшения", Code: "accessories"},
}

var Destinations = []Option{
	{Label: "Работа/Учёба", Code: "dest_work"},
	{Label: "Свидание", Code: "dest_date"},
	{Label: "Вечеринка", Code: "dest_party"},
	{Label: "Прогулка", Code: "dest_walk"},
	{Label: "Спорт", Code: "dest_sport"},
	{Label: "Домашние дела", Code: "dest_home"},
}

var Moods = []Option{
	{Label: "Спокойное", Code: "mood_calm"},
	{Label: "Энергичное", Code: "mood_energetic"},
	{Label: "Романтичное", Code: "mood_romantic"},
	{Label: "Дерзкое", Code: "mood_bold"},
	{Label: "Уютное", Code: "mood_cozy"},
}

func findOption(options []Option, code string) (Option, bool) {
	for _, o := range options {
		if o.Code == code {
			return o, true
		}
	}
	return Option{}, false
}

func mainKeyboard() *dialogue.Keyboard {
	return &dialogue.Keyboard{Rows: [][]dialogue.Button{
		{{Text: ButtonSurvey}},
		{{Text: ButtonWardrobe}},
		{{Text: ButtonOutfit}},
	}}
}

// optionsKeyboard lays options out two per row
func optionsKeyboard(options []Option) *dialogue.Keyboard {
	kb := &dialogue.Keyboard{Inline: true}
	for i := 0; i < len(options); i += 2 {
		row := []dialogue.Button{{Text: options[i].Label, Data: options[i].Code}}
		if i+1 < len(options) {
			row = append(row, dialogue.Button{Text: options[i+1].Label, Data: options[i+1].Code})
		}
		kb.Rows = append(kb.Rows, row)
	}
	return kb
}

func questionKeyboard(q Question) *dialogue.Keyboard {
	buttons := make([]dialogue.Button, 0, len(q.Options))
	for _, opt := range q.Options {
		buttons = append(buttons, dialogue.Button{Text: opt, Data: surveyCallback(q.Key, opt)})
	}
	return dialogue.InlineColumn(buttons...)
}

func surveyCallback(key, option string) string {
	return "psych|" + key + "|" + option
}
