package cooking

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"tgbots/internal/models"
)

var maleNames = setOf(
	"александр", "саша", "алексей", "андрей", "антон", "артём", "артем", "борис", "вадим",
	"василий", "виктор", "владимир", "владислав", "дмитрий", "дима", "евгений", "егор", "иван",
	"игорь", "илья", "кирилл", "константин", "максим", "михаил", "миша", "никита", "николай",
	"олег", "павел", "пётр", "петр", "роман", "сергей", "степан", "тимур", "фёдор", "федор",
	"юрий", "ярослав",
)

var femaleNames = setOf(
	"анна", "аня", "алёна", "алена", "александра", "алина", "анастасия", "настя", "валентина",
	"валерия", "вера", "виктория", "галина", "дарья", "даша", "екатерина", "катя", "елена",
	"лена", "елизавета", "ирина", "кристина", "ксения", "любовь", "людмила", "маргарита",
	"марина", "мария", "маша", "надежда", "наталья", "наташа", "ольга", "оля", "полина",
	"светлана", "софия", "софья", "татьяна", "юлия", "яна",
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// GenderByName looks the first name up in the known name lists
func GenderByName(name string) models.Gender {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case maleNames[n]:
		return models.GenderMale
	case femaleNames[n]:
		return models.GenderFemale
	}
	return models.GenderUnknown
}

var (
	maleCorrection   = regexp.MustCompile(`(?i)(?:^|[^\p{L}])я\s+(?:же\s+)?(?:мальчик|парень|мужчина|мужик|сын)(?:[^\p{L}]|$)`)
	femaleCorrection = regexp.MustCompile(`(?i)(?:^|[^\p{L}])я\s+(?:же\s+)?(?:девочка|девушка|женщина|дочь|дочка)(?:[^\p{L}]|$)`)
)

// GenderCorrection detects "я мальчик" / "я девушка" style statements.
// ok is false when the text says nothing about gender.
func GenderCorrection(text string) (models.Gender, bool) {
	switch {
	case maleCorrection.MatchString(text):
		return models.GenderMale, true
	case femaleCorrection.MatchString(text):
		return models.GenderFemale, true
	}
	return models.GenderUnknown, false
}

// Address is how the bot calls the user
func Address(g models.Gender) string {
	switch g {
	case models.GenderMale:
		return "сынок"
	case models.GenderFemale:
		return "дочка"
	}
	return "детка"
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)меня\s+зовут\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)зовите\s+меня\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)мо[её]\s+имя\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)(?:^|[^\p{L}])имя\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)(?:^|[^\p{L}])я\s+(\p{L}+)`),
}

var singleWord = regexp.MustCompile(`^\p{L}+(?:-\p{L}+)?$`)

var nameStopwords = setOf(
	"меня", "зовут", "мое", "моё", "имя", "это", "вот", "так", "да", "нет", "не",
	"привет", "здравствуй", "здравствуйте", "хочу", "буду", "тут", "здесь",
)

// ExtractName finds a first name in free text ("Меня зовут Анна", "Я Мария", "Анна").
// It returns "" when the text does not look like an introduction.
func ExtractName(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	for _, p := range namePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := m[len(m)-1]; acceptableName(name) {
			return capitalize(name)
		}
	}

	word := strings.Trim(text, ".,!?")
	if singleWord.MatchString(word) && acceptableName(word) {
		return capitalize(word)
	}
	return ""
}

func acceptableName(name string) bool {
	return utf8.RuneCountInString(name) >= 2 && !nameStopwords[strings.ToLower(name)]
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// ParseIngredients splits by comma, semicolon or newline; a single chunk falls back to whitespace
func ParseIngredients(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	if len(parts) <= 1 {
		parts = strings.Fields(text)
	}

	var out []string
	seen := make(map[string]bool)
	for _, p := range parts {
		p = strings.ToLower(strings.Trim(strings.TrimSpace(p), ".!"))
		p = strings.Join(strings.Fields(p), " ")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Intent is a recognised small-talk message during cooking
type Intent int

const (
	IntentNone Intent = iota
	IntentHowTo
	IntentHelp
	IntentThanks
	IntentComplaint
	IntentAboutBot
)

var intentPhrases = []struct {
	intent  Intent
	phrases []string
}{
	{IntentHowTo, []string{"как готовить", "как приготовить", "что делать", "объясни"}},
	{IntentHelp, []string{"помоги", "не понимаю", "не знаю"}},
	{IntentThanks, []string{"спасибо", "благодарю", "отлично", "круто", "классно", "супер"}},
	{IntentComplaint, []string{"не работает", "ошибка", "проблема", "не получается", "сломалось", "подгорел", "пригорел"}},
	{IntentAboutBot, []string{"кто ты", "что ты", "как дела", "как поживаешь"}},
}

// DetectIntent matches the text against the phrase lists, first list wins
func DetectIntent(text string) Intent {
	t := strings.ToLower(text)
	for _, ip := range intentPhrases {
		for _, phrase := range ip.phrases {
			if strings.Contains(t, phrase) {
				return ip.intent
			}
		}
	}
	return IntentNone
}

var nextWords = setOf("дальше", "далее", "next", "готово", "ещё", "еще", "следующий", "сделал", "сделала", "ок", "ok", "+")

// isNext reports whether the text asks for the next step
func isNext(text string) bool {
	t := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!"))
	return nextWords[t]
}
