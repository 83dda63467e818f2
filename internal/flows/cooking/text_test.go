package cooking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tgbots/internal/models"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Меня зовут Анна", "Анна"},
		{"меня зовут дмитрий", "Дмитрий"},
		{"Я Мария", "Мария"},
		{"Анна", "Анна"},
		{"Моё имя Александр", "Александр"},
		{"Зовите меня Саша", "Саша"},
		{"Нет, я не хочу", ""},
		{"Да", ""},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractName(tt.input), "input %q", tt.input)
	}
}

func TestGenderByName(t *testing.T) {
	assert.Equal(t, models.GenderFemale, GenderByName("Анна"))
	assert.Equal(t, models.GenderMale, GenderByName("Александр"))
	assert.Equal(t, models.GenderFemale, GenderByName("Мария"))
	assert.Equal(t, models.GenderMale, GenderByName("Дмитрий"))
	assert.Equal(t, models.GenderUnknown, GenderByName("НеизвестноеИмя"))
}

func TestGenderCorrection(t *testing.T) {
	tests := []struct {
		input string
		want  models.Gender
		ok    bool
	}{
		{"я мальчик", models.GenderMale, true},
		{"Вообще-то я девушка!", models.GenderFemale, true},
		{"Я же мужчина", models.GenderMale, true},
		{"я женщина", models.GenderFemale, true},
		{"моя девочка любит блины", models.GenderUnknown, false},
		{"привет", models.GenderUnknown, false},
	}
	for _, tt := range tests {
		got, ok := GenderCorrection(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "сынок", Address(models.GenderMale))
	assert.Equal(t, "дочка", Address(models.GenderFemale))
	assert.Equal(t, "детка", Address(models.GenderUnknown))
}

func TestParseIngredients(t *testing.T) {
	assert.Equal(t, []string{"яйца", "молоко", "сыр"}, ParseIngredients("Яйца, молоко; сыр"))
	assert.Equal(t, []string{"яйца", "молоко", "сыр"}, ParseIngredients("яйца молоко сыр"))
	assert.Equal(t, []string{"яйца", "молоко"}, ParseIngredients("яйца\nмолоко\n"))
	assert.Equal(t, []string{"томатная паста", "сметана"}, ParseIngredients("томатная паста, сметана"))
	assert.Equal(t, []string{"яйца"}, ParseIngredients("яйца, яйца"))
	assert.Empty(t, ParseIngredients("  "))
}

func TestDetectIntent(t *testing.T) {
	assert.Equal(t, IntentThanks, DetectIntent("Спасибо, батя"))
	assert.Equal(t, IntentAboutBot, DetectIntent("кто ты такой?"))
	assert.Equal(t, IntentComplaint, DetectIntent("у меня пригорел лук"))
	assert.Equal(t, IntentHowTo, DetectIntent("как приготовить соус"))
	assert.Equal(t, IntentHelp, DetectIntent("помоги"))
	assert.Equal(t, IntentNone, DetectIntent("сколько соли класть"))
}

func TestIsNext(t *testing.T) {
	assert.True(t, isNext("Дальше!"))
	assert.True(t, isNext("далее"))
	assert.True(t, isNext("готово"))
	assert.True(t, isNext("ещё"))
	assert.False(t, isNext("не дальше"))
	assert.False(t, isNext(""))
}
