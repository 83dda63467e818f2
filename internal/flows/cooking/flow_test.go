package cooking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tgbots/internal/analytics"
	analyticsStubs "tgbots/internal/analytics/stubs"
	"tgbots/internal/collab"
	"tgbots/internal/dialogue"
	"tgbots/internal/models"
	"tgbots/internal/storage/stubs"
)

type fakeChef struct {
	answer string
	prompt string
}

func (f *fakeChef) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.prompt = prompt
	if f.answer == "" {
		return "", collab.ErrUnavailable
	}
	return f.answer, nil
}

type harness struct {
	engine *dialogue.Engine
	db     *stubs.MockDB
	events *analyticsStubs.MemoryAnalytics
	chef   *fakeChef
	user   dialogue.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		db:     stubs.NewMockDB(),
		events: analyticsStubs.NewMemoryAnalytics(0),
		chef:   &fakeChef{},
		user:   dialogue.User{ID: "200", ChatID: 200},
	}
	flow := New(h.db, h.chef, h.events, time.Second, zap.NewNop())
	h.engine = dialogue.NewEngine(flow, h.db, zap.NewNop())
	return h
}

func (h *harness) send(t *testing.T, ev dialogue.Event) []dialogue.Reply {
	t.Helper()
	replies, err := h.engine.Process(context.Background(), h.user, ev)
	require.NoError(t, err)
	return replies
}

func (h *harness) text(t *testing.T, s string) []dialogue.Reply {
	return h.send(t, dialogue.Event{Type: dialogue.EventText, Text: s})
}

func (h *harness) callback(t *testing.T, data string) []dialogue.Reply {
	return h.send(t, dialogue.Event{Type: dialogue.EventCallback, Data: data})
}

func (h *harness) start(t *testing.T) []dialogue.Reply {
	return h.send(t, dialogue.Event{Type: dialogue.EventCommand, Command: "start", Text: "/start"})
}

func (h *harness) stage(t *testing.T) dialogue.Stage {
	t.Helper()
	s, err := h.engine.Stage(context.Background(), h.user.ID)
	require.NoError(t, err)
	return s
}

func (h *harness) gender(t *testing.T) models.Gender {
	t.Helper()
	u, err := h.db.GetUser(context.Background(), h.user.ID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Gender
}

// cookCarbonara walks the user to the first step of carbonara
func (h *harness) cookCarbonara(t *testing.T) {
	t.Helper()
	h.start(t)
	h.text(t, "Меня зовут Анна")
	h.text(t, "макароны, яйца, бекон")
	h.callback(t, "recipe|carbonara")
	require.Equal(t, KindCooking.At(0), h.stage(t))
}

func lastText(replies []dialogue.Reply) string {
	if len(replies) == 0 {
		return ""
	}
	return replies[len(replies)-1].Text
}

func TestFlow_StartAsksName(t *testing.T) {
	h := newHarness(t)

	replies := h.start(t)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Как тебя зовут")
	assert.Equal(t, KindAskName.Stage(), h.stage(t))
}

func TestFlow_NameSetsGender(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	replies := h.text(t, "Меня зовут Анна")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Анна")
	assert.Contains(t, replies[0].Text, "дочка")
	assert.Equal(t, KindAskIngredients.Stage(), h.stage(t))
	assert.Equal(t, models.GenderFemale, h.gender(t))
}

func TestFlow_UnrecognizedNameKeepsStage(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	replies := h.text(t, "!!!")
	assert.Equal(t, msgNoName, lastText(replies))
	assert.Equal(t, KindAskName.Stage(), h.stage(t))
}

func TestFlow_GenderCorrectionAtAnyStage(t *testing.T) {
	h := newHarness(t)
	h.cookCarbonara(t)

	replies := h.text(t, "вообще-то я мальчик")
	assert.Contains(t, lastText(replies), "сынок")
	assert.Equal(t, models.GenderMale, h.gender(t))
	assert.Equal(t, KindCooking.At(0), h.stage(t))
}

func TestFlow_NoRecipesStaysWithGuidance(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.text(t, "Я Дмитрий")

	replies := h.text(t, "хлеб, молоко")
	assert.Contains(t, lastText(replies), "сынок")
	assert.Contains(t, lastText(replies), "ничего путного")
	assert.Equal(t, KindAskIngredients.Stage(), h.stage(t))
}

func TestFlow_RecipeList(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.text(t, "Анна")

	replies := h.text(t, "яйца, молоко, мука")
	require.Len(t, replies, 1)
	kb := replies[0].Keyboard
	require.NotNil(t, kb)
	assert.True(t, kb.Inline)
	require.Len(t, kb.Rows, 3)
	assert.Equal(t, "recipe|pancakes", kb.Rows[0][0].Data)
	assert.Contains(t, replies[0].Text, "1. Блины")
	assert.Contains(t, replies[0].Text, "не хватает: творог")
	assert.Equal(t, KindChooseRecipe.Stage(), h.stage(t))

	// choose by number
	replies = h.text(t, "2")
	assert.Equal(t, KindCooking.At(0), h.stage(t))
	assert.Contains(t, replies[0].Text, "Омлет")
}

func TestFlow_ChooseRecipeRejectsOtherText(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.text(t, "Анна")
	h.text(t, "макароны, яйца, бекон")

	replies := h.text(t, "7")
	assert.Equal(t, msgChoose, lastText(replies))
	assert.Equal(t, KindChooseRecipe.Stage(), h.stage(t))
}

func TestFlow_CookToTheEnd(t *testing.T) {
	h := newHarness(t)
	h.cookCarbonara(t)

	recipe, ok := FindRecipe("carbonara")
	require.True(t, ok)

	for i := 1; i < len(recipe.Steps); i++ {
		replies := h.text(t, "дальше")
		require.Len(t, replies, 1)
		assert.True(t, strings.HasPrefix(replies[0].Text, "Шаг "), replies[0].Text)
		assert.Equal(t, KindCooking.At(i), h.stage(t))
	}

	replies := h.callback(t, "step|next")
	assert.Contains(t, lastText(replies), "Приятного аппетита, дочка")
	assert.Equal(t, dialogue.Idle, h.stage(t))

	rows, err := h.events.DailyEvents(context.Background(), Name, time.Time{})
	require.NoError(t, err)
	finished := false
	for _, r := range rows {
		if r.Name == analytics.EventRecipeFinished {
			finished = true
		}
	}
	assert.True(t, finished)
}

func TestFlow_SmallTalk(t *testing.T) {
	h := newHarness(t)
	h.cookCarbonara(t)

	replies := h.text(t, "спасибо!")
	assert.Contains(t, lastText(replies), "Да не за что, дочка")

	replies = h.text(t, "кажется пригорело, не получается")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Шаг 1/")

	// without a chef the step is repeated
	replies = h.text(t, "сколько соли класть")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Шаг 1/")

	h.chef.answer = "Щепотку, дочка, не больше."
	replies = h.text(t, "сколько соли класть")
	require.Len(t, replies, 1)
	assert.Equal(t, h.chef.answer, replies[0].Text)
	assert.Contains(t, h.chef.prompt, "Паста карбонара")
	assert.Contains(t, h.chef.prompt, "сколько соли класть")
	assert.Equal(t, KindCooking.At(0), h.stage(t))
}

func TestFlow_UnknownCommandKeepsStage(t *testing.T) {
	help := dialogue.Event{Type: dialogue.EventCommand, Command: "help", Text: "/help"}

	t.Run("no session", func(t *testing.T) {
		h := newHarness(t)
		replies := h.send(t, help)

		require.Len(t, replies, 1)
		assert.Equal(t, fmt.Sprintf(msgUnknownCommand, Address(models.GenderUnknown)), replies[0].Text)
		assert.Equal(t, dialogue.KindIdle, h.stage(t).Kind)
	})

	t.Run("ask_name", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		h.send(t, help)
		assert.Equal(t, KindAskName.Stage(), h.stage(t))
	})

	t.Run("cooking", func(t *testing.T) {
		h := newHarness(t)
		h.cookCarbonara(t)

		replies := h.send(t, help)

		require.Len(t, replies, 1)
		assert.Equal(t, fmt.Sprintf(msgUnknownCommand, Address(models.GenderFemale)), replies[0].Text)
		assert.Equal(t, KindCooking.At(0), h.stage(t))
	})
}

func TestFlow_StaleCallbacks(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	assert.Equal(t, msgStale, lastText(h.callback(t, "step|next")))
	assert.Equal(t, msgStale, lastText(h.callback(t, "recipe|omelet")))
	assert.Equal(t, msgUnknownAction, lastText(h.callback(t, "something")))
	assert.Equal(t, KindAskName.Stage(), h.stage(t))
}

func TestFlow_StartResetsCooking(t *testing.T) {
	h := newHarness(t)
	h.cookCarbonara(t)

	h.start(t)
	assert.Equal(t, KindAskName.Stage(), h.stage(t))

	s, err := h.db.GetSession(context.Background(), h.user.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Payload["recipe"])
}
