// Package cooking is a dad-style cooking assistant: it learns the user's name,
// suggests recipes from what is in the fridge and walks through them step by step.
package cooking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tgbots/internal/analytics"
	"tgbots/internal/collab"
	"tgbots/internal/collab/llm"
	"tgbots/internal/dialogue"
	"tgbots/internal/models"
	"tgbots/internal/storage"
)

// Name identifies the bot variant
const Name = "cooking"

const (
	KindAskName        dialogue.Kind = "ask_name"
	KindAskIngredients dialogue.Kind = "ask_ingredients"
	KindChooseRecipe   dialogue.Kind = "choose_recipe"
	KindCooking        dialogue.Kind = "cooking"
)

const maxListed = 5

const (
	msgGreeting       = "Привет! Я Батя, научу готовить из того, что найдётся в холодильнике. Как тебя зовут?"
	msgNoName         = "Не расслышал имя. Напиши, например: «Меня зовут Анна»."
	msgNoIngredients  = "Перечисли продукты через запятую, %s. Например: яйца, молоко, сыр"
	msgNoRecipes      = "Из этого, %s, ничего путного не сварить. Добавь ещё продуктов или перечисли заново."
	msgChoose         = "Выбери рецепт кнопкой или напиши его номер."
	msgStale          = "Эта кнопка уже неактуальна. Напиши, что есть в холодильнике, или /start."
	msgUnknownAction  = "Неизвестное действие"
	msgAboutBot       = "Я Батя, %s. Всю жизнь у плиты, теперь вот тебя учу. Пиши «дальше», когда шаг готов."
	msgThanks         = "Да не за что, %s! Пиши «дальше», когда будешь готов."
	msgComplaint      = "Не переживай, %s, у всех бывает. Убавь огонь, выдохни и повтори шаг:"
	msgHelp           = "Смотри внимательно, %s, сейчас делаем так:"
	msgIdle           = "Напиши, что есть в холодильнике, %s, и я подберу рецепт. Или /start, чтобы начать сначала."
	msgUnknownCommand = "Не понял команду, %s. Продолжаем с того же места, или /start, чтобы начать сначала."
)

const chefSystemPrompt = "Ты заботливый батя, который учит готовить. Отвечай коротко, тепло и по-русски, без грубостей."

// Store is the persistence the flow needs besides the session
type Store interface {
	storage.UserStore
}

type Flow struct {
	store   Store
	chef    llm.Completer
	events  analytics.Recorder
	timeout time.Duration
	logger  *zap.Logger
}

// New creates the cooking flow. chef may be nil.
func New(store Store, chef llm.Completer, events analytics.Recorder, timeout time.Duration, logger *zap.Logger) *Flow {
	return &Flow{store: store, chef: chef, events: events, timeout: timeout, logger: logger}
}

func (f *Flow) Name() string { return Name }

func (f *Flow) Kinds() []dialogue.Kind {
	return []dialogue.Kind{dialogue.KindIdle, KindAskName, KindAskIngredients, KindChooseRecipe, KindCooking}
}

func (f *Flow) Start(ctx context.Context, t *dialogue.Turn) error {
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventStart, "")
	t.Goto(KindAskName.Stage())
	t.Say(msgGreeting, &dialogue.Keyboard{Remove: true})
	return nil
}

func (f *Flow) Handle(ctx context.Context, t *dialogue.Turn) error {
	if t.Event.Type == dialogue.EventCallback {
		return f.handleCallback(ctx, t)
	}

	// Any other command is not an answer to the current question
	if t.Event.Type == dialogue.EventCommand {
		address, err := f.address(ctx, t.User.ID)
		if err != nil {
			return err
		}
		t.Say(fmt.Sprintf(msgUnknownCommand, address), nil)
		return nil
	}

	text := strings.TrimSpace(t.Event.Text)
	if gender, ok := GenderCorrection(text); ok {
		if err := f.store.SetUserGender(ctx, t.User.ID, gender); err != nil {
			return err
		}
		t.Say(fmt.Sprintf("Понял, %s! Буду так к тебе обращаться.", Address(gender)), nil)
		return nil
	}

	switch t.Stage.Kind {
	case KindAskName:
		return f.handleName(ctx, t, text)
	case KindChooseRecipe:
		if n, err := strconv.Atoi(text); err == nil {
			ids := strings.Split(t.Get("matches"), ",")
			if n >= 1 && n <= len(ids) {
				return f.startRecipe(ctx, t, ids[n-1])
			}
		}
		// a new product list restarts the search
		if len(ParseIngredients(text)) >= 2 {
			return f.handleIngredients(ctx, t, text)
		}
		t.Say(msgChoose, nil)
		return nil
	case KindCooking:
		if isNext(text) {
			return f.nextStep(ctx, t)
		}
		return f.smallTalk(ctx, t, text)
	default:
		// idle and ask_ingredients both accept a product list
		if t.Stage.Kind == dialogue.KindIdle && text == "" {
			address, err := f.address(ctx, t.User.ID)
			if err != nil {
				return err
			}
			t.Say(fmt.Sprintf(msgIdle, address), nil)
			return nil
		}
		return f.handleIngredients(ctx, t, text)
	}
}

func (f *Flow) address(ctx context.Context, userID string) (string, error) {
	user, err := f.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return Address(models.GenderUnknown), nil
	}
	return Address(user.Gender), nil
}

func (f *Flow) handleName(ctx context.Context, t *dialogue.Turn, text string) error {
	name := ExtractName(text)
	if name == "" {
		t.Say(msgNoName, nil)
		return nil
	}
	t.Set("name", name)

	if gender := GenderByName(name); gender != models.GenderUnknown {
		if err := f.store.SetUserGender(ctx, t.User.ID, gender); err != nil {
			return err
		}
	}
	address, err := f.address(ctx, t.User.ID)
	if err != nil {
		return err
	}

	t.Goto(KindAskIngredients.Stage())
	t.Say(fmt.Sprintf("Приятно познакомиться, %s! Что есть в холодильнике, %s? Перечисли продукты через запятую.", name, address), nil)
	return nil
}

func (f *Flow) handleIngredients(ctx context.Context, t *dialogue.Turn, text string) error {
	address, err := f.address(ctx, t.User.ID)
	if err != nil {
		return err
	}

	have := ParseIngredients(text)
	if len(have) == 0 {
		t.Say(fmt.Sprintf(msgNoIngredients, address), nil)
		return nil
	}

	matches := FindRecipes(have)
	if len(matches) == 0 {
		t.Goto(KindAskIngredients.Stage())
		t.Say(fmt.Sprintf(msgNoRecipes, address), nil)
		return nil
	}
	if len(matches) > maxListed {
		matches = matches[:maxListed]
	}

	ids := make([]string, 0, len(matches))
	buttons := make([]dialogue.Button, 0, len(matches))
	var b strings.Builder
	fmt.Fprintf(&b, "Вот что можно приготовить, %s:\n", address)
	for i, m := range matches {
		ids = append(ids, m.Recipe.ID)
		buttons = append(buttons, dialogue.Button{Text: m.Recipe.Name, Data: "recipe|" + m.Recipe.ID})
		fmt.Fprintf(&b, "\n%d. %s (~%d мин)", i+1, m.Recipe.Name, m.Recipe.CookMinutes)
		if len(m.MissingRequired) > 0 {
			fmt.Fprintf(&b, " — не хватает: %s", strings.Join(m.MissingRequired, ", "))
		}
	}

	t.Set("ingredients", strings.Join(have, ", "))
	t.Set("matches", strings.Join(ids, ","))
	t.Goto(KindChooseRecipe.Stage())
	t.Say(b.String(), dialogue.InlineColumn(buttons...))
	return nil
}

func (f *Flow) handleCallback(ctx context.Context, t *dialogue.Turn) error {
	data := t.Event.Data
	switch {
	case strings.HasPrefix(data, "recipe|"):
		if t.Stage.Kind != KindChooseRecipe {
			t.Say(msgStale, nil)
			return nil
		}
		return f.startRecipe(ctx, t, strings.TrimPrefix(data, "recipe|"))
	case data == "step|next":
		if t.Stage.Kind != KindCooking {
			t.Say(msgStale, nil)
			return nil
		}
		return f.nextStep(ctx, t)
	}
	t.Say(msgUnknownAction, nil)
	return nil
}

func (f *Flow) startRecipe(ctx context.Context, t *dialogue.Turn, id string) error {
	recipe, ok := FindRecipe(id)
	if !ok {
		t.Say(msgChoose, nil)
		return nil
	}

	t.Set("recipe", recipe.ID)
	t.Goto(KindCooking.At(0))

	header := fmt.Sprintf("Готовим «%s», примерно %d минут.", recipe.Name, recipe.CookMinutes)
	have := ParseIngredients(t.Get("ingredients"))
	var missing []string
	for _, req := range recipe.Required {
		if !hasIngredient(have, req) {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		header += " Докупи: " + strings.Join(missing, ", ") + "."
	}
	t.Say(header, nil)
	f.sayStep(t, recipe, 0)
	return nil
}

func (f *Flow) currentRecipe(t *dialogue.Turn) (models.Recipe, bool) {
	recipe, ok := FindRecipe(t.Get("recipe"))
	if !ok || t.Stage.Index < 0 || t.Stage.Index >= len(recipe.Steps) {
		return models.Recipe{}, false
	}
	return recipe, true
}

func (f *Flow) sayStep(t *dialogue.Turn, recipe models.Recipe, i int) {
	t.Say(fmt.Sprintf("Шаг %d/%d. %s", i+1, len(recipe.Steps), recipe.Steps[i]),
		dialogue.InlineRow(dialogue.Button{Text: "Дальше ▶️", Data: "step|next"}))
}

func (f *Flow) nextStep(ctx context.Context, t *dialogue.Turn) error {
	recipe, ok := f.currentRecipe(t)
	if !ok {
		t.Reset()
		t.Say(msgStale, nil)
		return nil
	}

	next := t.Stage.Index + 1
	if next < len(recipe.Steps) {
		t.Goto(KindCooking.At(next))
		f.sayStep(t, recipe, next)
		return nil
	}

	address, err := f.address(ctx, t.User.ID)
	if err != nil {
		return err
	}
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventRecipeFinished, recipe.ID)
	t.Reset()
	t.Say(fmt.Sprintf("Готово! Приятного аппетита, %s! Захочешь ещё — перечисли продукты.", address), nil)
	return nil
}

func (f *Flow) smallTalk(ctx context.Context, t *dialogue.Turn, text string) error {
	recipe, ok := f.currentRecipe(t)
	if !ok {
		t.Reset()
		t.Say(msgStale, nil)
		return nil
	}
	address, err := f.address(ctx, t.User.ID)
	if err != nil {
		return err
	}
	step := t.Stage.Index

	switch DetectIntent(text) {
	case IntentThanks:
		t.Say(fmt.Sprintf(msgThanks, address), nil)
		return nil
	case IntentAboutBot:
		t.Say(fmt.Sprintf(msgAboutBot, address), nil)
		return nil
	case IntentComplaint:
		t.Say(fmt.Sprintf(msgComplaint, address), nil)
		f.sayStep(t, recipe, step)
		return nil
	case IntentHowTo, IntentHelp:
		t.Say(fmt.Sprintf(msgHelp, address), nil)
		f.sayStep(t, recipe, step)
		return nil
	}

	if f.chef != nil && text != "" {
		prompt := fmt.Sprintf("Готовим «%s». Сейчас шаг %d из %d: %s\nОбращайся к собеседнику «%s». Вопрос: %s",
			recipe.Name, step+1, len(recipe.Steps), recipe.Steps[step], address, text)
		answer := collab.Call(ctx, f.timeout, func(ctx context.Context) (string, error) {
			return f.chef.Complete(ctx, chefSystemPrompt, prompt)
		})
		if answer.OK {
			t.Say(answer.Value, nil)
			return nil
		}
		f.logger.Debug("Chef answer unavailable", zap.String("reason", answer.Reason))
	}

	f.sayStep(t, recipe, step)
	return nil
}
