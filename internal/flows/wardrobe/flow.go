// Package wardrobe is the outfit advisor: a style survey, wardrobe entry and a
// daily outfit recommendation based on the weather, destination and mood.
package wardrobe

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
	"tgbots/internal/collab/weather"
	"tgbots/internal/dialogue"
	"tgbots/internal/models"
	"tgbots/internal/storage"
)

// Name identifies the bot variant
const Name = "wardrobe"

const (
	KindSurvey   dialogue.Kind = "psych"
	KindWardrobe dialogue.Kind = "wardrobe"
	KindAskCity  dialogue.Kind = "ask_city"
	KindAskDest  dialogue.Kind = "ask_dest"
	KindAskMood  dialogue.Kind = "ask_mood"
)

const (
	msgWelcome = "Привет! Я помогу подобрать образ на сегодня исходя из погоды, настроения, гардероба и целей.\n\n" +
		"Начните с заполнения профиля и гардероба или сразу нажмите ‘🌤️ Что сегодня надеть?’"
	msgIdle            = "Выберите действие на клавиатуре ниже или отправьте /start, чтобы начать сначала."
	msgChooseOption    = "Пожалуйста, выберите вариант кнопкой под вопросом."
	msgProfileSaved    = "✅ Профиль сохранён!"
	msgProfileNext     = "Теперь заполним гардероб."
	msgWardrobeStart   = "Заполним гардероб. Перечислите через ‘;’ что у вас есть в категории ‘Базовые вещи’.\nНапример: белая футболка; чёрный свитшот; бежевый лонгслив"
	msgWardrobeEmpty   = "Не поняла список. Перечислите вещи через ‘;’ или отправьте «-», чтобы пропустить категорию."
	msgWardrobeSaved   = "✅ Гардероб сохранён!"
	msgAskCity         = "Введите ваш город для определения погоды (например: Москва)"
	msgCityNotFound    = "Не нашла город. Повторите, например: Санкт-Петербург"
	msgWeatherFailed   = "Не удалось получить погоду. Попробуйте ещё раз или введите другой город."
	msgAskDestination  = "Куда вы направляетесь?"
	msgAskMood         = "Какое у вас настроение?"
	msgUnknownAction   = "Неизвестное действие"
	msgUnknownCommand  = "Не поняла команду. Продолжим с того же места или отправьте /start, чтобы начать сначала."
	msgStaleButton     = "Эта кнопка уже неактуальна. Нажмите ‘🌤️ Что сегодня надеть?’, чтобы начать заново."
	msgSurveyCompleted = "Опрос уже завершён. Чтобы пройти его заново, нажмите ‘🧠 Пройти опрос профиля’."
	msgStylistPrefix   = "💬 Совет стилиста:\n"
)

const stylistSystemPrompt = "Ты внимательный и тактичный женский стилист-консультант."

// Store is the persistence the flow needs besides the session
type Store interface {
	storage.ProfileStore
	storage.WardrobeStore
}

type Flow struct {
	store   Store
	weather weather.Provider
	stylist llm.Completer
	events  analytics.Recorder
	timeout time.Duration
	logger  *zap.Logger
}

// New creates the wardrobe flow. stylist may be nil.
func New(store Store, provider weather.Provider, stylist llm.Completer, events analytics.Recorder, timeout time.Duration, logger *zap.Logger) *Flow {
	return &Flow{
		store:   store,
		weather: provider,
		stylist: stylist,
		events:  events,
		timeout: timeout,
		logger:  logger,
	}
}

func (f *Flow) Name() string { return Name }

func (f *Flow) Kinds() []dialogue.Kind {
	return []dialogue.Kind{dialogue.KindIdle, KindSurvey, KindWardrobe, KindAskCity, KindAskDest, KindAskMood}
}

// Start greets the user and opens the survey when there is no profile yet
func (f *Flow) Start(ctx context.Context, t *dialogue.Turn) error {
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventStart, "")
	t.Say(msgWelcome, mainKeyboard())

	profile, err := f.store.GetProfile(ctx, t.User.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		f.startSurvey(t)
	}
	return nil
}

func (f *Flow) Handle(ctx context.Context, t *dialogue.Turn) error {
	ev := t.Event

	if ev.Type == dialogue.EventCallback {
		return f.handleCallback(ctx, t)
	}

	// Menu entries restart their flow from any stage
	switch {
	case ev.Text == ButtonSurvey || ev.IsCommand("survey"):
		t.Reset()
		f.startSurvey(t)
		return nil
	case ev.Text == ButtonWardrobe || ev.IsCommand("wardrobe"):
		t.Reset()
		f.startWardrobe(t)
		return nil
	case ev.Text == ButtonOutfit || ev.IsCommand("outfit"):
		t.Reset()
		t.Goto(KindAskCity.Stage())
		t.Say(msgAskCity, nil)
		return nil
	}

	// Any other command is not an answer to the current question
	if ev.Type == dialogue.EventCommand {
		t.Say(msgUnknownCommand, nil)
		return nil
	}

	switch t.Stage.Kind {
	case KindSurvey:
		t.Say(msgChooseOption, nil)
		f.askQuestion(t, t.Stage.Index)
	case KindWardrobe:
		return f.handleWardrobe(ctx, t)
	case KindAskCity:
		return f.handleCity(ctx, t)
	case KindAskDest:
		t.Say(msgAskDestination, optionsKeyboard(Destinations))
	case KindAskMood:
		t.Say(msgAskMood, optionsKeyboard(Moods))
	default:
		t.Say(msgIdle, mainKeyboard())
	}
	return nil
}

func (f *Flow) startSurvey(t *dialogue.Turn) {
	t.Goto(KindSurvey.At(0))
	f.askQuestion(t, 0)
}

func (f *Flow) askQuestion(t *dialogue.Turn, idx int) {
	if idx < 0 || idx >= len(Questions) {
		idx = 0
		t.Goto(KindSurvey.At(0))
	}
	q := Questions[idx]
	t.Say(fmt.Sprintf("%d/%d. %s", idx+1, len(Questions), q.Text), questionKeyboard(q))
}

func (f *Flow) handleCallback(ctx context.Context, t *dialogue.Turn) error {
	data := t.Event.Data
	switch {
	case strings.HasPrefix(data, "psych|"):
		return f.handleSurveyAnswer(ctx, t, data)
	case strings.HasPrefix(data, "dest_"):
		if t.Stage.Kind != KindAskDest {
			t.Say(msgStaleButton, nil)
			return nil
		}
		if _, ok := findOption(Destinations, data); !ok {
			t.Say(msgAskDestination, optionsKeyboard(Destinations))
			return nil
		}
		t.Set("destination", data)
		t.Goto(KindAskMood.Stage())
		t.Say(msgAskMood, optionsKeyboard(Moods))
		return nil
	case strings.HasPrefix(data, "mood_"):
		if t.Stage.Kind != KindAskMood {
			t.Say(msgStaleButton, nil)
			return nil
		}
		if _, ok := findOption(Moods, data); !ok {
			t.Say(msgAskMood, optionsKeyboard(Moods))
			return nil
		}
		t.Set("mood", data)
		return f.recommend(ctx, t)
	}
	t.Say(msgUnknownAction, nil)
	return nil
}

func (f *Flow) handleSurveyAnswer(ctx context.Context, t *dialogue.Turn, data string) error {
	if t.Stage.Kind != KindSurvey {
		t.Say(msgSurveyCompleted, mainKeyboard())
		return nil
	}

	parts := strings.SplitN(data, "|", 3)
	idx := t.Stage.Index
	if idx < 0 || idx >= len(Questions) {
		f.startSurvey(t)
		return nil
	}
	q := Questions[idx]
	if len(parts) != 3 || parts[1] != q.Key || !contains(q.Options, parts[2]) {
		// a button of an earlier question or a forged payload
		f.askQuestion(t, idx)
		return nil
	}

	t.Set(q.Key, parts[2])
	if idx+1 < len(Questions) {
		t.Goto(KindSurvey.At(idx + 1))
		f.askQuestion(t, idx+1)
		return nil
	}

	answers := make(map[string]string, len(Questions))
	for _, q := range Questions {
		answers[q.Key] = t.Get(q.Key)
	}
	if err := f.store.SaveProfile(ctx, models.Profile{UserID: t.User.ID, Answers: answers}); err != nil {
		return err
	}
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventProfileCompleted, answers["psych_q3"])

	t.Reset()
	t.Say(msgProfileSaved, nil)
	t.Say(msgProfileNext, mainKeyboard())
	return nil
}

func (f *Flow) startWardrobe(t *dialogue.Turn) {
	t.Goto(KindWardrobe.At(0))
	t.Say(msgWardrobeStart, nil)
}

func (f *Flow) handleWardrobe(ctx context.Context, t *dialogue.Turn) error {
	idx := t.Stage.Index
	if idx < 0 || idx >= len(Categories) {
		f.startWardrobe(t)
		return nil
	}

	text := t.Event.Text
	switch {
	case isSkip(text):
	case len(ParseItems(text)) > 0:
		t.Set(payloadKey(Categories[idx].Code), strings.Join(ParseItems(text), "; "))
	default:
		t.Say(msgWardrobeEmpty, nil)
		return nil
	}

	if idx+1 < len(Categories) {
		t.Goto(KindWardrobe.At(idx + 1))
		t.Say(fmt.Sprintf("Категория: %s. Перечислите через ‘;’.", Categories[idx+1].Label), nil)
		return nil
	}

	items := buildItems(t.User.ID, t.Payload)
	if err := f.store.AddWardrobeItems(ctx, items); err != nil {
		return err
	}
	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventWardrobeCompleted, strconv.Itoa(len(items)))

	t.Reset()
	t.Say(msgWardrobeSaved, mainKeyboard())
	return nil
}

func (f *Flow) handleCity(ctx context.Context, t *dialogue.Turn) error {
	city := strings.TrimSpace(t.Event.Text)
	if city == "" {
		t.Say(msgAskCity, nil)
		return nil
	}

	place := collab.Call(ctx, f.timeout, func(ctx context.Context) (models.Place, error) {
		return f.weather.Geocode(ctx, city)
	})
	if !place.OK {
		f.logger.Info("Geocoding unavailable", zap.String("city", city), zap.String("reason", place.Reason))
		if place.NotFound() {
			t.Say(msgCityNotFound, nil)
		} else {
			t.Say(msgWeatherFailed, nil)
		}
		return nil
	}

	current := collab.Call(ctx, f.timeout, func(ctx context.Context) (models.Weather, error) {
		return f.weather.Current(ctx, place.Value)
	})
	if !current.OK {
		f.logger.Info("Weather unavailable", zap.String("city", place.Value.Name), zap.String("reason", current.Reason))
		t.Say(msgWeatherFailed, nil)
		return nil
	}

	w := current.Value
	t.Set("city", place.Value.Name)
	t.Set("lat", formatNumber(place.Value.Lat))
	t.Set("lon", formatNumber(place.Value.Lon))
	t.Set("temperature", formatNumber(w.Temperature))
	t.Set("precipitation", formatNumber(w.Precipitation))
	t.Set("wind", formatNumber(w.Wind))
	t.Goto(KindAskDest.Stage())

	t.Say(fmt.Sprintf("Погода в %s: %s", place.Value.Name, PrettyWeather(&w)), nil)
	t.Say(msgAskDestination, optionsKeyboard(Destinations))
	return nil
}

// weatherFromPayload returns nil unless a temperature was stored
func weatherFromPayload(t *dialogue.Turn) *models.Weather {
	temperature, err := strconv.ParseFloat(t.Get("temperature"), 64)
	if err != nil {
		return nil
	}
	w := &models.Weather{Temperature: temperature}
	w.Precipitation, _ = strconv.ParseFloat(t.Get("precipitation"), 64)
	w.Wind, _ = strconv.ParseFloat(t.Get("wind"), 64)
	return w
}

func (f *Flow) recommend(ctx context.Context, t *dialogue.Turn) error {
	profile, err := f.store.GetProfile(ctx, t.User.ID)
	if err != nil {
		return err
	}
	items, err := f.store.ListWardrobe(ctx, t.User.ID)
	if err != nil {
		return err
	}

	in := Input{
		Weather:     weatherFromPayload(t),
		Wardrobe:    items,
		Destination: t.Get("destination"),
		Mood:        t.Get("mood"),
	}
	if profile != nil {
		in.Answers = profile.Answers
	}

	t.Say(fmt.Sprintf("Погода: %s\n\n%s", PrettyWeather(in.Weather), Recommend(in)), mainKeyboard())

	if f.stylist != nil {
		prompt := stylistPrompt(in, t.Get("city"))
		advice := collab.Call(ctx, f.timeout, func(ctx context.Context) (string, error) {
			return f.stylist.Complete(ctx, stylistSystemPrompt, prompt)
		})
		if advice.OK {
			t.Say(msgStylistPrefix+advice.Value, nil)
		} else {
			f.logger.Debug("Stylist advice unavailable", zap.String("reason", advice.Reason))
		}
	}

	analytics.Track(ctx, f.events, f.logger, Name, t.User.ID, analytics.EventRecommendation, in.Destination+","+in.Mood)
	t.Reset()
	return nil
}

func stylistPrompt(in Input, city string) string {
	dest, _ := findOption(Destinations, in.Destination)
	mood, _ := findOption(Moods, in.Mood)
	weatherLine := "Погода: недоступна"
	if in.Weather != nil {
		weatherLine = "Погода в " + city + ": " + PrettyWeather(in.Weather)
	}

	var b strings.Builder
	b.WriteString("Вы выступаете как женский стилист и психолог. ")
	b.WriteString("Дайте конкретную рекомендацию по образу с учётом цели (место), настроения и погоды. ")
	fmt.Fprintf(&b, "Место: %s. Настроение: %s. %s. ", dest.Label, mood.Label, weatherLine)
	if len(in.Wardrobe) > 0 {
		names := make([]string, 0, len(in.Wardrobe))
		for _, item := range in.Wardrobe {
			names = append(names, item.Name)
		}
		fmt.Fprintf(&b, "В гардеробе есть: %s. ", strings.Join(names, "; "))
	}
	if character := in.Answers["psych_q3"]; character != "" {
		fmt.Fprintf(&b, "Характер: %s. ", character)
	}
	b.WriteString("Используйте структуру: Верх, Низ, Обувь, Верхняя одежда (если нужно), Украшения, Макияж. ")
	b.WriteString("Коротко и по делу (5-8 пунктов).")
	return b.String()
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
