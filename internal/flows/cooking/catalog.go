package cooking

import "tgbots/internal/models"

// Catalog is the static recipe book
var Catalog = []models.Recipe{
	{
		ID:          "carbonara",
		Name:        "Паста карбонара",
		Required:    []string{"макароны", "яйца", "бекон"},
		Optional:    []string{"сыр", "чеснок", "перец"},
		CookMinutes: 25,
		Steps: []string{
			"Поставь кастрюлю с водой на огонь, посоли, как закипит — вари макароны по времени с пачки.",
			"Пока варятся, нарежь бекон полосками и обжарь на сухой сковороде до хруста.",
			"В миске взбей яйца с тёртым сыром и щедро поперчи.",
			"Слей макароны, оставь полстакана воды, и сразу отправь их к бекону, сними с огня.",
			"Влей яичную смесь, быстро перемешай, добавляя воду от макарон, пока соус не станет кремовым.",
		},
	},
	{
		ID:          "borsch",
		Name:        "Борщ",
		Required:    []string{"говядина", "свекла", "капуста", "картофель"},
		Optional:    []string{"морковь", "лук", "томатная паста", "сметана"},
		CookMinutes: 120,
		Steps: []string{
			"Залей говядину холодной водой, доведи до кипения, сними пену и вари час на слабом огне.",
			"Свеклу натри, обжарь с ложкой уксуса или томатной пасты минут десять.",
			"Лук и морковь порежь и обжарь отдельно до мягкости.",
			"В бульон брось картошку кубиками, через десять минут — нашинкованную капусту.",
			"Добавь зажарку и свеклу, посоли, провари ещё десять минут и дай настояться.",
		},
	},
	{
		ID:          "omelet",
		Name:        "Омлет",
		Required:    []string{"яйца", "молоко"},
		Optional:    []string{"сыр", "помидоры", "зелень"},
		CookMinutes: 10,
		Steps: []string{
			"Взбей яйца с молоком и щепоткой соли.",
			"Разогрей сковороду с маслом, вылей смесь и накрой крышкой.",
			"Через пять минут на малом огне посыпь сыром, подожди минуту и подавай.",
		},
	},
	{
		ID:          "fried_potatoes",
		Name:        "Жареная картошка",
		Required:    []string{"картофель", "масло"},
		Optional:    []string{"лук", "чеснок", "укроп"},
		CookMinutes: 30,
		Steps: []string{
			"Почисть картошку и нарежь соломкой, промокни полотенцем.",
			"Разогрей масло на сковороде, выложи картошку одним слоем и не трогай пять минут.",
			"Переверни, добавь лук, жарь до золотистой корочки, посоли в самом конце.",
		},
	},
	{
		ID:          "buckwheat_chicken",
		Name:        "Гречка с курицей",
		Required:    []string{"гречка", "курица"},
		Optional:    []string{"лук", "морковь", "сметана"},
		CookMinutes: 40,
		Steps: []string{
			"Нарежь курицу кусочками и обжарь до румяности.",
			"Добавь лук и морковь, жарь ещё пять минут.",
			"Всыпь промытую гречку, залей водой в два раза больше, посоли.",
			"Накрой крышкой и туши на малом огне двадцать минут, пока вода не уйдёт.",
		},
	},
	{
		ID:          "syrniki",
		Name:        "Сырники",
		Required:    []string{"творог", "яйца", "мука"},
		Optional:    []string{"сахар", "сметана", "изюм"},
		CookMinutes: 30,
		Steps: []string{
			"Разомни творог вилкой с яйцом и сахаром.",
			"Подсыпай муку, пока тесто не перестанет липнуть к рукам.",
			"Слепи лепёшки, обваляй в муке.",
			"Жарь на среднем огне по три-четыре минуты с каждой стороны.",
		},
	},
	{
		ID:          "pancakes",
		Name:        "Блины",
		Required:    []string{"мука", "молоко", "яйца"},
		Optional:    []string{"сахар", "масло"},
		CookMinutes: 40,
		Steps: []string{
			"Взбей яйца с сахаром и солью, влей половину молока.",
			"Всыпь муку и размешай без комков, затем долей остальное молоко и ложку масла.",
			"Дай тесту постоять пятнадцать минут.",
			"Жарь тонкие блины на раскалённой сковороде, по минуте с каждой стороны.",
		},
	},
	{
		ID:          "salad",
		Name:        "Овощной салат",
		Required:    []string{"огурцы", "помидоры"},
		Optional:    []string{"лук", "зелень", "сметана", "масло"},
		CookMinutes: 10,
		Steps: []string{
			"Нарежь огурцы и помидоры крупными кусками.",
			"Добавь тонко нарезанный лук и зелень.",
			"Посоли, заправь маслом или сметаной и перемешай перед подачей.",
		},
	},
}

// FindRecipe looks a recipe up by id
func FindRecipe(id string) (models.Recipe, bool) {
	for _, r := range Catalog {
		if r.ID == id {
			return r, true
		}
	}
	return models.Recipe{}, false
}
