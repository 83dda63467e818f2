package cooking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgbots/internal/models"
)

func ids(matches []models.RecipeMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Recipe.ID)
	}
	return out
}

func TestSameIngredient(t *testing.T) {
	tests := []struct {
		have, want string
		same       bool
	}{
		{"картошка", "картофель", true},
		{"яйцо", "яйца", true},
		{"сыра", "сыр", true},
		{"свёкла", "свекла", true},
		{"курицу", "курица", true},
		{"сметаны", "сметана", true},
		{"томатная паста", "томатная паста", true},
		{"молоко", "мука", false},
		{"сыр", "сахар", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.same, sameIngredient(tt.have, tt.want), "%q vs %q", tt.have, tt.want)
	}
}

func TestFindRecipes_Carbonara(t *testing.T) {
	matches := FindRecipes([]string{"макароны", "яйца", "бекон", "сыр"})
	require.NotEmpty(t, matches)
	assert.Equal(t, "carbonara", matches[0].Recipe.ID)
	assert.Empty(t, matches[0].MissingRequired)
}

func TestFindRecipes_BorschWithMissing(t *testing.T) {
	matches := FindRecipes([]string{"говядина", "свекла", "капуста"})
	require.NotEmpty(t, matches)
	assert.Equal(t, "borsch", matches[0].Recipe.ID)
	assert.Equal(t, []string{"картофель"}, matches[0].MissingRequired)
}

func TestFindRecipes_NoMatch(t *testing.T) {
	assert.Empty(t, FindRecipes([]string{"хлеб", "молоко"}))
	assert.Empty(t, FindRecipes(nil))
}

func TestFindRecipes_Ordering(t *testing.T) {
	matches := FindRecipes([]string{"яйца", "молоко", "мука"})
	assert.Equal(t, []string{"pancakes", "omelet", "syrniki"}, ids(matches))
	assert.Equal(t, []string{"творог"}, matches[2].MissingRequired)
}

func TestFindRecipes_Aliases(t *testing.T) {
	matches := FindRecipes([]string{"картошка", "масло", "лук"})
	assert.Equal(t, []string{"fried_potatoes"}, ids(matches))
}

func TestCatalog(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range Catalog {
		assert.False(t, seen[r.ID], "duplicate recipe %s", r.ID)
		seen[r.ID] = true
		assert.NotEmpty(t, r.Required, r.ID)
		assert.NotEmpty(t, r.Steps, r.ID)

		found, ok := FindRecipe(r.ID)
		assert.True(t, ok)
		assert.Equal(t, r.Name, found.Name)
	}
	_, ok := FindRecipe("unknown")
	assert.False(t, ok)
}
