package receipt

// categories is the bill category vocabulary, in prompt order.
var categories = []string{
	"Grocery",
	"Food",
	"Travel",
	"OTT",
	"Fuel",
	"Electronics",
	"Healthcare",
	"Fashion",
	"Utility Bills",
	"Entertainment",
	"Mobile Recharge",
	"Insurance",
	"Education",
	"Home Services",
	"Others",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		m[c] = struct{}{}
	}
	return m
}()

// Categories returns the category vocabulary.
func Categories() []string {
	c := make([]string, len(categories))
	copy(c, categories)
	return c
}

// NormalizeCategory maps unknown or empty categories to "Others".
func NormalizeCategory(c string) string {
	if _, ok := categorySet[c]; ok {
		return c
	}
	return "Others"
}
