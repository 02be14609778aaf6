package factory

import (
	"context"
	"time"

	"github.com/mcoot/emojiguess-go/internal/dependencies/mocks"
	"github.com/mcoot/emojiguess-go/internal/storage/memory"
	"github.com/mcoot/emojiguess-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestCategories loads small word categories for testing. Each category
// comfortably covers the maximum round count.
func (t *TestApp) LoadTestCategories(ctx context.Context) error {
	categories := map[string][]string{
		"Animals": {
			"cat", "dog", "fox", "owl", "bat", "bee", "ant", "elk", "hen", "pig",
			"cow", "ram", "rat", "emu", "yak", "koala", "panda", "tiger", "zebra",
			"horse", "sheep", "goose", "snake", "whale", "shark", "otter", "llama",
			"camel", "bison", "moose", "lemur", "sloth", "gecko", "hyena", "raven",
		},
		"Food": {
			"apple", "bread", "grape", "lemon", "mango", "olive", "onion", "peach",
			"pasta", "pizza", "salad", "sushi", "bacon", "berry", "candy", "chili",
			"cream", "curry", "donut", "fudge", "honey", "jelly", "melon", "mochi",
			"nacho", "ramen", "scone", "steak", "taco", "toast", "wafer", "bagel",
		},
		"Movies": {
			"alien", "rocky", "jaws", "heat", "seven", "shrek", "brave", "coco",
			"dune", "tron", "akira", "fargo", "ghost", "joker", "klaus", "moana",
			"psycho", "speed", "titanic", "up", "vertigo", "waterworld", "zodiac",
			"amadeus", "casablanca", "gladiator", "inception", "matrix", "memento",
			"parasite", "whiplash", "goodfellas",
		},
	}

	for name, pool := range categories {
		if err := t.WordsService.LoadCategory(ctx, name, pool); err != nil {
			return err
		}
	}
	return nil
}
