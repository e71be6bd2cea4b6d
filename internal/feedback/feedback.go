package feedback

import (
	"fmt"
	"math/rand"
	"sync"
)

var defaultEmojis = []string{"🎉", "💪", "🎯", "🔥", "⭐", "🚀", "💎", "🏆", "🌟", "✨"}

var defaultPhrases = []string{
	"You're crushing it!",
	"Awesome work!",
	"Keep it up!",
	"You're on fire!",
	"Fantastic!",
	"Well done!",
	"Outstanding!",
}

// Every streak template embeds the count; the pick among them is uniform.
var streakTemplates = []string{
	"🔥 %d Day Streak! Amazing!",
	"⚡ %d Days Strong! Unstoppable!",
	"🌟 %d Day Streak! You're on fire!",
	"🚀 %d Days in a row! Incredible!",
	"💪 %d Day Streak! Keep it up!",
}

// Generator picks celebratory messages. The rand source is injected so tests
// can seed it; there is no package-level random state. One Generator is
// shared by every manager, and *rand.Rand is not safe for concurrent use, so
// draws are serialized here.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	emojis  []string
	phrases []string
}

// Option overrides a default pool. Empty slices are ignored.
type Option func(*Generator)

func WithEmojis(emojis []string) Option {
	return func(g *Generator) {
		if len(emojis) > 0 {
			g.emojis = emojis
		}
	}
}

func WithPhrases(phrases []string) Option {
	return func(g *Generator) {
		if len(phrases) > 0 {
			g.phrases = phrases
		}
	}
}

func New(rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{
		rng:     rng,
		emojis:  defaultEmojis,
		phrases: defaultPhrases,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Completion returns a random emoji paired with a random phrase. Fired once
// per false→true toggle, never on the way back.
func (g *Generator) Completion() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	emoji := g.emojis[g.rng.Intn(len(g.emojis))]
	phrase := g.phrases[g.rng.Intn(len(g.phrases))]
	return emoji + " " + phrase
}

// Streak returns a celebration embedding the streak count n.
func (g *Generator) Streak(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	tpl := streakTemplates[g.rng.Intn(len(streakTemplates))]
	return fmt.Sprintf(tpl, n)
}
