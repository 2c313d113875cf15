package bot

import (
	"math/rand"
	"strings"

	"github.com/dodobird181/sambot2/internal/models"
)

// defaultPills is the fixed pool of suggested follow-up questions.
var defaultPills = []string{
	"What are your hobbies?",
	"Tell me about your work experience?",
	"What is your educational background?",
	"What projects are you most proud of?",
	"What's your favorite programming language?",
	"Where are you based?",
	"What kind of music do you listen to?",
	"What are you looking for in your next role?",
}

// similarityThreshold is the normalized edit distance below which a
// pill counts as "already asked".
const similarityThreshold = 0.35

// Pills suggests up to n follow-up questions, skipping any that are
// too similar to questions the user already asked.
type Pills struct {
	pool []string
	rand *rand.Rand
}

// NewPills creates a suggester over the default question pool.
func NewPills(src rand.Source) *Pills {
	return &Pills{pool: defaultPills, rand: rand.New(src)}
}

// Suggest samples n pills not yet covered by the conversation.
func (p *Pills) Suggest(convo *models.Conversation, n int) []string {
	asked := convo.UserQuestions()

	var candidates []string
	for _, pill := range p.pool {
		if !alreadyAsked(pill, asked) {
			candidates = append(candidates, pill)
		}
	}

	p.rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func alreadyAsked(pill string, asked []string) bool {
	for _, q := range asked {
		if similarity(pill, q) < similarityThreshold {
			return true
		}
	}
	return false
}

// similarity is the edit distance between the lowercased strings,
// normalized by the longer length. 0 means identical.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 0
	}
	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	if longer == 0 {
		return 0
	}
	return float64(levenshtein(a, b)) / float64(longer)
}

// levenshtein computes the edit distance with the usual two-row
// dynamic program.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
