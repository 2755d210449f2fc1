package service

import "strings"

// soundKeyword строка таблицы: ключевое слово, название эффекта, поисковый запрос и громкость.
type soundKeyword struct {
	Keyword string
	Effect  string
	Query   string
	Volume  float64
}

// soundKeywordTable порядок важен: при равной позиции в тексте побеждает запись выше.
var soundKeywordTable = []soundKeyword{
	{"door", "door", "door creak", 0.6},
	{"knock", "knock", "door knock", 0.6},
	{"creak", "creak", "wood creak", 0.5},
	{"thunder", "thunder", "thunder rumble", 0.7},
	{"storm", "storm", "storm ambience", 0.6},
	{"rain", "rain", "gentle rain", 0.4},
	{"wind", "wind", "wind howling", 0.4},
	{"forest", "forest", "forest ambience", 0.4},
	{"river", "river", "river stream", 0.4},
	{"ocean", "ocean", "ocean waves", 0.4},
	{"sea", "sea", "ocean waves", 0.4},
	{"wave", "waves", "ocean waves", 0.4},
	{"fire", "fire", "campfire crackling", 0.5},
	{"bird", "birds", "birds chirping", 0.4},
	{"owl", "owl", "owl hoot", 0.5},
	{"wolf", "wolf", "wolf howl", 0.6},
	{"dog", "dog", "dog bark", 0.5},
	{"cat", "cat", "cat meow", 0.5},
	{"horse", "horse", "horse gallop", 0.6},
	{"dragon", "dragon", "dragon roar", 0.7},
	{"magic", "magic", "magic sparkle", 0.5},
	{"bell", "bell", "bell ring", 0.5},
	{"clock", "clock", "clock ticking", 0.4},
	{"footstep", "footsteps", "footsteps", 0.5},
	{"laugh", "laughter", "children laughing", 0.5},
	{"night", "night", "night crickets", 0.3},
}

func lookupSoundKeyword(word string) (soundKeyword, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	for _, k := range soundKeywordTable {
		if k.Keyword == word {
			return k, true
		}
	}
	return soundKeyword{}, false
}

// matchParagraph выбирает ключевое слово, которое встречается в абзаце раньше всех.
// matched содержит все слова таблицы, найденные в абзаце, в порядке таблицы.
func matchParagraph(text string) (best soundKeyword, matched []string, ok bool) {
	lower := strings.ToLower(text)
	bestPos := -1
	for _, k := range soundKeywordTable {
		pos := strings.Index(lower, k.Keyword)
		if pos < 0 {
			continue
		}
		matched = append(matched, k.Keyword)
		if bestPos < 0 || pos < bestPos {
			best, bestPos = k, pos
		}
	}
	return best, matched, bestPos >= 0
}
