// Package filter scrubs user and assistant text: masks banned words,
// redacts phone numbers and street addresses, and strips emoji and
// emoticon noise before the text reaches speech synthesis.
package filter

import (
	"regexp"
	"strings"
	"sync"
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{3}\b`),
	regexp.MustCompile(`\b\+?\d{1,3}[-.]?\d{2,3}[-.]?\d{2,3}[-.]?\d{2,3}\b`),
	regexp.MustCompile(`\b\d{9}\b`),
}

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:Calle|Avenida|Plaza|Paseo)\s+[A-Za-záéíóúÁÉÍÓÚñÑ\s]+\s+\d+\b`),
	regexp.MustCompile(`\b\d+\s+(?:Calle|Avenida|Plaza|Paseo)\s+[A-Za-záéíóúÁÉÍÓÚñÑ\s]+\b`),
	regexp.MustCompile(`\b[A-Za-záéíóúÁÉÍÓÚñÑ\s]+\s+\d+\s+(?:1º|2º|3º|4º|5º|6º|7º|8º|9º|10º)\b`),
}

// emojiPattern covers the supplementary-plane emoji blocks plus flags.
var emojiPattern = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1F1E0}-\x{1F1FF}\x{2600}-\x{27BF}]+`)

// emoticonPhrases are spoken or typed emotion markers the voice should
// never utter. Word-like entries match case-insensitively on word
// boundaries; symbol entries are removed literally.
var emoticonPhrases = []string{
	"cara sonriente", "carita feliz", "emoticono", "guiño", "risas",
	"jaja", "jeje", "xd", "uwu", "owo", "nwn", "twt", "t_t", "u_u",
	"n_n", "^-^",
}

var emoticonSymbols = []string{
	":-)", ":-(", ";-)", ":-D", ":-P", ":-o", ":-O", ":-|", ":-*",
	":-$", ":-@", ":-#", ":-&", ":-/", `:-\`,
	":)", ":(", ";)", ":D", ":P", ":3", ":v", ":o", ":O", ":|", ":*",
	":$", ":@", ":#", ":&", ":/", `:\`, ":]", ":[", ":>", ":<", ":}", ":{",
}

// Filter applies the configured scrubbing rules to text.
type Filter struct {
	mu             sync.RWMutex
	banned         map[string]struct{}
	phonePatterns  bool
	streetPatterns bool
	phraseRules    []*regexp.Regexp
}

// Config selects which rule groups run.
type Config struct {
	BannedWords        []string
	FilterPhoneNumbers bool
	FilterAddresses    bool
}

// DefaultConfig enables number and address redaction with no banned
// words.
func DefaultConfig() Config {
	return Config{
		FilterPhoneNumbers: true,
		FilterAddresses:    true,
	}
}

// New builds a Filter from cfg.
func New(cfg Config) *Filter {
	f := &Filter{
		banned:         make(map[string]struct{}, len(cfg.BannedWords)),
		phonePatterns:  cfg.FilterPhoneNumbers,
		streetPatterns: cfg.FilterAddresses,
	}
	for _, w := range cfg.BannedWords {
		f.banned[strings.ToLower(w)] = struct{}{}
	}
	for _, phrase := range emoticonPhrases {
		f.phraseRules = append(f.phraseRules, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(phrase)+`\b`))
	}
	return f
}

// Apply runs every configured rule over text and returns the scrubbed
// result. Empty input passes through.
func (f *Filter) Apply(text string) string {
	if text == "" {
		return text
	}

	text = f.maskBannedWords(text)

	if f.phonePatterns {
		for _, p := range phonePatterns {
			text = p.ReplaceAllString(text, "[NÚMERO DE TELÉFONO]")
		}
	}
	if f.streetPatterns {
		for _, p := range addressPatterns {
			text = p.ReplaceAllString(text, "[DIRECCIÓN]")
		}
	}

	text = emojiPattern.ReplaceAllString(text, "")
	for _, rule := range f.phraseRules {
		text = rule.ReplaceAllString(text, "")
	}
	for _, sym := range emoticonSymbols {
		text = strings.ReplaceAll(text, sym, "")
	}

	return strings.TrimSpace(text)
}

// maskBannedWords replaces each banned word with asterisks of the same
// length, preserving word positions.
func (f *Filter) maskBannedWords(text string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.banned) == 0 {
		return text
	}
	words := strings.Fields(text)
	for i, word := range words {
		if _, ok := f.banned[strings.ToLower(word)]; ok {
			words[i] = strings.Repeat("*", len([]rune(word)))
		}
	}
	return strings.Join(words, " ")
}

// AddBannedWord adds a word to the banned set.
func (f *Filter) AddBannedWord(word string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned[strings.ToLower(word)] = struct{}{}
}

// RemoveBannedWord removes a word from the banned set, reporting
// whether it was present.
func (f *Filter) RemoveBannedWord(word string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(word)
	if _, ok := f.banned[key]; !ok {
		return false
	}
	delete(f.banned, key)
	return true
}

// BannedWords returns the current banned set.
func (f *Filter) BannedWords() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.banned))
	for w := range f.banned {
		out = append(out, w)
	}
	return out
}
