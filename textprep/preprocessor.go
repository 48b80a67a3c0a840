package textprep

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dimuls/textclassifier/entity"
)

// Preprocessor turns raw text into tokens: special characters are stripped,
// the rest is lower-cased, split on whitespace and cleared of stop words.
type Preprocessor struct {
	foldDiacritics bool
	stemLanguage   string

	log *logrus.Entry
}

type Option func(p *Preprocessor)

// WithDiacriticFolding makes the preprocessor drop combining marks before
// stripping, so "café" yields "cafe" instead of "caf".
func WithDiacriticFolding() Option {
	return func(p *Preprocessor) {
		p.foldDiacritics = true
	}
}

// WithStemming replaces every surviving token with its snowball stem.
// Supported languages are those of github.com/kljensen/snowball.
func WithStemming(language string) Option {
	return func(p *Preprocessor) {
		p.stemLanguage = language
	}
}

func NewPreprocessor(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		log: logrus.WithField("subsystem", "text_preprocessor"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process returns tokens of the text. The result may be empty.
func (p *Preprocessor) Process(text string) []string {
	if p.foldDiacritics {
		text = foldDiacritics(text)
	}

	tokens := RemoveStopWords(Tokenize(StripSpecialChars(text)))

	if p.stemLanguage != "" {
		// Stems like "have" or "other" are stopwords themselves.
		tokens = RemoveStopWords(p.stem(tokens))
	}

	return tokens
}

// ProcessSamples tokenizes every sample, keeping order and labels.
func (p *Preprocessor) ProcessSamples(samples []entity.Sample) []entity.TokenizedSample {
	tss := make([]entity.TokenizedSample, len(samples))
	for i, s := range samples {
		tss[i] = entity.TokenizedSample{
			Tokens: p.Process(s.Text),
			Label:  s.Label,
		}
	}
	return tss
}

func (p *Preprocessor) stem(tokens []string) []string {
	stemmed := make([]string, 0, len(tokens))
	for _, t := range tokens {
		s, err := snowball.Stem(t, p.stemLanguage, true)
		if err != nil || s == "" {
			p.log.WithError(err).WithField("token", t).
				Debug("failed to stem token, keeping it as is")
			s = t
		}
		stemmed = append(stemmed, s)
	}
	return stemmed
}

// StripSpecialChars keeps ASCII letters and digits, spaces, new lines and
// quotes.
func StripSpecialChars(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			return r
		case r == ' ', r == '\n', r == '\'', r == '"':
			return r
		}
		return -1
	}, text)
}

// Tokenize lower-cases the text and splits it on whitespace.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// RemoveStopWords returns the tokens that are not stop words.
func RemoveStopWords(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !isStopWord(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}
