// Package textprep prepares post text before it is embedded.
package textprep

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	log "github.com/sirupsen/logrus"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
		if tokenizerErr != nil {
			log.Warnf("Failed to create sentence tokenizer: %v", tokenizerErr)
		}
	})
	return tokenizer, tokenizerErr
}

// LimitSentences keeps at most n leading sentences of text. n <= 0 returns
// text unchanged, as does a tokenizer failure.
func LimitSentences(text string, n int) string {
	if n <= 0 || text == "" {
		return text
	}
	tok, err := sentenceTokenizer()
	if err != nil {
		return text
	}
	sents := tok.Tokenize(text)
	if len(sents) <= n {
		return text
	}
	parts := make([]string, 0, n)
	for _, s := range sents[:n] {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Snippet shortens text to at most maxRunes runes for log lines.
func Snippet(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "..."
}
