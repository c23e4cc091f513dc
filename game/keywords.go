package game

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

var DefaultKeywords = []string{
	"바나나",
	"자전거",
	"컴퓨터",
	"책",
	"휴대폰",
	"고양이",
	"비행기",
	"의자",
	"해변",
	"로봇",
}

// WordList picks keywords uniformly at random. Repeats are allowed.
type WordList struct {
	words []string
}

func NewWordList(words []string) (*WordList, error) {
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return &WordList{words: append([]string(nil), words...)}, nil
}

// LoadWordList reads a file where each line is a keyword. Blank lines are skipped.
func LoadWordList(path string) (*WordList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open keywords file %s: %w", path, err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error while reading keywords file %s: %w", path, err)
	}

	return NewWordList(words)
}

func (w *WordList) Next() string {
	return w.words[rand.IntN(len(w.words))]
}

func (w *WordList) Len() int {
	return len(w.words)
}
