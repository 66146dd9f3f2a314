package study

import (
	"strings"

	"github.com/dgnsrekt/explainer/study/sentence"
)

const (
	summarySentences  = 3
	maxKeyPoints      = 8
	maxQuizQuestions  = 5
	snippetWords      = 6
	quizQuestionRunes = 60
	fallbackRunes     = 200
)

// Distractors are the three fixed wrong options shared by every quiz question.
var Distractors = [3]string{
	"An unrelated statement about a different concept.",
	"A statement that contradicts the explanation.",
	"None of the above options are correct.",
}

// Synthesize derives the summary, key points, flashcards and quiz from raw
// explanation text. It is a pure function of its arguments.
func Synthesize(text string, flashcardCount int) Analysis {
	sentences := sentence.Segment(text)

	return Analysis{
		Summary:    summarize(text, sentences),
		KeyPoints:  keyPoints(sentences),
		Flashcards: flashcards(sentences, flashcardCount),
		Quiz:       quiz(sentences),
	}
}

// Script builds the narration script used when there are no key points.
func Script(topic, summary string) string {
	return "Welcome to our explanation of " + topic + ". " + summary
}

func summarize(text string, sentences []string) string {
	if len(sentences) == 0 {
		return prefix(text, fallbackRunes)
	}
	return strings.Join(head(sentences, summarySentences), ". ") + "."
}

func keyPoints(sentences []string) []string {
	points := make([]string, 0, min(len(sentences), maxKeyPoints))
	for _, s := range head(sentences, maxKeyPoints) {
		points = append(points, s+".")
	}
	return points
}

func flashcards(sentences []string, count int) []Flashcard {
	if count <= 0 {
		return []Flashcard{}
	}

	cards := make([]Flashcard, 0, min(len(sentences), count))
	for _, s := range head(sentences, count) {
		words := strings.Split(s, " ")
		snippet := strings.Join(head(words, snippetWords), " ")
		if len(words) > snippetWords {
			snippet += "..."
		}
		cards = append(cards, Flashcard{
			Question: "What does this statement explain: \"" + snippet + "\"?",
			Answer:   s + ".",
		})
	}
	return cards
}

func quiz(sentences []string) []QuizQuestion {
	questions := make([]QuizQuestion, 0, min(len(sentences), maxQuizQuestions))
	for _, s := range head(sentences, maxQuizQuestions) {
		questions = append(questions, QuizQuestion{
			Question: "Which option best matches: \"" + prefix(s, quizQuestionRunes) + "...\"?",
			Options: [4]string{
				s + ".",
				Distractors[0],
				Distractors[1],
				Distractors[2],
			},
			CorrectIndex: 0,
		})
	}
	return questions
}

// head returns at most n leading elements.
func head[T any](s []T, n int) []T {
	if n < len(s) {
		return s[:n]
	}
	return s
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
