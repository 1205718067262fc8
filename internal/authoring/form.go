package authoring

import (
	"mime/multipart"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// questionField matches questions[<index>][<field>] and
// questions[<index>][<field>][<sub>].
var questionField = regexp.MustCompile(`^questions\[(\d+)\]\[([a-z_]+)\](?:\[(\d+)\])?$`)

// QuestionInput is a question as submitted, before validation. Values are
// kept untrimmed so a rejected form can be shown again exactly as entered.
type QuestionInput struct {
	Index        int
	Prompt       string
	Answers      [4]string
	CorrectIndex string
	Audio        *multipart.FileHeader
}

// IsBlank reports whether the question has neither a prompt nor any answer.
func (q QuestionInput) IsBlank() bool {
	return strings.TrimSpace(q.Prompt) == "" &&
		lo.EveryBy(q.Answers[:], func(a string) bool { return strings.TrimSpace(a) == "" })
}

type questionKey struct {
	index int
	field string
	sub   int
}

func parseQuestionKey(name string) (questionKey, bool) {
	m := questionField.FindStringSubmatch(name)
	if m == nil {
		return questionKey{}, false
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return questionKey{}, false
	}
	key := questionKey{index: index, field: m[2], sub: -1}
	if m[3] != "" {
		if key.sub, err = strconv.Atoi(m[3]); err != nil {
			return questionKey{}, false
		}
	}
	return key, true
}

// ParseQuestionFields rebuilds the questions of a story form from its flat
// field names. The first pass groups values by question index, the second
// materializes them in ascending index order. Names that don't match the
// pattern are ignored, as are blank questions.
func ParseQuestionFields(values map[string][]string, files map[string][]*multipart.FileHeader) []QuestionInput {
	drafts := make(map[int]*QuestionInput)
	draft := func(index int) *QuestionInput {
		d, ok := drafts[index]
		if !ok {
			d = &QuestionInput{Index: index}
			drafts[index] = d
		}
		return d
	}

	for name, vals := range values {
		key, ok := parseQuestionKey(name)
		if !ok || len(vals) == 0 {
			continue
		}
		value := vals[0]
		switch {
		case key.field == "prompt" && key.sub < 0:
			draft(key.index).Prompt = value
		case key.field == "answers" && key.sub >= 0 && key.sub < len(QuestionInput{}.Answers):
			draft(key.index).Answers[key.sub] = value
		case key.field == "correct_index" && key.sub < 0:
			draft(key.index).CorrectIndex = value
		}
	}

	for name, fhs := range files {
		key, ok := parseQuestionKey(name)
		if !ok || key.field != "audio" || key.sub >= 0 || len(fhs) == 0 {
			continue
		}
		draft(key.index).Audio = fhs[0]
	}

	indices := lo.Keys(drafts)
	slices.Sort(indices)

	questions := make([]QuestionInput, 0, len(indices))
	for _, index := range indices {
		if q := *drafts[index]; !q.IsBlank() {
			questions = append(questions, q)
		}
	}
	return questions
}

// SingleQuestionInput reads the fields of the single question form.
func SingleQuestionInput(values map[string][]string, files map[string][]*multipart.FileHeader) QuestionInput {
	first := func(name string) string {
		if vals := values[name]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	var q QuestionInput
	q.Prompt = first("prompt")
	for i := range q.Answers {
		q.Answers[i] = first("answers[" + strconv.Itoa(i) + "]")
	}
	q.CorrectIndex = first("correct_index")
	if fhs := files["audio"]; len(fhs) > 0 {
		q.Audio = fhs[0]
	}
	return q
}
