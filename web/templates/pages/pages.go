// Package pages renders the HTML pages of lesezeit.
package pages

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/a-h/templ"
	"github.com/lesezeit/lesezeit/internal/api/models"
	"github.com/lesezeit/lesezeit/web/templates/components"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"relativeTime": components.FormatRelativeTime,
	"date":         components.FormatDate,
	"letter":       components.AnswerLetter,
	"inc":          func(i int) int { return i + 1 },
}

var base = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/partials.html"))

var (
	homePage           = parsePage("home.html")
	storyPage          = parsePage("story.html")
	storyListPage      = parsePage("story_list.html")
	storyFormPage      = parsePage("story_form.html")
	questionFormPage   = parsePage("question_form.html")
	vocabularyPage     = parsePage("vocabulary.html")
	vocabularyFormPage = parsePage("vocabulary_form.html")
	grammarPage        = parsePage("grammar.html")
	grammarFormPage    = parsePage("grammar_form.html")
	signupPage         = parsePage("signup.html")
	loginPage          = parsePage("login.html")
	errorPage          = parsePage("error.html")
)

// parsePage combines the layout with a page defining the "content" block.
func parsePage(name string) *template.Template {
	return template.Must(template.Must(base.Clone()).ParseFS(files, "templates/"+name))
}

// Page holds the data every page shares.
type Page struct {
	Title string
	User  *models.User
	Flash string
}

type homeData struct {
	Page
	Stories []models.StoryItem
}

// Home renders the public story list.
func Home(user *models.User, stories []models.StoryItem) templ.Component {
	return templ.FromGoHTML(homePage, homeData{Page: Page{Title: "Stories", User: user}, Stories: stories})
}

type storyData struct {
	Page
	models.StoryDetail
}

// Story renders a story with its questions and navigation.
func Story(user *models.User, detail models.StoryDetail) templ.Component {
	return templ.FromGoHTML(storyPage, storyData{Page: Page{Title: detail.Story.Title, User: user}, StoryDetail: detail})
}

type storyListData struct {
	Page
	Stories []models.StoryItem
}

// StoryList renders the admin overview of all stories.
func StoryList(user *models.User, stories []models.StoryItem) templ.Component {
	return templ.FromGoHTML(storyListPage, storyListData{Page: Page{Title: "Manage stories", User: user}, Stories: stories})
}

// QuestionRow is one question block of the story form.
type QuestionRow struct {
	Index        int
	Prompt       string
	Answers      [4]string
	CorrectIndex string
}

// StoryForm holds the values of the story form.
type StoryForm struct {
	Error     string
	Title     string
	Level     string
	Summary   string
	Body      string
	Questions []QuestionRow
	MaxUpload string
}

type storyFormData struct {
	Page
	Form      StoryForm
	Levels    []string
	NextIndex int
}

// NewStory renders the story authoring form.
func NewStory(user *models.User, form StoryForm, levels []string) templ.Component {
	if len(form.Questions) == 0 {
		form.Questions = []QuestionRow{{Index: 0}}
	}
	next := lo.MaxBy(form.Questions, func(a, b QuestionRow) bool { return a.Index > b.Index }).Index + 1
	return templ.FromGoHTML(storyFormPage, storyFormData{
		Page:      Page{Title: "New story", User: user},
		Form:      form,
		Levels:    levels,
		NextIndex: next,
	})
}

// QuestionForm holds the values of the single question form.
type QuestionForm struct {
	Error        string
	StoryID      string
	Prompt       string
	Answers      [4]string
	CorrectIndex string
	MaxUpload    string
}

type questionFormData struct {
	Page
	Form    QuestionForm
	Stories []models.StoryLink
}

// NewQuestion renders the form that adds a question to an existing story.
func NewQuestion(user *models.User, form QuestionForm, stories []models.StoryLink, flash string) templ.Component {
	return templ.FromGoHTML(questionFormPage, questionFormData{
		Page:    Page{Title: "New question", User: user, Flash: flash},
		Form:    form,
		Stories: stories,
	})
}

type vocabularyData struct {
	Page
	Entries []models.VocabularyItem
}

// Vocabulary renders the vocabulary list.
func Vocabulary(user *models.User, entries []models.VocabularyItem) templ.Component {
	return templ.FromGoHTML(vocabularyPage, vocabularyData{Page: Page{Title: "Vocabulary", User: user}, Entries: entries})
}

// VocabularyForm holds the values of the vocabulary form.
type VocabularyForm struct {
	Error       string
	Term        string
	Translation string
	Example     string
}

type vocabularyFormData struct {
	Page
	Form VocabularyForm
}

// NewVocabulary renders the vocabulary entry form.
func NewVocabulary(user *models.User, form VocabularyForm) templ.Component {
	return templ.FromGoHTML(vocabularyFormPage, vocabularyFormData{Page: Page{Title: "New vocabulary", User: user}, Form: form})
}

type grammarData struct {
	Page
	Topics []models.GrammarItem
}

// Grammar renders the grammar topics.
func Grammar(user *models.User, topics []models.GrammarItem) templ.Component {
	return templ.FromGoHTML(grammarPage, grammarData{Page: Page{Title: "Grammar", User: user}, Topics: topics})
}

// GrammarForm holds the values of the grammar form.
type GrammarForm struct {
	Error       string
	Title       string
	Explanation string
}

type grammarFormData struct {
	Page
	Form GrammarForm
}

// NewGrammar renders the grammar topic form.
func NewGrammar(user *models.User, form GrammarForm) templ.Component {
	return templ.FromGoHTML(grammarFormPage, grammarFormData{Page: Page{Title: "New grammar topic", User: user}, Form: form})
}

// AuthForm holds the values of the signup and login forms.
type AuthForm struct {
	Error string
	Email string
}

type authData struct {
	Page
	Form AuthForm
}

// Signup renders the signup form.
func Signup(form AuthForm) templ.Component {
	return templ.FromGoHTML(signupPage, authData{Page: Page{Title: "Sign up"}, Form: form})
}

// Login renders the login form.
func Login(form AuthForm, flash string) templ.Component {
	return templ.FromGoHTML(loginPage, authData{Page: Page{Title: "Log in", Flash: flash}, Form: form})
}

type errorData struct {
	Page
	Status  int
	Message string
}

// Error renders an error page for status.
func Error(user *models.User, status int, message string) templ.Component {
	return templ.FromGoHTML(errorPage, errorData{
		Page:    Page{Title: http.StatusText(status), User: user},
		Status:  status,
		Message: message,
	})
}
