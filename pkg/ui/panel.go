package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/mindmesh/pkg/debug"
	"github.com/vanderheijden86/mindmesh/pkg/model"
)

type imagePhase int

const (
	imageNone imagePhase = iota
	imageLoading
	imageReady
	imageMissing
)

type quizPhase int

const (
	quizIdle quizPhase = iota
	quizLoading
	quizReady
	quizAnswered
	quizFailed
)

// PanelRequest tells the app which asynchronous work a key press asked for.
// The panel itself never performs IO.
type PanelRequest int

const (
	PanelRequestNone PanelRequest = iota
	PanelRequestQuiz
	PanelRequestCard
	// PanelRequestFocus asks for a fresh search centered on the panel's
	// concept.
	PanelRequestFocus
)

// Panel is the side panel shown for a selected concept: thumbnail image,
// study note, an on-demand quiz question and a growing flashcard deck. All
// async results carry the generation token handed out by SetConcept;
// results from a previous selection are dropped.
type Panel struct {
	theme         Theme
	width, height int
	md            *glamour.TermRenderer

	concept    model.Concept
	hasConcept bool
	gen        int

	imgPhase imagePhase
	img      image.Image

	qPhase     quizPhase
	quiz       model.QuizQuestion
	quizCursor int
	picked     int
	quizErr    string

	cards       []model.Flashcard
	cardCursor  int
	cardLoading bool
	cardErr     string

	notice string
}

// NewPanel returns an empty side panel.
func NewPanel(theme Theme) *Panel {
	return &Panel{theme: theme, picked: -1}
}

// SetSize updates the panel viewport and rebuilds the markdown renderer at
// the new wrap width.
func (p *Panel) SetSize(width, height int) {
	p.width, p.height = width, height
	wrap := width - 4
	if wrap < 10 {
		wrap = 10
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		debug.Log("panel: glamour renderer: %v", err)
		p.md = nil
		return
	}
	p.md = md
}

// SetConcept resets the whole panel for a newly selected concept and returns
// the generation token async results must echo back.
func (p *Panel) SetConcept(c model.Concept) int {
	p.concept = c
	p.hasConcept = true
	p.gen++

	p.imgPhase = imageLoading
	p.img = nil

	p.qPhase = quizIdle
	p.quiz = model.QuizQuestion{}
	p.quizCursor = 0
	p.picked = -1
	p.quizErr = ""

	p.cards = nil
	p.cardCursor = 0
	p.cardLoading = true
	p.cardErr = ""

	p.notice = ""
	return p.gen
}

// Clear empties the panel; stale async results are invalidated by bumping
// the generation.
func (p *Panel) Clear() {
	p.hasConcept = false
	p.gen++
	p.imgPhase = imageNone
	p.img = nil
	p.qPhase = quizIdle
	p.cards = nil
	p.cardLoading = false
}

// Generation returns the current token.
func (p *Panel) Generation() int { return p.gen }

// Concept returns the displayed concept and whether one is set.
func (p *Panel) Concept() (model.Concept, bool) { return p.concept, p.hasConcept }

// SetImage delivers a fetched thumbnail. nil means no image exists for the
// concept; that is not an error state, the section just collapses.
func (p *Panel) SetImage(gen int, img image.Image) {
	if gen != p.gen {
		debug.Log("panel: dropping stale image (gen %d, want %d)", gen, p.gen)
		return
	}
	if img == nil {
		p.imgPhase = imageMissing
		return
	}
	p.img = img
	p.imgPhase = imageReady
}

// SetQuiz delivers a generated quiz question or its failure.
func (p *Panel) SetQuiz(gen int, q model.QuizQuestion, err error) {
	if gen != p.gen {
		debug.Log("panel: dropping stale quiz (gen %d, want %d)", gen, p.gen)
		return
	}
	if err != nil {
		p.qPhase = quizFailed
		p.quizErr = err.Error()
		return
	}
	p.quiz = q
	p.qPhase = quizReady
	p.quizCursor = 0
	p.picked = -1
}

// AddCard appends a generated flashcard and moves the cursor onto it.
func (p *Panel) AddCard(gen int, card model.Flashcard, err error) {
	if gen != p.gen {
		debug.Log("panel: dropping stale flashcard (gen %d, want %d)", gen, p.gen)
		return
	}
	p.cardLoading = false
	if err != nil {
		p.cardErr = err.Error()
		return
	}
	p.cardErr = ""
	p.cards = append(p.cards, card)
	p.cardCursor = len(p.cards) - 1
}

// Cards returns the flashcard deck accumulated for the current concept.
func (p *Panel) Cards() []model.Flashcard { return p.cards }

// CardCursor returns the index of the displayed card.
func (p *Panel) CardCursor() int { return p.cardCursor }

// QuizAnswered reports whether the current question has been answered, and
// whether the pick was correct.
func (p *Panel) QuizAnswered() (answered, correct bool) {
	if p.qPhase != quizAnswered {
		return false, false
	}
	return true, p.quiz.Options[p.picked] == p.quiz.CorrectAnswer
}

// HandleKey processes a key press while the panel has focus and reports any
// async work the app should start.
func (p *Panel) HandleKey(msg tea.KeyMsg) PanelRequest {
	if !p.hasConcept {
		return PanelRequestNone
	}
	switch msg.String() {
	case "t":
		if p.qPhase == quizIdle || p.qPhase == quizFailed || p.qPhase == quizAnswered {
			p.qPhase = quizLoading
			p.quizErr = ""
			return PanelRequestQuiz
		}
	case "up", "k":
		if p.qPhase == quizReady && p.quizCursor > 0 {
			p.quizCursor--
		}
	case "down", "j":
		if p.qPhase == quizReady && p.quizCursor < len(p.quiz.Options)-1 {
			p.quizCursor++
		}
	case "enter":
		if p.qPhase == quizReady {
			p.picked = p.quizCursor
			p.qPhase = quizAnswered
		}
	case "n":
		// Forward-only paging: advance through the deck, and generate a
		// new card once past the last one.
		if p.cardCursor < len(p.cards)-1 {
			p.cardCursor++
		} else if !p.cardLoading {
			p.cardLoading = true
			p.cardErr = ""
			return PanelRequestCard
		}
	case "f":
		return PanelRequestFocus
	case "y":
		text, what := p.concept.Note, "note"
		if p.cardCursor < len(p.cards) {
			card := p.cards[p.cardCursor]
			text, what = card.Question+"\n"+card.Answer, "flashcard"
		}
		if text == "" {
			return PanelRequestNone
		}
		if err := clipboard.WriteAll(text); err != nil {
			p.notice = "copy failed: clipboard unavailable"
		} else {
			p.notice = what + " copied"
		}
	}
	return PanelRequestNone
}

// View renders the panel content.
func (p *Panel) View() string {
	if !p.hasConcept {
		return p.theme.HelpText.Render("Select a node to study it")
	}

	var b strings.Builder
	c := p.concept

	b.WriteString(p.theme.PanelTitle.Render(c.Concept))
	b.WriteByte('\n')
	meta := c.Relation
	if c.System != "" {
		meta += " · " + c.System
	}
	if c.Difficulty > 0 {
		meta += " · " + strings.Repeat("★", c.Difficulty)
	}
	b.WriteString(p.theme.StatusBar.Render(meta))
	b.WriteString("\n\n")

	switch p.imgPhase {
	case imageLoading:
		b.WriteString(p.theme.HelpText.Render("loading image…"))
		b.WriteString("\n\n")
	case imageReady:
		b.WriteString(RenderImage(p.img, p.width-4, 8))
		b.WriteString("\n\n")
	}

	if c.Note != "" {
		b.WriteString(p.renderMarkdown(c.Note))
		b.WriteByte('\n')
	}

	p.renderQuiz(&b)
	p.renderCards(&b)

	if p.notice != "" {
		b.WriteByte('\n')
		b.WriteString(p.theme.NoticeInfo.Render(p.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(p.theme.HelpText.Render("t quiz · n flashcard · f focus topic · y copy · esc back"))
	return b.String()
}

func (p *Panel) renderQuiz(b *strings.Builder) {
	switch p.qPhase {
	case quizIdle:
		return
	case quizLoading:
		b.WriteString(p.theme.HelpText.Render("generating question…"))
		b.WriteString("\n")
		return
	case quizFailed:
		b.WriteString(p.theme.NoticeError.Render("quiz failed: " + p.quizErr))
		b.WriteString("\n")
		return
	}

	b.WriteString(p.theme.PanelTitle.Render("Quiz"))
	b.WriteByte('\n')
	b.WriteString(wordwrap(p.quiz.Question, p.width-4))
	b.WriteByte('\n')
	for i, opt := range p.quiz.Options {
		line := "  " + opt
		st := p.theme.Base
		switch p.qPhase {
		case quizReady:
			if i == p.quizCursor {
				line = "> " + opt
				st = p.theme.SelectedOpt
			}
		case quizAnswered:
			switch {
			case opt == p.quiz.CorrectAnswer:
				line = "✓ " + opt
				st = p.theme.CorrectOpt
			case i == p.picked:
				line = "✗ " + opt
				st = p.theme.WrongOpt
			}
		}
		b.WriteString(st.Render(truncateCells(line, p.width-2)))
		b.WriteByte('\n')
	}
	if p.qPhase == quizAnswered && p.quiz.Explanation != "" {
		b.WriteString(p.renderMarkdown(p.quiz.Explanation))
	}
}

func (p *Panel) renderCards(b *strings.Builder) {
	if len(p.cards) == 0 && !p.cardLoading && p.cardErr == "" {
		return
	}
	b.WriteByte('\n')
	title := "Flashcards"
	if len(p.cards) > 0 {
		title = fmt.Sprintf("Flashcards %d/%d", p.cardCursor+1, len(p.cards))
	}
	b.WriteString(p.theme.PanelTitle.Render(title))
	b.WriteByte('\n')

	if p.cardErr != "" {
		b.WriteString(p.theme.NoticeError.Render("flashcard failed: " + p.cardErr))
		b.WriteByte('\n')
	}
	if p.cardCursor < len(p.cards) {
		card := p.cards[p.cardCursor]
		b.WriteString(wordwrap("Q: "+card.Question, p.width-4))
		b.WriteByte('\n')
		b.WriteString(p.theme.NoticeInfo.Render(wordwrap("A: "+card.Answer, p.width-4)))
		b.WriteByte('\n')
	}
	if p.cardLoading {
		b.WriteString(p.theme.HelpText.Render("drawing a new card…"))
		b.WriteByte('\n')
	}
}

func (p *Panel) renderMarkdown(src string) string {
	if p.md != nil {
		if out, err := p.md.Render(src); err == nil {
			return strings.TrimRight(out, "\n") + "\n"
		}
	}
	return wordwrap(src, p.width-4) + "\n"
}

// wordwrap is a plain greedy wrap for non-markdown text.
func wordwrap(s string, width int) string {
	if width < 1 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	lineW := 0
	for i, w := range words {
		ww := runewidth.StringWidth(w)
		if i > 0 {
			if lineW+1+ww > width {
				b.WriteByte('\n')
				lineW = 0
			} else {
				b.WriteByte(' ')
				lineW++
			}
		}
		b.WriteString(w)
		lineW += ww
	}
	return b.String()
}
