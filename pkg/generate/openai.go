package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/vanderheijden86/mindmesh/pkg/debug"
	"github.com/vanderheijden86/mindmesh/pkg/model"
)

const systemPrompt = "You are a study assistant that builds mind maps. " +
	"Answer strictly in the requested JSON shape. Keep notes concise (1-2 sentences, markdown allowed)."

var (
	mapSchema  = generateSchema[conceptList]("concept_map", "Concepts related to a study topic")
	quizSchema = generateSchema[model.QuizQuestion]("quiz_question", "One multiple-choice question")
	cardSchema = generateSchema[model.Flashcard]("flashcard", "One question/answer flashcard")
)

// OpenAIClient implements Client against an OpenAI-compatible chat API using
// structured JSON output.
type OpenAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel overrides the default chat model.
func WithModel(name string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = openai.ChatModel(name)
	}
}

// NewOpenAIClient builds a client for the given API key. baseURL may be
// empty for the default endpoint.
func NewOpenAIClient(apiKey, baseURL string, opts ...OpenAIOption) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	c := &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		model:  openai.ChatModelGPT4oMini,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateMap implements Client.
func (c *OpenAIClient) GenerateMap(ctx context.Context, topic string) ([]model.Concept, error) {
	prompt := fmt.Sprintf(
		"Generate 8 to 12 concepts closely related to the study topic %q. "+
			"For each, give the concept name, its relation to the topic, a short study note, "+
			"a difficulty from 0 to 5, and (when it applies) the body system or domain category.",
		topic)

	var out conceptList
	if err := c.complete(ctx, prompt, mapSchema, &out); err != nil {
		return nil, fmt.Errorf("generate map for %q: %w", topic, err)
	}
	if len(out.Concepts) == 0 {
		return nil, ErrEmptyResult
	}
	clampDifficulty(out.Concepts)
	return out.Concepts, nil
}

// GenerateQuiz implements Client.
func (c *OpenAIClient) GenerateQuiz(ctx context.Context, concept model.Concept) (model.QuizQuestion, error) {
	prompt := fmt.Sprintf(
		"Write one multiple-choice question testing understanding of %q (%s). "+
			"Context note: %s. Provide exactly four options, the correct answer verbatim, "+
			"and a short explanation.",
		concept.Concept, concept.Relation, concept.Note)

	var q model.QuizQuestion
	if err := c.complete(ctx, prompt, quizSchema, &q); err != nil {
		return model.QuizQuestion{}, fmt.Errorf("generate quiz for %q: %w", concept.Concept, err)
	}
	if err := q.Validate(); err != nil {
		// Treat schema violations like any other opaque service failure.
		return model.QuizQuestion{}, fmt.Errorf("generate quiz for %q: %w", concept.Concept, err)
	}
	return q, nil
}

// GenerateFlashcard implements Client.
func (c *OpenAIClient) GenerateFlashcard(ctx context.Context, concept model.Concept, previous []model.Flashcard) (model.Flashcard, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write one new flashcard (question and answer) about %q (%s). ", concept.Concept, concept.Relation)
	if len(previous) > 0 {
		sb.WriteString("Avoid repeating these earlier questions: ")
		for i, card := range previous {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(card.Question)
		}
		sb.WriteString(".")
	}

	var card model.Flashcard
	if err := c.complete(ctx, sb.String(), cardSchema, &card); err != nil {
		return model.Flashcard{}, fmt.Errorf("generate flashcard for %q: %w", concept.Concept, err)
	}
	if card.Question == "" || card.Answer == "" {
		return model.Flashcard{}, fmt.Errorf("generate flashcard for %q: empty card", concept.Concept)
	}
	return card, nil
}

// complete performs one structured-output chat completion and decodes the
// JSON answer into out.
func (c *OpenAIClient) complete(ctx context.Context, prompt string, schema Schema, out any) error {
	defer debug.LogEnterExit("generate." + schema.Name)()

	chat, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(c.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		}),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONSchemaParam{
				Type: openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        openai.F(schema.Name),
					Description: openai.F(schema.Description),
					Schema:      openai.F(schema.Schema),
					Strict:      openai.Bool(true),
				}),
			},
		),
	})
	if err != nil {
		return err
	}
	if len(chat.Choices) == 0 {
		return fmt.Errorf("completion returned no choices")
	}
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}
