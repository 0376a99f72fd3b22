package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"

	// llmSuccessConfidence is attached to every normalized LLM answer.
	// The completion endpoint exposes no calibrated probability.
	llmSuccessConfidence = 0.9
	// llmUnrecognizedConfidence marks answers that named no catalog tag.
	llmUnrecognizedConfidence = 0.3
	// llmTokenEstimate stands in for per-call token counts, which are
	// not propagated through the orchestrator.
	llmTokenEstimate = 200

	classifyMaxTokensDefault = 150
	improveMaxTokens         = 300
)

// LLMUsage accumulates token counts across completion calls.
type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Completer is the remote text-completion capability. Both providers
// return the raw completion text plus token usage.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, LLMUsage, error)
}

// NewCompleter builds the provider selected by config, or nil when the
// LLM path is disabled or unconfigured.
func NewCompleter(cfg Config) Completer {
	if !cfg.UseLLM {
		return nil
	}
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil
		}
		model := cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		return newOpenAICompleter(cfg.OpenAIAPIKey, model, cfg.LLMTimeout())
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil
		}
		model := cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		return &anthropicCompleter{apiKey: cfg.AnthropicAPIKey, model: model}
	}
	return nil
}

// --- OpenAI ---

type openaiCompleter struct {
	client *openai.Client
	model  string
}

func newOpenAICompleter(apiKey, model string, timeout time.Duration) *openaiCompleter {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: timeout}
	return &openaiCompleter{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *openaiCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, LLMUsage, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}
	if len(resp.Choices) == 0 {
		return "", usage, fmt.Errorf("no choices in OpenAI response")
	}
	content := resp.Choices[0].Message.Content
	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(content), usage.InputTokens, usage.OutputTokens)
	return content, usage, nil
}

// --- Anthropic ---

type anthropicCompleter struct {
	apiKey string
	model  string
}

func (c *anthropicCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- LLM classifier ---

// llmDecision is one parsed, normalized classification answer.
type llmDecision struct {
	Tag            string
	Confidence     float64
	Justification  string
	SpecificDetail string
}

// LLMClassifier turns a conversation window into a catalog tag via the
// remote completion capability. Calls may fail; the orchestrator falls
// back to keywords on error.
type LLMClassifier struct {
	client      Completer
	catalog     *TagCatalog
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

func NewLLMClassifier(client Completer, catalog *TagCatalog, cfg Config) *LLMClassifier {
	maxTokens := cfg.LLMMaxTokens
	if maxTokens == 0 {
		maxTokens = classifyMaxTokensDefault
	}
	timeout := cfg.LLMTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMClassifier{
		client:      client,
		catalog:     catalog,
		maxTokens:   maxTokens,
		temperature: cfg.LLMTemperature,
		timeout:     timeout,
	}
}

const classifySystemPrompt = "Você é um classificador especializado em conversas de atendimento ao cliente."

func buildClassificationPrompt(catalog *TagCatalog, transcript string) string {
	var tagLines strings.Builder
	for _, name := range catalog.Names() {
		tagLines.WriteString("- " + name + "\n")
	}

	return fmt.Sprintf(`Analise a seguinte conversa de atendimento ao cliente e classifique-a usando uma das tags específicas abaixo:

Tags disponíveis:
%s
Conversa para análise:
%s

IMPORTANTE: Use a tag MAIS ESPECÍFICA que se aplica ao contexto da conversa.

Responda com TRÊS partes separadas por pipe (|):
1. A tag específica
2. Uma breve justificativa da classificação
3. O MOTIVO COMPLEMENTAR, que adicione informações úteis SEM REPETIR a tag principal. Use apenas um termo curto e específico.

REGRAS IMPORTANTES:
- NÃO repita palavras que já estão na tag principal
- A classificação específica deve COMPLEMENTAR, não repetir
- Use termos curtos e objetivos
- Foque no que aconteceu especificamente

Exemplo de resposta:
- Outros|Cliente conversou sobre assuntos diversos|apenas conversou
- Problemas financeiros: sem dinheiro|Cliente relatou estar desempregado|desempregado
- Dúvidas sobre certificado|Cliente solicitou link para certificado|solicitou link
- Atendimento: não respondeu dúvida|Cliente não obteve resposta|sem resposta
`, tagLines.String(), transcript)
}

// Classify builds the prompt, invokes the completion capability and
// normalizes the answer. An error here means network/timeout/auth or
// an unusable response shape, never an unrecognized tag.
func (l *LLMClassifier) Classify(ctx context.Context, window ConversationWindow) (llmDecision, error) {
	transcript := FormatConversation(window)
	if transcript == emptyTranscript {
		// No input: do not spend a remote call.
		return llmDecision{
			Tag:            FallbackTag,
			Confidence:     0.0,
			Justification:  "Nenhuma mensagem encontrada para análise",
			SpecificDetail: "Nenhuma mensagem encontrada para análise",
		}, nil
	}

	prompt := buildClassificationPrompt(l.catalog, transcript)

	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	content, _, err := l.client.Complete(callCtx, classifySystemPrompt, prompt, l.maxTokens, l.temperature)
	if err != nil {
		return llmDecision{}, err
	}
	if strings.TrimSpace(content) == "" {
		return llmDecision{}, fmt.Errorf("empty completion response")
	}

	return parseTagResponse(content, l.catalog), nil
}

// parseTagResponse splits a pipe-delimited completion answer into
// (tag, justification, specific detail) and resolves the candidate tag
// against the catalog. It never fails: anything unrecognizable resolves
// to the fallback tag.
func parseTagResponse(content string, catalog *TagCatalog) llmDecision {
	content = strings.TrimSpace(content)

	var candidate, justification, detail string
	if strings.Contains(content, "|") {
		parts := strings.Split(content, "|")
		switch {
		case len(parts) >= 3:
			candidate = stripBullet(parts[0])
			justification = strings.TrimSpace(parts[1])
			detail = strings.TrimSpace(parts[2])
		default: // exactly 2
			candidate = stripBullet(parts[0])
			justification = strings.TrimSpace(parts[1])
			detail = justification
		}
	} else {
		candidate = stripBullet(content)
		justification = "Classificação automática"
		detail = "Detalhes não fornecidos"

		// No delimiter: the model may still have named a tag somewhere
		// in the prose.
		lower := strings.ToLower(content)
		for _, name := range catalog.Names() {
			if strings.Contains(lower, strings.ToLower(name)) {
				candidate = name
				justification = fmt.Sprintf("Tag encontrada na resposta: %s", content)
				detail = "Classificação extraída da resposta"
				break
			}
		}
	}

	tag, fuzzy, ok := NormalizeTag(candidate, catalog)
	if !ok {
		return llmDecision{
			Tag:            FallbackTag,
			Confidence:     llmUnrecognizedConfidence,
			Justification:  fmt.Sprintf("Tag '%s' não reconhecida, classificada como '%s'", candidate, FallbackTag),
			SpecificDetail: "Tag não reconhecida pelo sistema",
		}
	}
	if fuzzy {
		justification = fmt.Sprintf("Tag '%s' mapeada para '%s'", candidate, tag)
	}
	return llmDecision{
		Tag:            tag,
		Confidence:     llmSuccessConfidence,
		Justification:  justification,
		SpecificDetail: detail,
	}
}

func stripBullet(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-•*")
	return strings.TrimSpace(s)
}

const improveSystemPrompt = "Você é um especialista em análise de atendimento ao cliente e melhoria de prompts de IA."

func buildImprovementPrompt(window ConversationWindow, classification string) string {
	customerMsgs := 0
	agentMsgs := 0
	for _, msg := range window.Messages {
		switch msg.Role {
		case RoleCustomer:
			customerMsgs++
		case RoleAgent:
			agentMsgs++
		}
	}

	return fmt.Sprintf(`Você é um especialista em análise de atendimento ao cliente. Analise a conversa abaixo e forneça até 5 sugestões específicas e acionáveis para melhorar o prompt de uma IA de atendimento.

CONTEXTO:
- Classificação da conversa: %s
- Total de mensagens: %d
- Mensagens do cliente: %d
- Mensagens da IA: %d

CONVERSA:
%s

INSTRUÇÕES:
1. Analise como a IA poderia ter melhorado o atendimento
2. Foque em sugestões específicas que podem ser implementadas no prompt da IA
3. Considere: clareza, completude, proatividade, personalização, resolução
4. Seja específico sobre o que deveria ser incluído ou melhorado
5. Limite a 5 sugestões mais importantes
6. Use formato de tópicos com "•" no início

FORMATO DE RESPOSTA:
• [Sugestão específica e acionável]

Se a conversa estiver bem conduzida, responda apenas: "Conversa bem conduzida - manter padrão atual"
`, classification, len(window.Messages), customerMsgs, agentMsgs, FormatConversation(window))
}

// ImprovementNote asks the completion capability for a short critique
// of how the conversation could have been handled better. Advisory
// only; callers degrade its failure to a placeholder string.
func (l *LLMClassifier) ImprovementNote(ctx context.Context, window ConversationWindow, classification string) (string, error) {
	if window.IsEmpty() {
		return "Nenhuma mensagem para análise", nil
	}

	prompt := buildImprovementPrompt(window, classification)

	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	content, _, err := l.client.Complete(callCtx, improveSystemPrompt, prompt, improveMaxTokens, l.temperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
