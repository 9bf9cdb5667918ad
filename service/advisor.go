package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"loan-simulator/domain"
	"loan-simulator/logger"
)

const (
	DefaultAdvisorURL   = "https://api.openai.com/v1/chat/completions"
	DefaultAdvisorModel = "gpt-4o-mini"
)

// Advisor writes a short explanation of the best offer. Without an API key it
// only produces the fallback text.
type Advisor struct {
	apiKey  string
	apiURL  string
	model   string
	enabled bool
	client  *resty.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewAdvisor(apiKey, apiURL, model string) *Advisor {
	if apiURL == "" {
		apiURL = DefaultAdvisorURL
	}
	if model == "" {
		model = DefaultAdvisorModel
	}
	return &Advisor{
		apiKey:  apiKey,
		apiURL:  apiURL,
		model:   model,
		enabled: apiKey != "",
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

func (a *Advisor) Enabled() bool { return a.enabled }

// Explain never fails: any problem with the remote call falls back to a
// locally built explanation.
func (a *Advisor) Explain(
	ctx context.Context,
	req domain.LoanRequest,
	best domain.SimulationResult,
	results []domain.SimulationResult,
) string {
	alt, hasAlt := alternative(best, results)

	if !a.enabled {
		return fallbackExplanation(best, alt, hasAlt)
	}

	explanation, err := a.callLLM(ctx, buildPrompt(req, best, results))
	if err != nil {
		logger.Warn("advisor call failed, using fallback: %v", err)
		return fallbackExplanation(best, alt, hasAlt)
	}
	return explanation
}

func (a *Advisor) callLLM(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "Você é um consultor de crédito imobiliário no Brasil. Explique de forma clara e objetiva, em português, as diferenças entre os sistemas SAC e PRICE e por que uma oferta é a mais barata.",
			},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 300,
	}

	var out chatResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(a.apiURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("no response from AI")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func buildPrompt(req domain.LoanRequest, best domain.SimulationResult, results []domain.SimulationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imóvel de R$ %.2f, entrada de %.2f%%, prazo de %d meses", req.PropertyValue, req.DownPaymentPercentage, req.TermMonths)
	if req.ApplySubsidy {
		b.WriteString(", com subsídio Minha Casa Minha Vida")
	}
	b.WriteString(".\n\nOFERTAS:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s %s: financiado R$ %.2f, primeira parcela R$ %.2f, última R$ %.2f, total R$ %.2f, juros R$ %.2f\n",
			r.Bank, r.Method, r.FinancedAmount, r.FirstInstallment, r.LastInstallment, r.TotalPaid, r.TotalInterest)
	}
	fmt.Fprintf(&b, "\nA oferta de menor custo total é %s pelo sistema %s. Explique em 3-4 frases por que ela é a melhor e o que muda no orçamento mensal em relação ao outro sistema.", best.Bank, best.Method)
	return b.String()
}

// alternative is the same bank's result under the other method.
func alternative(best domain.SimulationResult, results []domain.SimulationResult) (domain.SimulationResult, bool) {
	for _, r := range results {
		if r.Bank == best.Bank && r.Method != best.Method {
			return r, true
		}
	}
	return domain.SimulationResult{}, false
}

func fallbackExplanation(best, alt domain.SimulationResult, hasAlt bool) string {
	if best.FinancedAmount == 0 {
		return fmt.Sprintf("Com a entrada e o subsídio informados não há saldo a financiar no %s.", best.Bank)
	}

	text := fmt.Sprintf("A opção mais barata é o %s pelo sistema %s: financiamento de R$ %.2f, primeira parcela de R$ %.2f e total pago de R$ %.2f (R$ %.2f em juros).",
		best.Bank, best.Method, best.FinancedAmount, best.FirstInstallment, best.TotalPaid, best.TotalInterest)

	if hasAlt {
		text += fmt.Sprintf(" No sistema %s o mesmo banco cobraria R$ %.2f a mais no total, com primeira parcela de R$ %.2f.",
			alt.Method, alt.TotalPaid-best.TotalPaid, alt.FirstInstallment)
	}
	return text
}
