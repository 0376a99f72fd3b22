package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackTag is the catch-all label used when nothing better matches.
const FallbackTag = "Outros"

// TagEntry pairs a canonical tag name with its lower-cased trigger
// phrases. Declaration order defines tie-break priority.
type TagEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TagCatalog is the fixed taxonomy loaded once at startup. It is never
// mutated afterwards.
type TagCatalog struct {
	entries []TagEntry
	byLower map[string]string // lower-cased name -> canonical name
}

func NewTagCatalog(entries []TagEntry) (*TagCatalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("tag catalog is empty")
	}
	c := &TagCatalog{
		entries: entries,
		byLower: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		c.byLower[strings.ToLower(e.Name)] = e.Name
	}
	if _, ok := c.byLower[strings.ToLower(FallbackTag)]; !ok {
		c.entries = append(c.entries, TagEntry{Name: FallbackTag})
		c.byLower[strings.ToLower(FallbackTag)] = FallbackTag
	}
	return c, nil
}

// LoadTagCatalog reads a YAML catalog file of the form
//
//	tags:
//	  - name: "Dúvidas sobre boleto"
//	    keywords: ["boleto", "boleto bancário"]
//
// An empty path returns the built-in default catalog.
func LoadTagCatalog(path string) (*TagCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return NewTagCatalog(defaultTagEntries())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag catalog: %w", err)
	}
	var doc struct {
		Tags []TagEntry `yaml:"tags"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tag catalog yaml: %w", err)
	}
	return NewTagCatalog(doc.Tags)
}

// Names returns the tag names in declaration order.
func (c *TagCatalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns the catalog entries in declaration order.
func (c *TagCatalog) Entries() []TagEntry {
	return c.entries
}

func (c *TagCatalog) Len() int {
	return len(c.entries)
}

// Contains reports whether name is a catalog tag (case-insensitive).
func (c *TagCatalog) Contains(name string) bool {
	_, ok := c.byLower[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Canonical returns the catalog's exact casing for name.
func (c *TagCatalog) Canonical(name string) (string, bool) {
	canonical, ok := c.byLower[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// NormalizeTag resolves a model-proposed candidate to a catalog tag.
// Phase one is an exact case-insensitive match; phase two is substring
// containment in either direction (fuzzy). The fuzzy flag reports that
// phase two fired. ok=false means the candidate names no catalog tag
// and the caller must fall back.
func NormalizeTag(candidate string, catalog *TagCatalog) (tag string, fuzzy bool, ok bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false, false
	}
	if canonical, found := catalog.Canonical(candidate); found {
		return canonical, false, true
	}
	lower := strings.ToLower(candidate)
	for _, e := range catalog.entries {
		entryLower := strings.ToLower(e.Name)
		if strings.Contains(entryLower, lower) || strings.Contains(lower, entryLower) {
			return e.Name, true, true
		}
	}
	return "", false, false
}

// defaultTagEntries is the built-in taxonomy for the support flows this
// system classifies. Keyword lists are lower-cased trigger phrases;
// tags without keywords are reachable only through the LLM path.
func defaultTagEntries() []TagEntry {
	return []TagEntry{
		// Problemas financeiros
		// Phrases are presence-counted, so substrings of one another
		// would double-count a single mention.
		{Name: "Problemas financeiros: sem dinheiro", Keywords: []string{
			"sem dinheiro", "não tenho dinheiro", "sem grana", "não tenho grana",
		}},
		{Name: "Problemas financeiros: dificuldade financeira", Keywords: []string{
			"dificuldade financeira", "problema financeiro", "sem recursos", "sem condições econômicas",
			"dificuldades financeiras", "problemas financeiros", "sem condições financeiras",
		}},
		{Name: "Problemas financeiros: não pode pagar agora", Keywords: []string{
			"não posso pagar agora", "não tenho dinheiro agora", "sem dinheiro agora",
			"não posso pagar neste momento", "sem condições agora", "não tenho condições agora",
			"não posso pagar por enquanto",
		}},
		{Name: "Problemas financeiros: problemas com parcelamento", Keywords: []string{
			"problema com parcelamento", "não consigo parcelar", "não aceita parcelamento", "dificuldade para parcelar",
		}},
		{Name: "Problemas financeiros: outros", Keywords: []string{
			"questão financeira", "dificuldade de pagamento", "outro motivo financeiro",
		}},

		// Dúvidas
		{Name: "Dúvidas sobre meio de pagamento", Keywords: []string{
			"meio de pagamento", "formas de pagamento", "como pagar", "como fazer o pagamento",
			"opções de pagamento", "métodos de pagamento", "qual forma de pagar",
		}},
		{Name: "Dúvidas sobre boleto", Keywords: []string{
			"boleto", "como gerar boleto", "onde está o boleto", "boleto não chegou", "boleto não foi enviado",
			"link do boleto", "boleto bancário", "como pagar o boleto",
		}},
		{Name: "Dúvidas sobre cartão de crédito", Keywords: []string{
			"cartão de crédito", "cartão", "parcelamento", "parcelas", "quantas parcelas",
			"limite do cartão", "cartão não passou", "erro no cartão",
		}},
		{Name: "Dúvidas sobre PIX", Keywords: []string{
			"pix", "pix não funcionou", "como fazer pix", "chave pix", "qr code pix",
			"pix não foi confirmado", "pix não chegou",
		}},
		{Name: "Dúvidas sobre parcelamento"},
		{Name: "Dúvidas sobre preço/valor", Keywords: []string{
			"quanto custa", "qual o valor", "qual o preço", "valor do curso", "preço do curso",
			"quanto é", "custo", "valor total", "preço total",
		}},
		{Name: "Dúvidas sobre desconto", Keywords: []string{
			"desconto", "promoção", "oferta", "código de desconto", "cupom", "desconto especial",
			"preço promocional", "oferta especial",
		}},
		{Name: "Dúvidas sobre reembolso"},
		{Name: "Dúvidas sobre cancelamento"},
		{Name: "Dúvidas sobre matrícula"},
		{Name: "Dúvidas sobre acesso ao curso"},
		{Name: "Dúvidas sobre certificado"},
		{Name: "Dúvidas sobre conteúdo do curso"},
		{Name: "Dúvidas sobre duração do curso"},
		{Name: "Dúvidas sobre horários"},
		{Name: "Dúvidas sobre suporte técnico"},

		// Problemas com plataforma
		{Name: "Problema: site não abre", Keywords: []string{
			"site não abre", "site não carrega", "site não funciona", "página não abre",
			"não consegue acessar o site", "site fora do ar", "site travou", "não consigo acessar a página",
			"página não carrega", "site não está abrindo",
		}},
		{Name: "Problema: link não funciona", Keywords: []string{
			"link não funciona", "link quebrado", "link não abre", "link não carrega",
			"link não está funcionando", "link inválido",
		}},
		{Name: "Problema: não conseguiu emitir boleto", Keywords: []string{
			"não conseguiu emitir boleto", "boleto não foi gerado", "erro ao gerar boleto",
			"não consegue gerar boleto", "problema para emitir boleto",
		}},
		{Name: "Problema: erro no pagamento", Keywords: []string{
			"erro no pagamento", "pagamento não foi processado", "erro ao pagar",
			"pagamento falhou", "erro na transação", "pagamento não foi aprovado",
		}},
		{Name: "Problema: erro no cadastro"},
		{Name: "Problema: erro no login", Keywords: []string{
			"erro no login", "não consegue fazer login", "login não funciona",
			"senha incorreta", "usuário não encontrado", "erro de acesso",
		}},
		{Name: "Problema: erro no acesso ao curso", Keywords: []string{
			"não consegue acessar o curso", "erro no acesso ao curso", "curso não carrega",
			"não consegue entrar no curso", "erro ao acessar material",
		}},
		{Name: "Problema: vídeo não carrega", Keywords: []string{
			"vídeo não carrega", "vídeo não funciona", "vídeo não abre",
			"erro no vídeo", "vídeo travou", "vídeo não reproduz",
		}},
		{Name: "Problema: material não baixa", Keywords: []string{
			"material não baixa", "não consegue baixar", "download não funciona",
			"erro ao baixar material", "arquivo não baixa",
		}},
		{Name: "Problema: certificado não gera"},
		{Name: "Problema: área do aluno não funciona"},
		{Name: "Problema: app não funciona"},
		{Name: "Problema: sistema lento"},
		{Name: "Problema: página travou"},

		// Insatisfação
		{Name: "Não gostou: conteúdo do curso", Keywords: []string{
			"não gostei do conteúdo", "não gostou do conteúdo", "conteúdo ruim",
			"conteúdo não é bom", "conteúdo não agradou", "conteúdo não atendeu",
		}},
		{Name: "Não gostou: metodologia", Keywords: []string{
			"não gostei da metodologia", "não gostou da metodologia", "metodologia ruim",
			"metodologia não funciona", "não gostei da didática", "não gostou da didática",
		}},
		{Name: "Não gostou: professor", Keywords: []string{
			"não gostei do professor", "não gostou do professor", "professor ruim",
			"professor não explica bem", "professor não é bom",
		}},
		{Name: "Não gostou: material didático"},
		{Name: "Não gostou: plataforma", Keywords: []string{
			"não gostei da plataforma", "não gostou da plataforma", "plataforma ruim",
			"plataforma não funciona bem", "não gostei do site", "não gostou do site",
		}},
		{Name: "Não gostou: atendimento", Keywords: []string{
			"não gostei do atendimento", "não gostou do atendimento", "atendimento ruim",
			"atendimento não é bom", "não gostei do suporte", "não gostou do suporte",
		}},
		{Name: "Não gostou: qualidade do curso"},
		{Name: "Não gostou: duração do curso"},
		{Name: "Não gostou: preço do curso"},

		// Insegurança
		{Name: "Insegurança: não se sente preparado", Keywords: []string{
			"não me sinto preparado", "não me sinto preparada", "não me sinto capaz",
			"não tenho confiança", "não me sinto seguro", "não me sinto segura",
		}},
		{Name: "Insegurança: medo de errar", Keywords: []string{
			"tenho medo de errar", "medo de cometer erros", "tenho medo de falhar",
			"não quero errar", "tenho receio de errar",
		}},
		{Name: "Insegurança: falta de experiência"},
		{Name: "Insegurança: não confia na empresa", Keywords: []string{
			"não confio na empresa", "não confio na instituição", "não tenho confiança na empresa",
			"tenho dúvidas sobre a empresa", "não sei se a empresa é boa",
		}},
		{Name: "Insegurança: medo de ser enganado"},
		{Name: "Insegurança: dúvidas sobre qualidade"},
		{Name: "Insegurança: não sabe se vale a pena"},

		// Atendimento
		{Name: "Atendimento: não respondeu dúvida", Keywords: []string{
			"não respondeu minha dúvida", "minha dúvida não foi respondida", "não responderam minha pergunta",
			"não recebi resposta", "não obtive resposta", "não foi respondido",
		}},
		{Name: "Atendimento: demorou para responder", Keywords: []string{
			"demorou para responder", "demorou muito para responder", "demora no atendimento",
			"atendimento demorado", "resposta demorou", "demorou para me atender",
		}},
		{Name: "Atendimento: resposta insatisfatória", Keywords: []string{
			"resposta não foi satisfatória", "não ficou satisfeito com a resposta",
			"resposta não resolveu", "não gostou da resposta", "resposta insatisfatória",
		}},
		{Name: "Atendimento: não foi atendido"},
		{Name: "Atendimento: transferiu várias vezes"},
		{Name: "Atendimento: não resolveu problema"},

		{Name: FallbackTag},
	}
}
