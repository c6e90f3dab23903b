package biz

import (
	"fmt"
	"strings"

	"github.com/mktud1/arq503/internal/analysis/types"
)

// Section names, in generation order.
const (
	SectionAvatar        = "avatar"
	SectionMentalDrivers = "mental_drivers"
	SectionAntiObjection = "anti_objection"
	SectionVisualProofs  = "visual_proofs"
	SectionPrePitch      = "pre_pitch"
	SectionCompetition   = "competition"
	SectionKeywords      = "keywords"
	SectionMetrics       = "metrics"
)

// promptInput is everything a section prompt can draw on. Evidence and
// prior sections arrive already capped to the section's budgets.
type promptInput struct {
	Req      *types.AnalysisRequest
	Evidence string
	Priors   map[string]string
}

// sectionSpec declares one generated section: what it depends on, how much
// context it may embed, and how its prompt is built.
type sectionSpec struct {
	Name        string
	Deps        []string
	MaxTokens   int
	EvidenceCap int // max chars of evidence context in the prompt
	PriorCap    int // max chars per embedded prior section
	BuildPrompt func(in promptInput) string
}

// Sections is the fixed generation order. Dependencies only ever point at
// earlier entries.
var Sections = []sectionSpec{
	{
		Name:        SectionAvatar,
		MaxTokens:   4000,
		EvidenceCap: 8000,
		BuildPrompt: avatarPrompt,
	},
	{
		Name:        SectionMentalDrivers,
		Deps:        []string{SectionAvatar},
		MaxTokens:   3000,
		EvidenceCap: 6000,
		PriorCap:    2000,
		BuildPrompt: mentalDriversPrompt,
	},
	{
		Name:        SectionAntiObjection,
		Deps:        []string{SectionAvatar},
		MaxTokens:   2500,
		EvidenceCap: 5000,
		PriorCap:    1500,
		BuildPrompt: antiObjectionPrompt,
	},
	{
		Name:        SectionVisualProofs,
		Deps:        []string{SectionAvatar},
		MaxTokens:   2500,
		EvidenceCap: 5000,
		PriorCap:    1500,
		BuildPrompt: visualProofsPrompt,
	},
	{
		Name:        SectionPrePitch,
		Deps:        []string{SectionAvatar, SectionMentalDrivers},
		MaxTokens:   3000,
		EvidenceCap: 5000,
		PriorCap:    1500,
		BuildPrompt: prePitchPrompt,
	},
	{
		Name:        SectionCompetition,
		MaxTokens:   2500,
		EvidenceCap: 6000,
		BuildPrompt: competitionPrompt,
	},
	{
		Name:        SectionKeywords,
		MaxTokens:   2000,
		EvidenceCap: 5000,
		BuildPrompt: keywordsPrompt,
	},
	{
		Name:        SectionMetrics,
		MaxTokens:   2000,
		EvidenceCap: 5000,
		BuildPrompt: metricsPrompt,
	},
}

func projectHeader(req *types.AnalysisRequest) string {
	var sb strings.Builder
	sb.WriteString("DADOS DO PROJETO:\n")
	fmt.Fprintf(&sb, "- Segmento: %s\n", req.Segment)
	fmt.Fprintf(&sb, "- Produto: %s\n", orUnknown(req.Product))
	fmt.Fprintf(&sb, "- Preço: %s\n", orUnknown(req.Price))
	fmt.Fprintf(&sb, "- Público: %s\n", orUnknown(req.TargetAudience))
	fmt.Fprintf(&sb, "- Meta de faturamento: %s\n", orUnknown(req.RevenueGoal))
	return sb.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Não informado"
	}
	return s
}

func avatarPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em psicologia do consumidor e análise de mercado. Crie um avatar ultra-detalhado do cliente ideal para o segmento %s.

CONTEXTO DE PESQUISA:
%s

%s
Responda APENAS com JSON válido no formato:

{
  "nome_ficticio": "Nome representativo do segmento",
  "perfil_demografico": {
    "idade": "Faixa etária com dados reais",
    "genero": "Distribuição por gênero",
    "renda": "Faixa de renda mensal",
    "escolaridade": "Nível educacional predominante",
    "localizacao": "Regiões geográficas principais",
    "profissao": "Ocupações mais frequentes"
  },
  "perfil_psicografico": {
    "personalidade": "Traços dominantes",
    "valores": "Valores e crenças principais",
    "estilo_vida": "Como vive o dia a dia",
    "comportamento_compra": "Processo de decisão",
    "medos_profundos": "Medos relacionados ao nicho",
    "aspiracoes_secretas": "Aspirações não confessadas"
  },
  "dores_viscerais": ["15 dores específicas do segmento"],
  "desejos_secretos": ["15 desejos profundos e específicos"],
  "objecoes_reais": ["12 objeções típicas do segmento"],
  "linguagem_interna": {
    "frases_dor": ["Frases usadas para expressar dores"],
    "frases_desejo": ["Frases que expressam desejos"],
    "vocabulario_especifico": ["Palavras técnicas do nicho"]
  }
}

Baseie-se nos dados de pesquisa fornecidos. Seja extremamente específico.`,
		in.Req.Segment, in.Evidence, projectHeader(in.Req))
}

func mentalDriversPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em persuasão e gatilhos mentais. Com base no avatar abaixo, selecione e customize os 7 drivers mentais mais eficazes para o segmento %s.

AVATAR DO CLIENTE:
%s

CONTEXTO DE PESQUISA:
%s

Responda APENAS com JSON válido no formato:

{
  "drivers_selecionados": [
    {
      "nome": "Nome do driver mental",
      "gatilho_central": "A emoção ou lógica central",
      "definicao": "Definição em uma frase",
      "roteiro_ativacao": "Como ativar este driver no segmento",
      "frases_ancoragem": ["3-5 frases prontas para usar"],
      "momento_ideal": "Quando usar na jornada de venda"
    }
  ],
  "sequencia_recomendada": ["Ordem de ativação dos drivers"],
  "justificativa": "Por que estes 7 drivers para este avatar"
}`,
		in.Req.Segment, in.Priors[SectionAvatar], in.Evidence)
}

func antiObjectionPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em contorno de objeções de venda. Com base no avatar abaixo, monte um sistema anti-objeção completo para o segmento %s.

AVATAR DO CLIENTE:
%s

CONTEXTO DE PESQUISA:
%s

Responda APENAS com JSON válido no formato:

{
  "objecoes_universais": [
    {
      "objecao": "A objeção como o cliente verbaliza",
      "raiz_emocional": "O medo real por trás",
      "contorno": "Técnica de neutralização",
      "script": "Resposta pronta palavra a palavra",
      "prova_apoio": "Dado ou história que sustenta o contorno"
    }
  ],
  "objecoes_ocultas": [
    {
      "objecao": "Objeção não verbalizada",
      "sinais": "Como identificá-la",
      "neutralizacao_preventiva": "Como desarmar antes de surgir"
    }
  ],
  "arsenal_emergencia": ["Respostas rápidas para últimas resistências"]
}`,
		in.Req.Segment, in.Priors[SectionAvatar], in.Evidence)
}

func visualProofsPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em demonstrações e provas visuais de venda. Com base no avatar abaixo, crie o conjunto de provas visuais para o segmento %s.

AVATAR DO CLIENTE:
%s

CONTEXTO DE PESQUISA:
%s

Responda APENAS com JSON válido no formato:

[
  {
    "nome": "Nome da prova visual",
    "conceito_alvo": "O que ela precisa provar",
    "experimento": "Descrição da demonstração",
    "analogia": "Analogia com o mundo do avatar",
    "materiais": ["Materiais necessários"],
    "roteiro_completo": "Roteiro de execução",
    "impacto_esperado": "Reação esperada do público"
  }
]`,
		in.Req.Segment, in.Priors[SectionAvatar], in.Evidence)
}

func prePitchPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em lançamentos e vendas. Monte o roteiro de pré-pitch invisível para o segmento %s, orquestrando os drivers mentais já selecionados sobre o avatar abaixo.

AVATAR DO CLIENTE:
%s

DRIVERS MENTAIS SELECIONADOS:
%s

CONTEXTO DE PESQUISA:
%s

Responda APENAS com JSON válido no formato:

{
  "orquestracao_emocional": {
    "sequencia_psicologica": [
      {
        "fase": "Nome da fase",
        "objetivo": "Estado emocional alvo",
        "duracao": "Tempo estimado",
        "drivers_utilizados": ["Drivers ativados nesta fase"],
        "narrativa": "O que dizer e como"
      }
    ]
  },
  "roteiro_completo": {
    "abertura": "Script de abertura",
    "desenvolvimento": "Condução do meio",
    "transicao_pitch": "Ponte para a oferta"
  },
  "sinais_prontidao": ["Sinais de que a audiência está pronta para a oferta"]
}`,
		in.Req.Segment, in.Priors[SectionAvatar], in.Priors[SectionMentalDrivers], in.Evidence)
}

func competitionPrompt(in promptInput) string {
	return fmt.Sprintf(`Analise a concorrência do segmento %s com base nos dados de pesquisa abaixo.

DADOS DE PESQUISA:
%s

%s
Responda APENAS com JSON válido no formato:

[
  {
    "nome": "Nome do concorrente principal",
    "analise_swot": {
      "forcas": ["5-7 forças específicas"],
      "fraquezas": ["5-7 fraquezas exploráveis"],
      "oportunidades": ["3-5 oportunidades"],
      "ameacas": ["3-5 ameaças"]
    },
    "estrategia_marketing": "Estratégia principal",
    "posicionamento": "Como se posiciona no mercado",
    "vulnerabilidades": ["Pontos fracos exploráveis"],
    "share_mercado_estimado": "Participação estimada",
    "pontos_ataque": ["Onde atacar estrategicamente"]
  }
]

Seja específico e baseado em dados reais do mercado %s.`,
		in.Req.Segment, in.Evidence, projectHeader(in.Req), in.Req.Segment)
}

func keywordsPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em SEO e tráfego pago. Monte a estratégia de palavras-chave para o segmento %s a partir dos dados de pesquisa abaixo.

DADOS DE PESQUISA:
%s

%s
Responda APENAS com JSON válido no formato:

{
  "palavras_primarias": ["10-15 termos principais do segmento"],
  "palavras_secundarias": ["15-20 termos de apoio"],
  "long_tail": ["15-25 frases de cauda longa com intenção de compra"],
  "intencao_busca": {
    "informacional": ["Termos de aprendizado"],
    "comercial": ["Termos de comparação"],
    "transacional": ["Termos de compra"]
  },
  "canais_prioritarios": ["Onde investir primeiro e por quê"]
}`,
		in.Req.Segment, in.Evidence, projectHeader(in.Req))
}

func metricsPrompt(in promptInput) string {
	return fmt.Sprintf(`Você é um especialista em métricas de marketing e vendas. Defina as métricas de performance para o segmento %s a partir dos dados de pesquisa abaixo.

DADOS DE PESQUISA:
%s

%s
Responda APENAS com JSON válido no formato:

{
  "kpis_principais": [
    {
      "metrica": "Nome da métrica",
      "objetivo": "Meta numérica realista para o segmento",
      "frequencia": "Cadência de acompanhamento"
    }
  ],
  "benchmarks_segmento": {
    "cac_medio": "Custo de aquisição típico",
    "ltv_medio": "Lifetime value típico",
    "taxa_conversao": "Conversão média do funil",
    "ticket_medio": "Ticket médio do mercado"
  },
  "projecoes": {
    "conservador": {"receita_mensal": "Valor", "clientes_mes": "Quantidade"},
    "realista": {"receita_mensal": "Valor", "clientes_mes": "Quantidade"},
    "otimista": {"receita_mensal": "Valor", "clientes_mes": "Quantidade"}
  },
  "plano_acao": ["Primeiros passos de instrumentação"]
}`,
		in.Req.Segment, in.Evidence, projectHeader(in.Req))
}
