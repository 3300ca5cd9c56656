// Package categories holds the category registry, the keyword table and
// the transaction classifier. The registry is static configuration: other
// layers read it, and edits arrive as a new Ruleset value rather than as
// in-place mutation, which keeps classification pure and testable.
package categories

const (
	// IncomeCategory is assigned to every positive-amount transaction.
	IncomeCategory = "income"
	// FallbackCategory is assigned to debits no keyword matched.
	FallbackCategory = "flexible"

	fallbackColor = "#6b7280"
)

type CategoryType string

const (
	TypeExpense    CategoryType = "expense"
	TypeIncome     CategoryType = "income"
	TypeInvestment CategoryType = "investment"
)

// Category describes one spending/income/investment bucket. ID is the
// stable key other layers reference; Type is fixed at creation.
type Category struct {
	ID            string       `yaml:"id" json:"id"`
	Name          string       `yaml:"name" json:"name"`
	Color         string       `yaml:"color" json:"color"`
	Type          CategoryType `yaml:"type" json:"type"`
	Subcategories []string     `yaml:"subcategories,omitempty" json:"subcategories,omitempty"`
}

// DefaultCategories returns the built-in registry in declaration order.
// The order matters: the classifier resolves keyword ties by taking the
// first declared category that matches.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:            "food",
			Name:          "Alimentação",
			Color:         "#ef4444",
			Type:          TypeExpense,
			Subcategories: []string{"Restaurantes", "Supermercado", "Delivery", "Lanchonetes"},
		},
		{
			ID:            "transport",
			Name:          "Transporte",
			Color:         "#3b82f6",
			Type:          TypeExpense,
			Subcategories: []string{"Combustível", "Uber/Taxi", "Transporte Público", "Estacionamento"},
		},
		{
			ID:            "bills",
			Name:          "Contas Fixas",
			Color:         "#8b5cf6",
			Type:          TypeExpense,
			Subcategories: []string{"Energia", "Água", "Internet", "Telefone", "Aluguel", "Condomínio"},
		},
		{
			ID:            "credit-card",
			Name:          "Cartão de Crédito",
			Color:         "#f59e0b",
			Type:          TypeExpense,
			Subcategories: []string{"Fatura", "Anuidade", "Juros"},
		},
		{
			ID:            "flexible",
			Name:          "Contas Flexíveis",
			Color:         "#10b981",
			Type:          TypeExpense,
			Subcategories: []string{"Streaming", "Academia", "Assinaturas", "Cursos"},
		},
		{
			ID:            "unnecessary",
			Name:          "Gastos Desnecessários",
			Color:         "#ef4444",
			Type:          TypeExpense,
			Subcategories: []string{"Impulso", "Entretenimento", "Compras Supérfluas"},
		},
		{
			ID:            "health",
			Name:          "Saúde",
			Color:         "#06b6d4",
			Type:          TypeExpense,
			Subcategories: []string{"Médico", "Farmácia", "Plano de Saúde", "Exames"},
		},
		{
			ID:            "income",
			Name:          "Receitas",
			Color:         "#22c55e",
			Type:          TypeIncome,
			Subcategories: []string{"Salário", "Freelance", "Vendas", "Outros"},
		},
		{
			ID:            "investments",
			Name:          "Investimentos",
			Color:         "#6366f1",
			Type:          TypeInvestment,
			Subcategories: []string{"Ações", "Fundos", "Renda Fixa", "Criptomoedas"},
		},
	}
}

// defaultKeywords is the built-in keyword table. Keys reference registry
// ids; declaration order here is the classifier's tie-break order.
func defaultKeywords() []KeywordRule {
	return []KeywordRule{
		{Category: "food", Keywords: []string{
			"restaurante", "lanchonete", "pizzaria", "hamburgueria", "ifood",
			"uber eats", "rappi", "supermercado", "padaria", "açougue",
			"hortifruti", "mercado", "extra", "carrefour", "pao de acucar",
			"big", "walmart",
		}},
		{Category: "transport", Keywords: []string{
			"uber", "taxi", "99", "combustivel", "posto", "shell",
			"petrobras", "ipiranga", "ale", "metro", "onibus",
			"estacionamento", "zona azul",
		}},
		{Category: "bills", Keywords: []string{
			"energia", "luz", "cemig", "copel", "celpe", "agua",
			"saneamento", "internet", "vivo", "tim", "claro", "oi", "net",
			"aluguel", "condominio",
		}},
		{Category: "credit-card", Keywords: []string{
			"fatura", "cartao", "anuidade", "juros", "financiamento",
		}},
		{Category: "flexible", Keywords: []string{
			"netflix", "spotify", "amazon prime", "disney", "globoplay",
			"academia", "smartfit", "bioritmo", "assinatura", "curso",
		}},
		{Category: "health", Keywords: []string{
			"farmacia", "drogaria", "medico", "clinica", "hospital",
			"laboratorio", "plano de saude", "unimed", "bradesco saude",
			"amil",
		}},
		{Category: "income", Keywords: []string{
			"salario", "pix recebido", "transferencia recebida", "deposito",
		}},
		{Category: "investments", Keywords: []string{
			"investimento", "aplicacao", "resgate", "dividendo", "juros",
		}},
	}
}
