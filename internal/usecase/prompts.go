package usecase

import "finance-bot/internal/domain"

const (
	msgCancelled      = "Cancelado."
	msgAskPai         = "Gasto com o Pai?"
	msgAskCard        = "Cartão de crédito?"
	msgAskDesc        = "Digite no formato:\nmercado,-150,00"
	msgInvalidDesc    = "Formato inválido!\nExemplo: mercado,-150,00"
	msgAskCategory    = "Escolha a categoria:"
	msgAskBank        = "Qual conta?"
	msgOutOfOrder     = "Fora de ordem. Envie /novo para começar."
	msgSessionExpired = "Sessão expirada ou fora de ordem. Envie /novo."
	msgSending        = "Enviando..."
	msgConfirmed      = "Confirmado na planilha!"
	msgUnconfirmed    = "Google recebeu, mas não confirmou."
	msgWriteFailed    = "Erro ao salvar: "
	unknownError      = "desconhecido"

	msgLedgerUnreachable = "falha de comunicação com a planilha"

	cmdCancel = "/cancelar"
	cmdNew    = "/novo"

	categoriesPerRow = 3
)

func yesNoKeyboard(prefix string) *domain.Keyboard {
	return domain.InlineKeyboard([]domain.Button{
		{Text: "Sim", ChoiceID: prefix + "_sim"},
		{Text: "Não", ChoiceID: prefix + "_nao"},
	})
}

func paiKeyboard() *domain.Keyboard {
	return yesNoKeyboard(ChoicePai.String())
}

func cardKeyboard() *domain.Keyboard {
	return yesNoKeyboard(ChoiceCard.String())
}

func bankKeyboard() *domain.Keyboard {
	return domain.InlineKeyboard(
		[]domain.Button{
			{Text: "BB", ChoiceID: "bank_BB"},
			{Text: "Itaú", ChoiceID: "bank_Itau"},
		},
		[]domain.Button{
			{Text: "XP", ChoiceID: "bank_XP"},
			{Text: "Infinite", ChoiceID: "bank_Infinite"},
		},
	)
}

func categoryKeyboard(categories []string) *domain.Keyboard {
	return domain.ReplyKeyboard(categories, categoriesPerRow)
}
