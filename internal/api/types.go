package api

import "github.com/theirongolddev/tally/internal/model"

// Response envelopes returned by the service.

type userEnvelope struct {
	User model.User `json:"user"`
}

type categoriesEnvelope struct {
	Categories []model.Category `json:"categories"`
}

type categoryEnvelope struct {
	Category model.Category `json:"category"`
}

type transactionsEnvelope struct {
	Transactions []model.Transaction `json:"transactions"`
}

type transactionEnvelope struct {
	Transaction model.Transaction `json:"transaction"`
}

type budgetsEnvelope struct {
	Budgets []model.Budget `json:"budgets"`
}

type budgetEnvelope struct {
	Budget model.Budget `json:"budget"`
}

type alertsEnvelope struct {
	Alerts []model.BudgetAlert `json:"alerts"`
}
