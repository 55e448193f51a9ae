package domain

// CardAccount is the account name written for credit card entries.
const CardAccount = "Cartão"

// LedgerRecord is the row appended to the spreadsheet.
type LedgerRecord struct {
	Name         string `json:"nome"`
	Amount       string `json:"valor"`
	Date         string `json:"data"`
	Category     string `json:"categoria"`
	Account      string `json:"conta"`
	PayerIsPai   bool   `json:"pai"`
	IsCreditCard bool   `json:"cc"`
}

// CheckQuery looks up a record by its natural key.
type CheckQuery struct {
	Name         string
	Amount       string
	Date         string
	IsCreditCard bool
}

// AppendResult is the store's answer to a write.
type AppendResult struct {
	Status  string
	Message string
}

// Failed reports whether the store rejected the write.
func (r AppendResult) Failed() bool {
	return r.Status == "erro"
}

// CheckResult is the store's answer to a visibility check.
type CheckResult struct {
	Found bool
	Error string
}
