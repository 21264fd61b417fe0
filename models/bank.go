package models

// BankAccount is the payout target. AccountNumber is stored encrypted.
type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

func (b BankAccount) Complete() bool {
	return b.BankName != "" && b.AccountNumber != "" && b.AccountName != ""
}

// Masked keeps only the last four digits of the account number.
func (b BankAccount) Masked() string {
	n := b.AccountNumber
	if len(n) <= 4 {
		return n
	}
	masked := make([]byte, len(n))
	for i := range masked {
		if i < len(n)-4 {
			masked[i] = '*'
		} else {
			masked[i] = n[i]
		}
	}
	return string(masked)
}

type BankDetailsRequest struct {
	BankName      string `json:"bankName" validate:"required,min=2"`
	AccountNumber string `json:"accountNumber" validate:"required,numeric,min=10,max=20"`
	AccountName   string `json:"accountName" validate:"required,min=2"`
}
