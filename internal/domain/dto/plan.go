package dto

// InstallmentDTO is a single scheduled installment in a plan preview
type InstallmentDTO struct {
	Sequence int    `json:"sequence"`
	Amount   string `json:"amount"`
	DueDate  string `json:"due_date"`
}

// PlanPreviewResponse describes the permissible installment plan for a pledge
// amount against a campaign's remaining duration.
type PlanPreviewResponse struct {
	Plan            string           `json:"plan"`
	MaxInstallments int              `json:"max_installments"`
	Count           int              `json:"count"`
	Installments    []InstallmentDTO `json:"installments"`
}
