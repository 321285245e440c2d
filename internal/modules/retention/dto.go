package retention

// SendResult is the outcome of one single-customer offer flow. Expected
// business rejections come back here with Success=false; only
// infrastructure failures surface as errors.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OfferID int64  `json:"offer_id,omitempty"`
}

// BatchResult accumulates one automated batch run.
type BatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
