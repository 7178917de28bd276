package models

// Progress is a completed-out-of-total pair.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// BoraProgress tracks shipped bags against the deal-wide total.
type BoraProgress struct {
	Shipped int `json:"shipped"`
	Total   int `json:"total"`
}

// DealAnalytics is the read-only progress rollup for one deal. FRK is nil
// unless at least one lot has an FRK-flagged shipment.
type DealAnalytics struct {
	DealID      string       `json:"sauda_id"`
	TotalLots   int          `json:"total_lots"`
	Bora        BoraProgress `json:"bora"`
	FlapSticker Progress     `json:"flap_sticker"`
	GatePass    Progress     `json:"gate_pass"`
	FRK         *Progress    `json:"frk,omitempty"`
}
