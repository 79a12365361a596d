package model

type AgentStats struct {
	AgentName  string `json:"agentName"`
	Total      int64  `json:"total"`
	Confirmed  int64  `json:"confirmed"`
	Redirected int64  `json:"redirected"`
	NoAnswer   int64  `json:"noAnswer"`
}

type CallStats struct {
	Total            int64                `json:"total"`
	Active           int64                `json:"active"`
	ByStatus         map[CallStatus]int64 `json:"byStatus"`
	ByAgent          []AgentStats         `json:"byAgent"`
	ByClinic         map[string]int64     `json:"byClinic"`
	ConfirmationRate float64              `json:"confirmationRate"`
}

// ActivityStats are the per-day event counters kept by the processor.
type ActivityStats struct {
	Date     string           `json:"date"`
	Counters map[string]int64 `json:"counters"`
}
