package dto

import "github.com/hhbot/dispatcher/internal/application/quota"

// QuotaResponse is the GET /quota response.
type QuotaResponse struct {
	Tariff     string `json:"tariff"`
	DailyCap   int    `json:"daily_cap"`
	HardCap    int    `json:"hard_cap"`
	UsedToday  int    `json:"used_today"`
	Remaining  int    `json:"remaining"`
	ResetLabel string `json:"reset_label"`
}

// FromQuotaView converts a quota.View into its wire shape.
func FromQuotaView(v quota.View) QuotaResponse {
	return QuotaResponse{
		Tariff:     string(v.Tariff),
		DailyCap:   v.DailyCap,
		HardCap:    v.HardCap,
		UsedToday:  v.UsedToday,
		Remaining:  v.Remaining,
		ResetLabel: v.ResetLabel,
	}
}
