package dto

import "github.com/hhbot/dispatcher/internal/application/referral"

// GenerateReferralRequest is the POST /referrals/generate body.
type GenerateReferralRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// GenerateReferralResponse is the POST /referrals/generate response.
type GenerateReferralResponse struct {
	Code string `json:"code"`
}

// TrackReferralRequest is the POST /referrals/track body.
type TrackReferralRequest struct {
	MessengerID string `json:"messenger_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// ReferralMeResponse is the GET /referrals/me response.
type ReferralMeResponse struct {
	Code          string      `json:"code"`
	ReferredByMe  map[int]int `json:"referred_by_me"`
}

// FromReferralSummary converts a referral.Summary into its wire shape.
func FromReferralSummary(s referral.Summary) ReferralMeResponse {
	return ReferralMeResponse{Code: s.Code, ReferredByMe: s.ReferredByMe}
}
