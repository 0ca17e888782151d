// Package models holds the gorm row shapes persisted for every domain
// aggregate. Mapping to and from domain types lives next to each
// repository, grounded in the teacher's paymentrepository.go pattern.
package models

import "time"

// UserModel is the users table.
type UserModel struct {
	ID           uint   `gorm:"primaryKey"`
	MessengerID  string `gorm:"uniqueIndex;size:64;not null"`
	DisplayName  *string
	ReferralCode   *string `gorm:"uniqueIndex;size:32"`
	PendingRefCode *string `gorm:"size:32"`
	ReferredBy     *uint   `gorm:"index"`
	FirstSeenAt  time.Time
	LastSeenAt   time.Time
	UTMSource    *string `gorm:"size:128"`
	UTMMedium    *string `gorm:"size:128"`
	UTMCampaign  *string `gorm:"size:128"`
	HHExternalID *string `gorm:"index;size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// HHTokenModel is the hh_tokens table, 0..1 per user.
type HHTokenModel struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"uniqueIndex;not null"`
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (HHTokenModel) TableName() string { return "hh_tokens" }

// ResumeModel is the resumes table, unique on (user_id, external_id).
type ResumeModel struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"uniqueIndex:idx_resumes_user_external;not null"`
	ExternalID    string `gorm:"uniqueIndex:idx_resumes_user_external;size:64;not null"`
	Title         string
	Area          string
	Visibility    string
	LastUpdatedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ResumeModel) TableName() string { return "resumes" }

// SavedRequestModel is the saved_requests table.
type SavedRequestModel struct {
	ID                  uint `gorm:"primaryKey"`
	UserID              uint `gorm:"index;not null"`
	Title               string
	Query               string
	AreaID              *string
	Employment          string // comma-joined
	WorkSchedule        string
	ProfessionalRoleIDs string
	SearchFieldScopes   string
	DefaultCoverLetter  *string `gorm:"type:text"`
	CanonicalQS         string  `gorm:"type:text"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (SavedRequestModel) TableName() string { return "saved_requests" }

// CampaignModel is the campaigns table. The partial unique index on
// (user_id) where status='active' is created by the migration, not gorm.
type CampaignModel struct {
	ID               uint `gorm:"primaryKey"`
	UserID           uint `gorm:"index;not null"`
	Title            string
	SavedRequestID   *uint
	ResumeExternalID string `gorm:"size:64;not null"`
	Status           string `gorm:"index;size:16;not null"`
	DailyLimit       int
	SentToday        int
	SentTotal        int
	StartedAt        *time.Time
	StoppedAt        *time.Time
	LastPolledAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (CampaignModel) TableName() string { return "campaigns" }

// ApplicationModel is the applications table, unique on (user_id, vacancy_id).
type ApplicationModel struct {
	ID              uint  `gorm:"primaryKey"`
	UserID          uint  `gorm:"uniqueIndex:idx_applications_user_vacancy;not null"`
	VacancyID       int64 `gorm:"uniqueIndex:idx_applications_user_vacancy;not null"`
	ResumeID        string
	CoverLetter     *string `gorm:"type:text"`
	Kind            string  `gorm:"size:16;not null"`
	Status          string  `gorm:"index:idx_applications_status_created;size:16;not null"`
	AttemptCount    int
	NextTryAt       *time.Time `gorm:"index"`
	ErrorCode       *string
	ResponsePayload *string `gorm:"type:text"`
	CampaignID      *uint   `gorm:"index"`
	CreatedAt       time.Time `gorm:"index:idx_applications_status_created"`
	UpdatedAt       time.Time
	SentAt          *time.Time
}

func (ApplicationModel) TableName() string { return "applications" }

// NotificationModel is the notifications table.
type NotificationModel struct {
	ID          uint `gorm:"primaryKey"`
	UserID      *uint `gorm:"index"`
	Scope       string `gorm:"size:64;not null"`
	Body        string `gorm:"type:text"`
	ScheduledAt time.Time `gorm:"index"`
	SentAt      *time.Time
	Status      string `gorm:"index;size:16;not null"`
	Error       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (NotificationModel) TableName() string { return "notifications" }

// SubscriptionModel is the subscriptions table.
type SubscriptionModel struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index;not null"`
	TariffRef string
	StartedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
	Status    string    `gorm:"index;size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

// SubscriptionReminderModel backs the at-most-once-per-kind reminder marker,
// unique on (subscription_id, kind).
type SubscriptionReminderModel struct {
	ID             uint `gorm:"primaryKey"`
	SubscriptionID uint `gorm:"uniqueIndex:idx_sub_reminders;not null"`
	Kind           string `gorm:"uniqueIndex:idx_sub_reminders;size:16;not null"`
	CreatedAt      time.Time
}

func (SubscriptionReminderModel) TableName() string { return "subscription_reminders" }

// ReferralModel is the referrals table, unique on (user_id, parent_id, level).
type ReferralModel struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_referrals_edge;not null"`
	ParentID  uint `gorm:"uniqueIndex:idx_referrals_edge;not null"`
	Level     int  `gorm:"uniqueIndex:idx_referrals_edge;not null"`
	CreatedAt time.Time
}

func (ReferralModel) TableName() string { return "referrals" }

// PaymentModel is the payments table, unique on (provider, provider_transaction_id).
type PaymentModel struct {
	ID                    uint   `gorm:"primaryKey"`
	Provider              string `gorm:"uniqueIndex:idx_payments_provider_tx;size:32;not null"`
	ProviderTransactionID string `gorm:"uniqueIndex:idx_payments_provider_tx;size:128;not null"`
	UserID                uint   `gorm:"index;not null"`
	TariffID              string
	PeriodDays            int
	PriceCents            int64
	Status                string `gorm:"size:16;not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (PaymentModel) TableName() string { return "payments" }

// TransactionModel is the append-only ledger table.
type TransactionModel struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Kind        string `gorm:"size:16;not null"`
	AmountCents int64
	ReferenceID string `gorm:"index;size:128"`
	Status      string `gorm:"size:16;not null"`
	CreatedAt   time.Time
}

func (TransactionModel) TableName() string { return "transactions" }
