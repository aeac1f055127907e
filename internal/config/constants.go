package config

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PiNode per PI
	ConversionRate = 20

	// Smallest exchange, in PiNode
	MinExchange = 20

	// Floor for the min_withdraw platform setting, in PI
	PlatformMinWithdraw = 100

	// Bonus stamped on each active referral, in PiNode
	ReferralReward = 100

	// Identical pending withdrawals inside this window are rejected
	WithdrawDuplicateWindow = 60 * time.Second

	// Minimum trimmed length of a withdrawal address
	MinAddressLength = 10

	// Failure reasons listed in a bulk approval summary
	BulkErrorSummaryLimit = 3

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Timeout for a single outbound notification
	NotifyTimeout = 10 * time.Second

	// Default and maximum page sizes for ledger listings
	DefaultListLimit = 50
	MaxListLimit     = 500

	// Lifetime of the redis claimed-missions set
	ClaimCacheTTL = 24 * time.Hour

	// Default lifetime of operator-minted API tokens
	DefaultTokenTTL = 24 * time.Hour

	// HTTP server shutdown grace period
	ShutdownTimeout = 15 * time.Second

	// Referral code attempts before giving up
	ReferralCodeAttempts = 10

	// Settings keys
	SettingMinWithdraw = "min_withdraw"
)

var (
	ConversionRateDecimal      = decimal.NewFromInt(ConversionRate)
	MinExchangeDecimal         = decimal.NewFromInt(MinExchange)
	PlatformMinWithdrawDecimal = decimal.NewFromInt(PlatformMinWithdraw)
	ReferralRewardDecimal      = decimal.NewFromInt(ReferralReward)
)

// DepositNetworks lists the chains a deposit can be requested on.
var DepositNetworks = []string{"TRC20", "BEP20", "ERC20", "Polygon", "Solana", "TON"}
