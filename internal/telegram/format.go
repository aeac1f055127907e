package telegram

import (
	"fmt"
	"strings"

	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/shopspring/decimal"
)

// PI amounts are shown with four decimals, PiNode amounts as stored.
func pi(d decimal.Decimal) string     { return d.StringFixed(4) }
func pinode(d decimal.Decimal) string { return d.String() }

// inPI is the PI equivalent of a PiNode amount at the fixed rate.
func inPI(d decimal.Decimal) string {
	return d.Div(config.ConversionRateDecimal).StringFixed(2)
}

func WelcomeText() string {
	return `👋 <b>Welcome to PiNode Labs Bot!</b>

I'm your assistant for PiNode mining and referrals.

<b>Available Commands:</b>
/start - Show this welcome message
/referral - Get your referral link and stats
/balance - Check your balances
/stats - View detailed statistics
/missions - Complete missions for PiNode
/claim - Claim your referral bonus
/link - Link your Telegram to your account
/help - Show help message

<b>Quick Actions:</b>
Use the buttons below to get started!`
}

// ReferredWelcomeText greets a user who joined through a referral link.
func ReferredWelcomeText(code string) string {
	return fmt.Sprintf("🔗 <b>Referral Code Applied!</b>\n\nYou joined with referral code <code>%s</code>.\n\n", Escape(code)) + WelcomeText()
}

func HelpText(webAppURL, appURL string) string {
	return fmt.Sprintf(`📖 <b>PiNode Labs Bot - Help</b>

<b>Available Commands:</b>

/start - Show welcome message and quick actions
/app - Open web app in Telegram
/referral - Get your referral link and statistics
/balance - Check your PI Network and PiNode balances
/stats - View detailed statistics
/missions - List missions and claim rewards
/claim - Claim your pending referral bonus
/exchange &lt;amount&gt; - Exchange PiNode for PI (%d PiNode = 1 PI)
/withdraw &lt;amount&gt; &lt;address&gt; - Request a PI withdrawal
/link &lt;email&gt; - Link your Telegram account to your email
/help - Show this help message

<b>Quick Actions:</b>
<a href="%s">📱 Open Web App</a>

<b>Need more help?</b>
Visit our website: %s`, config.ConversionRate, webAppURL, appURL)
}

func WebAppText(webAppURL string) string {
	return fmt.Sprintf(`🚀 <b>Open PiNode Labs Web App</b>

Tap the button below to open the web app in Telegram!

You can:
• Check your balances
• Share referral links
• Complete missions
• Claim rewards

<a href="%s">📱 Open Web App</a>`, webAppURL)
}

func ReferralText(link string, st domain.ReferralStats) string {
	return fmt.Sprintf(`🎁 <b>Your Referral Program</b>

🔗 <b>Referral Link:</b>
<code>%s</code>

📊 <b>Statistics:</b>
👥 Total Referrals: %d
✅ Active Referrals: %d
💰 Total Earned: %s PiNode
⏳ Pending Bonus: %s PiNode (≈ %s PI)

💡 <b>How it works:</b>
Share your referral link with friends. Each active friend gives you %d PiNode (≈ %s PI Network).

Use /claim to collect your bonus.`,
		Escape(link), st.Total, st.Active, pinode(st.TotalBonusEarned), pinode(st.PendingBonus), inPI(st.PendingBonus),
		config.ReferralReward, inPI(config.ReferralRewardDecimal))
}

func BalanceText(u *domain.User) string {
	return fmt.Sprintf(`💰 <b>Your Balances</b>

💎 <b>PI Network:</b> %s PI
⛏️ <b>PiNode:</b> %s PiNode

💡 Exchange PiNode for PI with /exchange.`, pi(u.NetworkBalance), pinode(u.MinedBalance))
}

func StatsText(u *domain.User, st domain.ReferralStats) string {
	return fmt.Sprintf(`📊 <b>Your Statistics</b>

<b>💰 Balances:</b>
💎 PI Network: %s PI
⛏️ PiNode: %s PiNode

<b>🎁 Referrals:</b>
👥 Total: %d
✅ Active: %d
💰 Earned: %s PiNode
⏳ Pending: %s PiNode

🔗 <b>Referral Code:</b> <code>%s</code>`,
		pi(u.NetworkBalance), pinode(u.MinedBalance),
		st.Total, st.Active, pinode(st.TotalBonusEarned), pinode(st.PendingBonus),
		Escape(u.ReferralCode))
}

const LinkUsageText = "❌ Please provide your email address:\n\n/link your@email.com"

func LinkedText(email string) string {
	return fmt.Sprintf("✅ <b>Account Linked Successfully!</b>\n\nYour Telegram account is now linked to:\n<code>%s</code>\n\nYou'll now receive notifications about your referrals, rewards and more!", Escape(email))
}

func AccountNotFoundText(appURL string) string {
	return fmt.Sprintf("❌ Account not found.\n\nPlease register on our website first, then link your Telegram account.\n\nWebsite: %s", appURL)
}

func MissionsText(views []domain.MissionView) string {
	var sb strings.Builder
	sb.WriteString("🎯 <b>Missions</b>\n\n")
	for _, v := range views {
		mark := "⬜"
		switch v.Status {
		case domain.MissionStatusClaimed:
			mark = "✅"
		case domain.MissionStatusCompleted:
			mark = "☑️"
		}
		fmt.Fprintf(&sb, "%s %s: <b>%s PiNode</b>\n", mark, Escape(v.Title), pinode(v.Reward))
	}
	sb.WriteString("\nOpen a mission link, then tap Claim to collect the reward.")
	return sb.String()
}

func MissionClaimText(c domain.MissionClaim) string {
	if c.AlreadyClaimed {
		return fmt.Sprintf("ℹ️ This mission was already claimed on %s.", c.ClaimedAt.Format("2006-01-02"))
	}
	return fmt.Sprintf("✅ <b>Mission Complete!</b>\n\n+%s PiNode added to your balance.", pinode(c.Reward))
}

func ReferralClaimText(r domain.ClaimResult) string {
	if r.Nothing {
		return "ℹ️ No pending referral bonus to claim yet. Invite friends with /referral!"
	}
	return fmt.Sprintf("🎁 <b>Referral Bonus Claimed!</b>\n\n+%s PiNode for %d active referrals (≈ %s PI).",
		pinode(r.Amount), r.Referrals, inPI(r.Amount))
}

const ExchangeUsageText = "❌ Usage: /exchange &lt;amount&gt;\n\nExample: /exchange 100"

func ExchangeText(tx *domain.Transaction) string {
	received := decimal.Zero
	if r := tx.AmountReceived(); r != nil {
		received = *r
	}
	return fmt.Sprintf("💱 <b>Exchange Completed</b>\n\n%s PiNode → %s PI", pinode(tx.Amount), pi(received))
}

const WithdrawUsageText = "❌ Usage: /withdraw &lt;amount&gt; &lt;address&gt;\n\nExample: /withdraw 100 GABC...XYZ"

func WithdrawRequestedText(tx *domain.Transaction) string {
	return fmt.Sprintf("⏳ <b>Withdrawal Requested</b>\n\n%s PI to <code>%s</code> via %s.\n\nYou'll be notified once it is approved.",
		pi(tx.Amount), Escape(withdrawAddress(tx)), Escape(tx.Network()))
}

func withdrawAddress(tx *domain.Transaction) string {
	if d, ok := tx.Details.(domain.WithdrawDetails); ok {
		return d.Address
	}
	return ""
}

const (
	UnknownCommandText = "❓ Unknown command. Use /help to see available commands."
	DefaultReplyText   = "👋 Hi! Use /help to see available commands.\n\nTo link your account, use: /link your@email.com"
	RateLimitedText    = "⏳ Too many requests. Please wait a moment."
	InternalErrorText  = "❌ An error occurred. Please try again later."
)

// ErrorText turns a service error into a reply. Internal failures are not
// described to the user.
func ErrorText(err error) string {
	if domain.KindOf(err) == domain.KindInternal {
		return InternalErrorText
	}
	return "❌ " + Escape(capitalize(err.Error())) + "."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatNotification renders a notification for its recipient.
func FormatNotification(n domain.Notification) string {
	switch n.Kind {
	case domain.NotifyDepositApproved:
		msg := fmt.Sprintf("✅ <b>Deposit Approved</b>\n\n+%s %s credited to your balance.", amount(n.Amount, n.Currency), n.Currency)
		if n.Network != "" {
			msg += fmt.Sprintf("\nNetwork: %s", Escape(n.Network))
		}
		return msg
	case domain.NotifyWithdrawApproved:
		msg := fmt.Sprintf("✅ <b>Withdrawal Approved</b>\n\n%s %s is on its way.", amount(n.Amount, n.Currency), n.Currency)
		if n.Network != "" {
			msg += fmt.Sprintf("\nNetwork: %s", Escape(n.Network))
		}
		return msg
	case domain.NotifyExchange:
		return fmt.Sprintf("💱 Exchange Completed: %s PiNode → %s PI Network", pinode(n.Amount), pi(n.Received))
	case domain.NotifyReferralBonus:
		return fmt.Sprintf("🎁 Referral Bonus: +%s PiNode (≈ %s PI)", pinode(n.Amount), inPI(n.Amount))
	case domain.NotifyMissionReward:
		return fmt.Sprintf("🎯 Mission Reward: +%s PiNode for <b>%s</b>", pinode(n.Amount), Escape(n.Subject))
	case domain.NotifyNewReferral:
		return fmt.Sprintf("🎉 <b>New Referral!</b>\n\n%s joined using your referral link!\n\nYou'll earn %d PiNode once they become active.",
			Escape(n.Subject), config.ReferralReward)
	default:
		return fmt.Sprintf("ℹ️ %s", Escape(string(n.Kind)))
	}
}

func amount(d decimal.Decimal, c domain.Currency) string {
	if c == domain.CurrencyPI {
		return pi(d)
	}
	return pinode(d)
}
