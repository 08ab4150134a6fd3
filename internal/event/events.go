package event

import "time"

const (
	EventAssetRegistered      = "pool.asset_registered"
	EventBetOpened            = "pool.bet_opened"
	EventBetWon               = "pool.bet_won"
	EventBetLost              = "pool.bet_lost"
	EventReferralRewardEarned = "pool.referral_reward_earned"
	EventRewardClaimed        = "pool.reward_claimed"
	EventBuyPriceChanged      = "pool.buy_price_changed"
	EventSellPriceChanged     = "pool.sell_price_changed"
	EventInvestmentAdded      = "pool.investment_added"
	EventWithdrawn            = "pool.withdrawn"
)

// Payload is the body of every pool event. Amounts and prices are decimal
// strings so subscribers never deal with 256-bit integers directly.
type Payload struct {
	Name      string    `json:"event"`
	AssetID   int       `json:"asset_id"`
	Asset     string    `json:"asset"`
	Account   string    `json:"account,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	BetID     string    `json:"bet_id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Price     string    `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
