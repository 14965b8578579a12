// Package metrics holds the prometheus collectors of the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskearn_updates_total",
			Help: "Telegram updates received, by type",
		},
		[]string{"type"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskearn_rate_limited_total",
			Help: "Updates dropped by the rate limiter",
		},
	)
	WithdrawRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskearn_withdraw_requests_total",
			Help: "Withdraw requests, by outcome",
		},
		[]string{"outcome"},
	)
	WithdrawDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskearn_withdraw_decisions_total",
			Help: "Admin decisions on withdraw requests",
		},
		[]string{"decision"},
	)
	ProofDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskearn_proof_decisions_total",
			Help: "Admin decisions on task proofs",
		},
		[]string{"decision"},
	)
	TaskCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskearn_task_completions_total",
			Help: "Task rewards credited",
		},
	)
	ReferralBonuses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskearn_referral_bonuses_total",
			Help: "Referral bonuses credited",
		},
	)
)

func init() {
	prometheus.MustRegister(Updates)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(WithdrawRequests)
	prometheus.MustRegister(WithdrawDecisions)
	prometheus.MustRegister(ProofDecisions)
	prometheus.MustRegister(TaskCompletions)
	prometheus.MustRegister(ReferralBonuses)
}

// Outcome labels for WithdrawRequests.
const (
	OutcomeAccepted     = "accepted"
	OutcomeBelowMinimum = "below_minimum"
	OutcomeInsufficient = "insufficient_balance"
	OutcomeNoWallet     = "wallet_not_set"
	OutcomeDuplicate    = "already_pending"
	OutcomeError        = "error"
)

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)
