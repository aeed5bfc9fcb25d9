package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsCommitted counts ledger rows accepted and written.
	TransactionsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medstock_transactions_committed_total",
		Help: "Number of stock transactions committed to the ledger.",
	})

	// TransactionsRejected counts writes rejected by the validators,
	// labelled with the violated invariant.
	TransactionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medstock_transactions_rejected_total",
		Help: "Number of stock transactions rejected, by reason.",
	}, []string{"reason"})

	// AssistantToolCalls counts tool invocations made by the AI assistant.
	AssistantToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medstock_assistant_tool_calls_total",
		Help: "Number of analytics tool calls issued by the assistant.",
	}, []string{"tool"})
)
