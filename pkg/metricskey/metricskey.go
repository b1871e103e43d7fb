package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsLLMRequestsSent is base for counter metric for total requests sent to LLM
	StatsLLMRequestsSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_requests_sent",
		Help:         "stats_llm_requests_sent provides total requests sent to LLM",
		RequiredTags: []string{"provider", "model"},
	}

	StatsLLMBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_sent",
		Help:         "stats_llm_bytes_sent provides total bytes sent to LLM",
		RequiredTags: []string{"provider", "model"},
	}

	StatsLLMBytesReceived = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_received",
		Help:         "stats_llm_bytes_received provides total bytes received from LLM",
		RequiredTags: []string{"provider", "model"},
	}

	StatsToolRounds = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_rounds",
		Help:         "stats_tool_rounds provides total tool rounds executed",
		RequiredTags: []string{"provider", "model"},
	}

	StatsToolRoundsExhausted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_rounds_exhausted",
		Help:         "stats_tool_rounds_exhausted provides total runs that hit the round limit",
		RequiredTags: []string{"provider", "model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsMined = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_mined",
		Help:         "stats_tool_calls_mined provides total tool calls recovered from response text",
		RequiredTags: []string{"provider", "model"},
	}
)

// Perf
var (
	PerfAgentRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_run",
		Help:         "perf_agent_run provides duration of agent run",
		RequiredTags: []string{"agent"},
	}

	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides duration of LLM call",
		RequiredTags: []string{"provider", "model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAgentRun,
	&PerfLLMCall,
	&PerfToolCall,
	&StatsLLMBytesReceived,
	&StatsLLMBytesSent,
	&StatsLLMRequestsSent,
	&StatsToolCallsFailed,
	&StatsToolCallsMined,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsToolRounds,
	&StatsToolRoundsExhausted,
}
