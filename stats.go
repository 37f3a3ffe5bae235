package moize

import "github.com/chaabaj/moize/pkg/stats"

// CollectStats turns recording on the process-wide stats collector on or
// off. Instances constructed without [WithStatsCollector] record into it.
func CollectStats(enabled bool) {
	if enabled {
		stats.Default().Enable()
		return
	}
	stats.Default().Disable()
}

// IsCollectingStats reports whether the process-wide collector is recording.
func IsCollectingStats() bool {
	return stats.Default().Enabled()
}

// GetStats returns aggregate usage statistics across all profiles of the
// process-wide collector.
func GetStats() stats.Stats {
	return stats.Default().Stats()
}

// GetProfileStats returns the usage statistics recorded for one profile of
// the process-wide collector.
func GetProfileStats(name string) stats.Profile {
	return stats.Default().ProfileStats(name)
}

// ResetStats clears all profiles of the process-wide collector. Whether
// collection is enabled is left unchanged.
func ResetStats() {
	stats.Default().Reset()
}
