package game

// LoadInfo is one sample of server load.
type LoadInfo struct {
	GameCount   int
	PlayerCount int
	CPUUsage    float64 // process CPU, 0-100 per core
	MemUsage    float64 // system memory in use, 0-100
	RSSBytes    uint64
}

// CalculateLoad folds the sample into one score, lower is lighter.
// Weights: CPU 30%, memory 20%, rooms 25%, players 25%; room and player
// counts saturate at capacity.
func (li *LoadInfo) CalculateLoad(roomCapacity, playerCapacity int) float64 {
	normalize := func(n, capacity int) float64 {
		if capacity <= 0 {
			return 0
		}
		return min(float64(n)/float64(capacity), 1.0)
	}
	return li.CPUUsage*0.3 +
		li.MemUsage*0.2 +
		normalize(li.GameCount, roomCapacity)*100*0.25 +
		normalize(li.PlayerCount, playerCapacity)*100*0.25
}
