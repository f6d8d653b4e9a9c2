package scoring

import "fmt"

// MinRank and MaxRank bound the importance a user can give a criterion.
const (
	MinRank = 1
	MaxRank = 5
)

// RankWeights maps an importance rank to the weight used in the composite.
// An empty table means the raw rank is the weight; otherwise it must hold
// exactly one entry per rank, index 0 for rank 1.
type RankWeights []float64

// Weight returns the weight for rank. Ranks outside [MinRank, MaxRank] weigh 0.
func (w RankWeights) Weight(rank int) float64 {
	if rank < MinRank || rank > MaxRank {
		return 0
	}
	if len(w) == 0 {
		return float64(rank)
	}
	return w[rank-MinRank]
}

// Validate checks the table shape and that no weight is negative.
func (w RankWeights) Validate() error {
	if len(w) == 0 {
		return nil
	}
	if len(w) != MaxRank-MinRank+1 {
		return fmt.Errorf("rank_weights needs %d entries, got %d", MaxRank-MinRank+1, len(w))
	}
	for i, v := range w {
		if !finite(v) || v < 0 {
			return fmt.Errorf("weight for rank %d must be finite and not negative: %v", i+MinRank, v)
		}
	}
	return nil
}
