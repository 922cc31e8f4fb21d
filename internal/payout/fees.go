package payout

import "github.com/hanzara/quick-hello-wave/internal/apperr"

// Channel fee schedules: tiered flat fees up to a band ceiling, then a
// percentage of the amount with a floor. Percentages are expressed in basis
// points so the arithmetic stays integral.
type feeTier struct {
	upTo int64 // inclusive band ceiling
	flat int64
}

type feeSchedule struct {
	tiers    []feeTier
	topBps   int64 // percentage above the last band, in basis points
	topFloor int64
}

var schedules = map[Channel]feeSchedule{
	ChannelMpesa: {
		tiers:    []feeTier{{500, 15}, {5000, 30}, {20000, 60}},
		topBps:   30,
		topFloor: 100,
	},
	ChannelAirtel: {
		tiers:    []feeTier{{500, 20}, {5000, 35}, {20000, 70}},
		topBps:   35,
		topFloor: 120,
	},
	ChannelBank: {
		tiers:    []feeTier{{5000, 50}, {50000, 100}},
		topBps:   25,
		topFloor: 150,
	},
}

// ComputeFee maps (amount, channel) to the withdrawal fee. Pure and
// deterministic; every supported channel has a schedule.
func ComputeFee(amount int64, ch Channel) (int64, error) {
	schedule, ok := schedules[ch]
	if !ok {
		return 0, apperr.Newf(apperr.KindValidation, "no fee schedule for channel %q", ch)
	}
	for _, tier := range schedule.tiers {
		if amount <= tier.upTo {
			return tier.flat, nil
		}
	}
	fee := amount * schedule.topBps / 10000
	if fee < schedule.topFloor {
		fee = schedule.topFloor
	}
	return fee, nil
}

const (
	peerFeeBps     = 100 // 1%
	peerFeeFloor   = 10
	peerFeeCeiling = 100
)

// PeerTransferFee is the internal wallet-to-wallet fee: 1% of the amount,
// floored at 10 and capped at 100. Independent of the channel table.
func PeerTransferFee(amount int64) int64 {
	fee := amount * peerFeeBps / 10000
	if fee < peerFeeFloor {
		fee = peerFeeFloor
	}
	if fee > peerFeeCeiling {
		fee = peerFeeCeiling
	}
	return fee
}
