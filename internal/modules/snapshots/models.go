// Package snapshots holds the derived per-quotation annotations (moving averages
// and relative strength) in a side-table keyed by quotation ID.
package snapshots

// MovingAverage caches the moving averages of one quotation.
// A zero field means the value was not computable for lack of history.
type MovingAverage struct {
	SMA10       float64 `json:"sma10" msgpack:"sma10"`
	SMA50       float64 `json:"sma50" msgpack:"sma50"`
	SMA200      float64 `json:"sma200" msgpack:"sma200"`
	EMA21       float64 `json:"ema21" msgpack:"ema21"`
	SMA30Volume int64   `json:"sma30_volume" msgpack:"sma30_volume"`
}

// RelativeStrength holds the three 0-100 ranks of a quotation together with the
// raw criterion values they were ranked by.
type RelativeStrength struct {
	RSPercentSum               float64 `json:"rs_percent_sum" msgpack:"rs_percent_sum"`
	DistanceTo52WeekHigh       float64 `json:"distance_to_52_week_high" msgpack:"distance_to_52_week_high"`
	UpDownVolumeRatio          float64 `json:"up_down_volume_ratio" msgpack:"up_down_volume_ratio"`
	RSNumber                   int     `json:"rs_number" msgpack:"rs_number"`
	RSNumberDistance52WeekHigh int     `json:"rs_number_distance_52_week_high" msgpack:"rs_number_distance_52_week_high"`
	RSNumberUpDownVolumeRatio  int     `json:"rs_number_up_down_volume_ratio" msgpack:"rs_number_up_down_volume_ratio"`
}
