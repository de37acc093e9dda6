// Package ta derives summary statistics from cached price series.
package ta

import (
	"math"
	"time"

	"cryptoboard/internal/domain"
)

// Lookbacks used by Summarize.
const (
	RSIPeriod = 14
	EMAPeriod = 20
)

// Prices returns the present price values of s in order. Absent samples are
// skipped.
func Prices(s domain.Series) []float64 {
	out := make([]float64, 0, len(s))
	for _, p := range s {
		if p.Price.Valid {
			out = append(out, p.Price.Value)
		}
	}
	return out
}

func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	if period <= 1 {
		copy(out, values)
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSISeries uses Wilder smoothing. Entries before period are NaN; nil is
// returned when there are not enough values.
func RSISeries(values []float64, period int) []float64 {
	if period < 1 || len(values) <= period {
		return nil
	}
	series := make([]float64, len(values))
	for i := range series {
		series[i] = math.NaN()
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	series[period] = rsiFromAvg(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		avgGain = (avgGain*float64(period-1) + math.Max(delta, 0)) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + math.Max(-delta, 0)) / float64(period)
		series[i] = rsiFromAvg(avgGain, avgLoss)
	}
	return series
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Summary describes the priced samples of one series.
type Summary struct {
	Points    int
	Priced    int
	From      time.Time
	To        time.Time
	First     float64
	Last      float64
	Low       float64
	High      float64
	ChangePct float64
	Mean      float64
	StdDev    float64
	EMA       float64
	RSI       domain.Measure
}

// Summarize returns false when s has no priced samples.
func Summarize(s domain.Series) (Summary, bool) {
	sum := Summary{Points: len(s)}
	first := true
	for _, p := range s {
		if !p.Price.Valid {
			continue
		}
		v := p.Price.Value
		if first {
			sum.From, sum.First, sum.Low, sum.High = p.Time, v, v, v
			first = false
		}
		sum.To, sum.Last = p.Time, v
		sum.Low = min(sum.Low, v)
		sum.High = max(sum.High, v)
	}
	if first {
		return sum, false
	}

	prices := Prices(s)
	sum.Priced = len(prices)
	sum.Mean, sum.StdDev = MeanStd(prices)
	if sum.First != 0 {
		sum.ChangePct = (sum.Last - sum.First) / sum.First * 100
	}
	ema := EMASeries(prices, EMAPeriod)
	sum.EMA = ema[len(ema)-1]
	if rsi := RSISeries(prices, RSIPeriod); rsi != nil {
		sum.RSI = domain.Present(rsi[len(rsi)-1])
	}
	return sum, true
}
