package synth

import (
	"math"

	"git.disy.net/goetz/moomoot/delay"
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

// Energy below which a string past its excitation is considered silent.
const silenceEnergy = 1e-9

// KarplusStrongParams are the live parameters of a plucked string.
type KarplusStrongParams struct {
	// BaseFreq is the fundamental, in Hz.
	BaseFreq param.Value
	// CutoffFreq is the cutoff of the loop low-pass, in Hz.
	CutoffFreq param.Value
	// FeedbackGain is the sustain: 0 dies at once, 1 rings forever.
	FeedbackGain param.Value
}

func DefaultKarplusStrongParams() KarplusStrongParams {
	return KarplusStrongParams{
		BaseFreq:     param.Default(220),
		CutoffFreq:   param.Default(6000),
		FeedbackGain: param.Default(0.99),
	}
}

// KarplusStrong is a plucked string: a delay line of one period closed by
// a one-pole low-pass, excited by white noise during the first period.
//
//	noise -> + ---------> out
//	         |       |
//	        LP <- delay
type KarplusStrong struct {
	params    KarplusStrongParams
	frameTime float64
	time      float64
	feedback  float64
	energy    float64
	line      *delay.Line
	noise     *WhiteNoise
}

func NewKarplusStrong(p KarplusStrongParams) *KarplusStrong {
	return &KarplusStrong{params: p, noise: NewWhiteNoise()}
}

func (k *KarplusStrong) Params() param.Set {
	return param.Set{
		{Name: "base_freq", Value: &k.params.BaseFreq},
		{Name: "cutoff_freq", Value: &k.params.CutoffFreq},
		{Name: "feedback_gain", Value: &k.params.FeedbackGain},
	}
}

// Init sizes the delay line for the current base frequency.
func (k *KarplusStrong) Init(frameTime float64) {
	k.frameTime = frameTime
	k.line = delay.New(k.lineLength(k.params.BaseFreq.Get()))
}

// Longest delay line, in samples.
const maxLineLength = 1 << 24

// lineLength returns the delay of one period, between 1 and
// maxLineLength samples. A frequency at or below zero gets the shortest.
func (k *KarplusStrong) lineLength(freq float64) int {
	if freq <= 0 {
		return 1
	}
	n := math.Round(1 / (freq * k.frameTime))
	return int(max(1, min(n, maxLineLength)))
}

func (k *KarplusStrong) Sample() sample.Sound {
	freq := k.params.BaseFreq.Get()
	if n := k.lineLength(freq); n != k.line.Len() {
		// resizing drops the string content
		k.line = delay.New(n)
	}

	// a string tuned at or below zero is never excited and dies out
	var period float64
	if freq > 0 {
		period = 1 / freq
	}
	excited := k.time < period
	x := k.feedback
	if excited {
		x += k.noise.next()
	}
	out := x
	k.time += k.frameTime

	x = k.line.Shift(x)

	p := 2 * math.Pi * k.frameTime * k.params.CutoffFreq.Get()
	alpha := p / (p + 1)
	k.feedback = alpha*x + (1-alpha)*k.feedback
	k.feedback *= k.params.FeedbackGain.Get()

	k.energy = 0.95*k.energy + 0.05*k.feedback*k.feedback
	// wait for the excitation to travel once through the loop
	if k.time >= 2*period && k.energy < silenceEnergy {
		return sample.Sound{}
	}
	return sample.MonoSound(out)
}
