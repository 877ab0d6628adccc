package stateneuron

import (
	"errors"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

type hookRecorder struct {
	ctxs []hooking.HookCtx
}

func (h *hookRecorder) Func(ctx hooking.HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

func (h *hookRecorder) at(pos *hooking.HookPos) []hooking.HookCtx {
	var out []hooking.HookCtx
	for _, c := range h.ctxs {
		if c.Pos == pos {
			out = append(out, c)
		}
	}

	return out
}

func smallSpec() Spec {
	spec := DefaultSpec()
	spec.NFbk = 2
	spec.NPred = 2
	spec.BufferSizeMS = 0.4
	spec.TimeTrialMS = 1.0
	spec.TimeWaitMS = 0.4

	return spec
}

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		sender   *MockPulseSender
		n        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sender = NewMockPulseSender(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with default parameters", func() {
		BeforeEach(func() {
			n = MakeBuilder().Build("neuron")
		})

		It("should report the default status", func() {
			status := n.GetStatus()

			Expect(status).To(HaveLen(len(StatusNames())))
			Expect(status["N_fbk"]).To(Equal(400))
			Expect(status["N_pred"]).To(Equal(400))
			Expect(status["buffer_steps"]).To(Equal(1000))
			Expect(status["trial_steps"]).To(Equal(int64(6500)))
			Expect(status["wait_steps"]).To(Equal(int64(1500)))
			Expect(status["last_spike_time"]).To(Equal(-1.0))
			Expect(status["current_fbk_input"]).To(HaveLen(400))
			Expect(status["fbk_buffer"]).To(HaveLen(400 * 1000))
			Expect(status["position_count"]).To(Equal(0))
		})

		It("should resize the channel arrays", func() {
			err := n.SetStatus(map[string]any{"N_fbk": 10})

			Expect(err).NotTo(HaveOccurred())
			status := n.GetStatus()
			Expect(status["current_fbk_input"]).To(HaveLen(10))
			Expect(status["fbk_counts"]).To(HaveLen(10))
			Expect(status["fbk_buffer"]).To(HaveLen(10 * 1000))
			Expect(status["current_pred_input"]).To(HaveLen(400))
			Expect(n.HasPort(pulse.PortFeedback, 9)).To(BeTrue())
			Expect(n.HasPort(pulse.PortFeedback, 10)).To(BeFalse())
		})

		It("should reject a vector of the wrong length", func() {
			Expect(n.SetStatus(map[string]any{"N_fbk": 10})).To(Succeed())

			err := n.SetStatus(map[string]any{
				"current_fbk_input": make([]float64, 5),
			})

			Expect(errors.Is(err, ErrInconsistentSize)).To(BeTrue())
			var sizeErr *SizeError
			Expect(errors.As(err, &sizeErr)).To(BeTrue())
			Expect(sizeErr.Field).To(Equal("current_fbk_input"))
			Expect(sizeErr.Want).To(Equal(10))
			Expect(sizeErr.Got).To(Equal(5))
			Expect(n.GetStatus()["current_fbk_input"]).To(HaveLen(10))
		})

		It("should leave the neuron untouched when any key fails", func() {
			err := n.SetStatus(map[string]any{
				"N_fbk":             10,
				"kp":                2.0,
				"current_fbk_input": make([]float64, 5),
			})

			Expect(err).To(MatchError(ErrInconsistentSize))
			Expect(n.Spec().NFbk).To(Equal(400))
			Expect(n.Spec().Kp).To(Equal(1.0))
		})

		It("should accept a vector sized for the new population", func() {
			input := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 2}

			err := n.SetStatus(map[string]any{
				"N_fbk":             10,
				"current_fbk_input": input,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(n.GetStatus()["current_fbk_input"]).To(Equal(input))
		})

		It("should check the declared buffer capacity", func() {
			err := n.SetStatus(map[string]any{"fbk_bf_size": 100})
			Expect(errors.Is(err, ErrInconsistentSize)).To(BeTrue())

			err = n.SetStatus(map[string]any{"fbk_bf_size": 400 * 1000})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject unknown and read-only keys", func() {
			Expect(n.SetStatus(map[string]any{"no_such_key": 1})).
				To(MatchError(ErrUnknownKey))
			Expect(n.SetStatus(map[string]any{"buffer_steps": 3})).
				To(MatchError(ErrBadValue))
		})

		It("should reject values of the wrong type", func() {
			Expect(n.SetStatus(map[string]any{"pos": 1})).
				To(MatchError(ErrBadValue))
			Expect(n.SetStatus(map[string]any{"N_fbk": 2.5})).
				To(MatchError(ErrBadValue))
			Expect(n.SetStatus(map[string]any{"N_fbk": 2.0})).To(Succeed())
			Expect(n.Spec().NFbk).To(Equal(2))
		})

		It("should reject integers too large for the platform", func() {
			Expect(n.SetStatus(map[string]any{"N_fbk": 1e300})).
				To(MatchError(ErrBadValue))
			Expect(n.SetStatus(map[string]any{"N_fbk": -1e300})).
				To(MatchError(ErrBadValue))
			Expect(n.Spec().NFbk).To(Equal(400))
		})

		It("should accept delays up to the delivery horizon", func() {
			Expect(n.MaxDelay()).To(Equal(int64(1024)))
		})

		It("should reject durations that are not whole steps", func() {
			err := n.SetStatus(map[string]any{"buffer_size": 0.05})

			Expect(err).To(MatchError(sim.ErrStepPrecisionLoss))
		})
	})

	Context("with small populations", func() {
		BeforeEach(func() {
			spec := smallSpec()
			spec.BaseRate = 0
			n = MakeBuilder().WithSpec(spec).WithSender(sender).Build("neuron")
		})

		It("should count occupancy over the window", func() {
			sender.EXPECT().Send(gomock.Any()).AnyTimes()

			for step := int64(0); step < 4; step++ {
				Expect(n.Deliver(pulse.Pulse{
					Port:         pulse.PortFeedback,
					Channel:      0,
					Weight:       1,
					Multiplicity: 1,
					Offset:       step,
				})).To(Succeed())
			}

			Expect(n.Update(0, 0, 4)).To(Succeed())

			status := n.GetStatus()
			Expect(status["fbk_counts"]).To(Equal([]float64{4, 0}))
			Expect(status["mean_fbk"]).To(BeNumerically("~", 2, 1e-12))
			Expect(status["var_fbk"]).To(BeNumerically("~", 4, 1e-12))
			Expect(status["CV_fbk"]).To(BeNumerically("~", 2, 1e-12))
			Expect(status["CV_pred"]).To(Equal(3.0))
			Expect(status["total_CV"]).To(BeNumerically("~", 5, 1e-12))
			Expect(status["in_rate"]).To(BeNumerically("~", 3000, 1e-9))
			Expect(status["out_rate"]).To(BeNumerically("~", 3000, 1e-9))
			Expect(status["lambda_poisson"]).To(BeNumerically("~", 0.3, 1e-12))
			Expect(status["tick"]).To(Equal(int64(4)))
			Expect(status["position_count"]).To(Equal(0))
		})

		It("should sample pulse mass into the current input", func() {
			sender.EXPECT().Send(gomock.Any()).AnyTimes()

			Expect(n.Deliver(pulse.Pulse{
				Port: pulse.PortFeedback, Channel: 1,
				Weight: 3, Multiplicity: 2,
			})).To(Succeed())
			Expect(n.Deliver(pulse.Pulse{
				Port: pulse.PortPrediction, Channel: 0,
				Weight: -2, Multiplicity: 1,
			})).To(Succeed())

			Expect(n.Update(0, 0, 1)).To(Succeed())

			fbk, err := n.ReadRecordableVector("current_fbk_input")
			Expect(err).NotTo(HaveOccurred())
			Expect(fbk[0]).To(Equal(0.0))
			Expect(fbk[1]).To(BeNumerically("~", 0.006, 1e-15))

			pred, err := n.ReadRecordableVector("current_pred_input")
			Expect(err).NotTo(HaveOccurred())
			Expect(pred[0]).To(BeNumerically("~", 0.002, 1e-15))

			received, err := n.ReadRecordableVector("fbk_received")
			Expect(err).NotTo(HaveOccurred())
			Expect(received).To(Equal([]float64{0, 1}))
		})

		It("should stay silent without input", func() {
			Expect(n.Update(0, 0, 50)).To(Succeed())

			status := n.GetStatus()
			Expect(status["in_rate"]).To(Equal(0.0))
			Expect(status["out_rate"]).To(Equal(0.0))
			Expect(status["lambda_poisson"]).To(Equal(0.0))
			Expect(status["spike_count_out"]).To(Equal(int64(0)))
			Expect(status["CV_fbk"]).To(Equal(3.0))
			Expect(status["last_spike_time"]).To(Equal(-1.0))
		})

		It("should pad a growing population with zeros", func() {
			Expect(n.SetStatus(map[string]any{
				"current_fbk_input": []float64{7, 8},
			})).To(Succeed())

			Expect(n.SetStatus(map[string]any{"N_fbk": 4})).To(Succeed())

			Expect(n.GetStatus()["current_fbk_input"]).
				To(Equal([]float64{7, 8, 0, 0}))
			Expect(n.GetStatus()["fbk_counts"]).To(Equal([]float64{0, 0, 0, 0}))
		})

		It("should keep the prefix of a shrinking population", func() {
			Expect(n.SetStatus(map[string]any{
				"current_fbk_input": []float64{7, 8},
			})).To(Succeed())

			Expect(n.SetStatus(map[string]any{"N_fbk": 1})).To(Succeed())

			Expect(n.GetStatus()["current_fbk_input"]).To(Equal([]float64{7}))
			Expect(n.HasPort(pulse.PortFeedback, 1)).To(BeFalse())
		})

		It("should use the sentinel CV for an empty population", func() {
			sender.EXPECT().Send(gomock.Any()).AnyTimes()
			Expect(n.SetStatus(map[string]any{"N_fbk": 0})).To(Succeed())

			Expect(n.Update(0, 0, 3)).To(Succeed())

			status := n.GetStatus()
			Expect(status["CV_fbk"]).To(Equal(1e6))
			Expect(status["fbk_counts"]).To(BeEmpty())
			Expect(status["tick"]).To(Equal(int64(3)))
		})

		It("should keep the slice origin on an empty update", func() {
			sender.EXPECT().Send(gomock.Any()).AnyTimes()
			Expect(n.Update(0, 0, 1)).To(Succeed())

			Expect(n.Update(50, 0, 0)).To(Succeed())
			Expect(n.Router().SliceOrigin()).To(Equal(int64(0)))

			Expect(n.Deliver(pulse.Pulse{
				Port: pulse.PortFeedback, Channel: 0,
				Weight: 1, Multiplicity: 1, Offset: 1,
			})).To(Succeed())
			Expect(n.Update(1, 0, 1)).To(Succeed())

			received, err := n.ReadRecordableVector("fbk_received")
			Expect(err).NotTo(HaveOccurred())
			Expect(received).To(Equal([]float64{1, 0}))
		})

		It("should reject pulses for unknown channels", func() {
			err := n.Deliver(pulse.Pulse{
				Port: pulse.PortFeedback, Channel: 5,
				Weight: 1, Multiplicity: 1,
			})

			Expect(err).To(MatchError(pulse.ErrUnknownChannel))
		})

		It("should require contiguous updates", func() {
			Expect(n.Update(0, 0, 5)).To(Succeed())

			Expect(n.Update(10, 0, 5)).To(MatchError(ErrStepOrder))
			Expect(n.Update(0, 0, 5)).To(MatchError(ErrStepOrder))
			Expect(n.Update(5, 0, 5)).To(Succeed())
			Expect(n.Update(0, 10, 12)).To(Succeed())
		})

		It("should raise a hook for every step", func() {
			rec := &hookRecorder{}
			n.AcceptHook(rec)

			Expect(n.Update(0, 0, 3)).To(Succeed())

			done := rec.at(HookPosStepDone)
			Expect(done).To(HaveLen(3))
			Expect(done[2].Item).To(Equal(sim.VTimeInStep(2)))
			Expect(done[2].Detail.(StepRecord).Tick).To(Equal(int64(3)))
		})

		It("should reset on a resolution change", func() {
			rec := &hookRecorder{}
			n.AcceptHook(rec)
			Expect(n.Deliver(pulse.Pulse{
				Port: pulse.PortFeedback, Weight: 1, Multiplicity: 1,
			})).To(Succeed())
			Expect(n.Update(0, 0, 3)).To(Succeed())

			Expect(n.SetResolution(0.2)).To(Succeed())

			status := n.GetStatus()
			Expect(status["tick"]).To(Equal(int64(0)))
			Expect(status["buffer_steps"]).To(Equal(2))
			Expect(status["fbk_counts"]).To(Equal([]float64{0, 0}))
			Expect(status["resolution"]).To(Equal(0.2))
			Expect(n.Spec().NFbk).To(Equal(2))
			Expect(rec.at(HookPosResolutionReset)).To(HaveLen(1))
			Expect(n.Update(0, 0, 1)).To(Succeed())
		})

		It("should keep its state when the resolution does not fit", func() {
			Expect(n.Update(0, 0, 3)).To(Succeed())

			err := n.SetResolution(0.3)

			Expect(err).To(MatchError(sim.ErrStepPrecisionLoss))
			Expect(n.CheckResolution(0.3)).To(MatchError(sim.ErrStepPrecisionLoss))
			Expect(n.CheckResolution(0.2)).To(Succeed())
			Expect(n.Resolution()).To(Equal(sim.Resolution(0.1)))
			Expect(n.GetStatus()["tick"]).To(Equal(int64(3)))
		})

		It("should read recordables", func() {
			Expect(n.RecordableNames()).To(ContainElement("in_rate"))
			Expect(n.VectorRecordableNames()).To(ContainElement("fbk_counts"))

			v, err := n.ReadRecordable("CV_pred")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(0.0))

			_, err = n.ReadRecordable("voltage")
			Expect(err).To(MatchError(ErrUnknownKey))
		})
	})

	Context("with a busy output", func() {
		BeforeEach(func() {
			spec := smallSpec()
			spec.BaseRate = 1e7
			n = MakeBuilder().WithSpec(spec).WithSender(sender).Build("neuron")
		})

		It("should emit only in the open part of each trial", func() {
			var ticks []sim.VTimeInStep
			sender.EXPECT().Send(gomock.Any()).
				DoAndReturn(func(s pulse.Spike) error {
					ticks = append(ticks, s.Step)
					Expect(s.Source).To(Equal("neuron"))
					Expect(int64(s.Step)).To(Equal(s.Lag + 1))
					return nil
				}).
				Times(15)

			Expect(n.Update(0, 0, 30)).To(Succeed())

			Expect(ticks).To(Equal([]sim.VTimeInStep{
				5, 6, 7, 8, 9,
				15, 16, 17, 18, 19,
				25, 26, 27, 28, 29,
			}))
			Expect(n.GetStatus()["last_spike_time"]).
				To(BeNumerically("~", 2.9, 1e-12))
		})

		It("should report sender failures", func() {
			sendErr := errors.New("link down")
			sender.EXPECT().Send(gomock.Any()).Return(sendErr)

			err := n.Update(0, 0, 10)

			Expect(err).To(MatchError(sendErr))
		})
	})

	It("should be reproducible for a given seed", func() {
		spec := smallSpec()
		spec.BaseRate = 2000

		run := func() []int64 {
			c := MakeBuilder().
				WithSpec(spec).
				WithRandSource(rand.NewPCG(3, 4)).
				Build("neuron")

			var counts []int64
			for step := sim.VTimeInStep(0); step < 20; step++ {
				Expect(c.Update(step, 0, 1)).To(Succeed())
				counts = append(counts, c.GetStatus()["spike_count_out"].(int64))
			}

			return counts
		}

		Expect(run()).To(Equal(run()))
	})
})
