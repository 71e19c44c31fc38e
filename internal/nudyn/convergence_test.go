package nudyn

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("correlator convergence", func() {
	var (
		rng *rand.Rand
		acc *Accumulator
	)

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(2024))
		var err error
		acc, err = NewAccumulator(singleBinLayout(2))
		Expect(err).NotTo(HaveOccurred())
	})

	derive := func() *DerivedCell {
		return NewEngine(acc.Table(), 0).DeriveAll(acc).Cell(0, 0)
	}

	Context("independent Poisson species", func() {
		BeforeEach(func() {
			for i := 0; i < 200000; i++ {
				Expect(acc.Fill(0, 0, countsOf(poisson(rng, 6), poisson(rng, 6)))).To(Succeed())
			}
		})

		It("drives every pair correlator towards zero", func() {
			d := derive()
			Expect(d.Correlator(0, 1)).To(BeNumerically("~", 0, 0.01))
			Expect(d.Correlator(0, 0)).To(BeNumerically("~", 0, 0.01))
			Expect(d.Correlator(1, 1)).To(BeNumerically("~", 0, 0.01))
			Expect(d.NuDynOf(0, 1)).To(BeNumerically("~", 0, 0.02))
		})

		It("drives the higher-order correlators towards zero", func() {
			d := derive()
			Expect(d.Correlator(0, 0, 1)).To(BeNumerically("~", 0, 0.02))
			Expect(d.Correlator(0, 1, 1, 1)).To(BeNumerically("~", 0, 0.05))
		})
	})

	Context("perfectly anti-correlated species", func() {
		const total = 20

		BeforeEach(func() {
			for i := 0; i < 100000; i++ {
				nA := binomial(rng, total, 0.5)
				Expect(acc.Fill(0, 0, countsOf(nA, total-nA))).To(Succeed())
			}
		})

		It("converges to R2 = -1/total", func() {
			Expect(derive().Correlator(0, 1)).To(BeNumerically("~", -1.0/total, 0.002))
		})

		It("cancels nu-dynamic for a binomial split", func() {
			d := derive()
			Expect(d.Correlator(0, 0)).To(BeNumerically("~", -1.0/total, 0.002))
			Expect(d.NuDynOf(0, 1)).To(Equal(d.NuDynOf(1, 0)))
			Expect(d.NuDynOf(0, 1)).To(BeNumerically("~", 0, 0.005))
		})
	})

	Context("an empty species", func() {
		It("reports zero instead of NaN", func() {
			for i := 0; i < 100; i++ {
				Expect(acc.Fill(0, 0, countsOf(0, poisson(rng, 3)))).To(Succeed())
			}
			d := derive()
			Expect(d.Correlator(0, 1)).To(BeZero())
			Expect(d.Correlator(0, 0, 0, 1)).To(BeZero())
		})
	})
})
