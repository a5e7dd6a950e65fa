package ipa_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/ipa/internal/testworld"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/ipa"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

func TestIPASuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IPA Circuit Suite")
}

// runIPAForSuite is runIPA's Gomega-only twin: Ginkgo's It blocks don't
// carry a *testing.T, so failures here go through Expect instead of
// testify's require.
func runIPAForSuite(rows []fixtureRow, cfg ipa.Config) []reconstructed {
	zero := ff.NewFp32BitPrime(0)
	sharedByRole := shareFixture(zero, rows)

	w, err := testworld.New("ipa-suite")
	Expect(err).NotTo(HaveOccurred())

	results, err := testworld.RunEach(w, func(mc mpc.Context) ([]aggregateOutput, error) {
		out, err := ipa.Run(context.Background(), mc, sharedByRole[mc.Role()], cfg, zero)
		if err != nil {
			return nil, err
		}
		outRows := make([]aggregateOutput, len(out))
		for i, r := range out {
			outRows[i] = aggregateOutput{BreakdownKey: r.BreakdownKey, Credit: r.Credit}
		}
		return outRows, nil
	})
	Expect(err).NotTo(HaveOccurred())

	n := cfg.MaxBreakdownKey
	out := make([]reconstructed, n)
	for k := 0; k < n; k++ {
		bk := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp32BitPrime]{
			party.H0: results[party.H0][k].BreakdownKey,
			party.H1: results[party.H1][k].BreakdownKey,
			party.H2: results[party.H2][k].BreakdownKey,
		})
		credit := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp32BitPrime]{
			party.H0: results[party.H0][k].Credit,
			party.H1: results[party.H1][k].Credit,
			party.H2: results[party.H2][k].Credit,
		})
		out[k] = reconstructed{BreakdownKey: bk.AsUint64(), Credit: credit.AsUint64()}
	}
	return out
}

var _ = Describe("The end-to-end IPA circuit", func() {
	var cfg ipa.Config

	BeforeEach(func() {
		cfg = ipa.Config{PerUserCreditCap: 3, MaxBreakdownKey: 3, NumMultiBits: 3}
	})

	When("given Scenario B's five-row fixture", func() {
		It("attributes last-touch credit onto the nearest preceding source row per user", func() {
			got := runIPAForSuite(simpleFixture, cfg)
			Expect(got).To(Equal([]reconstructed{
				{BreakdownKey: 0, Credit: 0},
				{BreakdownKey: 1, Credit: 2},
				{BreakdownKey: 2, Credit: 3},
			}))
		})
	})

	When("given no input rows at all", func() {
		It("still returns exactly max_breakdown_key rows, all zero", func() {
			got := runIPAForSuite(nil, cfg)
			Expect(got).To(HaveLen(cfg.MaxBreakdownKey))
			for _, row := range got {
				Expect(row.Credit).To(BeZero())
			}
		})
	})

	When("a single user's trigger value stays under the per-user cap", func() {
		It("passes the full value through uncapped", func() {
			rows := []fixtureRow{
				{matchKey: 555, isTriggerBit: 0, breakdownKey: 1, triggerValue: 0},
				{matchKey: 555, isTriggerBit: 1, breakdownKey: 0, triggerValue: 2},
			}
			belowCapCfg := ipa.Config{PerUserCreditCap: 10, MaxBreakdownKey: 2, NumMultiBits: 3}
			got := runIPAForSuite(rows, belowCapCfg)
			Expect(got).To(Equal([]reconstructed{
				{BreakdownKey: 0, Credit: 0},
				{BreakdownKey: 1, Credit: 2},
			}))
		})
	})
})
