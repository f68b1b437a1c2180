package heuristics

import (
	"fmt"
	"testing"
	"time"
)

// A merchant receiving steady daily volume from a wide sender base
// qualifies as legitimate.
func TestMerchantRule(t *testing.T) {
	var rows []RawRecord
	idx := 0
	for day := 0; day < 30; day++ {
		perDay := 100 + day%7 - 3 // daily counts in [97, 103]
		for i := 0; i < perDay; i++ {
			sender := fmt.Sprintf("ACC_%03d", (idx*7+day)%200)
			rows = append(rows, rawTx(
				fmt.Sprintf("TX_%d", idx), sender, "MERCHANT_M", 25,
				testBase.Add(time.Duration(day)*24*time.Hour+time.Duration(i)*time.Minute),
			))
			idx++
		}
	}
	legit := IdentifyLegitimateEntities(tableOf(rows), DefaultConfig())
	if !legit.Contains("MERCHANT_M") {
		t.Error("stable merchant should be legitimate")
	}
}

// A sink that concentrates its entire sender base into a single day fails
// the stability condition: one daily bucket has an undefined deviation.
func TestMerchantRuleRejectsSingleDayConcentration(t *testing.T) {
	rows := fanInRows("SRCE", "SINK_S", 50, testDawn, 20*time.Minute)
	legit := IdentifyLegitimateEntities(tableOf(rows), DefaultConfig())
	if legit.Contains("SINK_S") {
		t.Error("single-day fan-in sink must not be classified legitimate")
	}
}

// Too few distinct senders disqualifies the merchant rule regardless of
// stability.
func TestMerchantRuleRequiresSenderBase(t *testing.T) {
	var rows []RawRecord
	for day := 0; day < 30; day++ {
		for i := 0; i < 10; i++ {
			rows = append(rows, rawTx(
				fmt.Sprintf("TX_%d_%d", day, i),
				fmt.Sprintf("S_%d", i), "SMALL_SHOP", 10,
				testBase.Add(time.Duration(day)*24*time.Hour+time.Duration(i)*time.Minute),
			))
		}
	}
	legit := IdentifyLegitimateEntities(tableOf(rows), DefaultConfig())
	if legit.Contains("SMALL_SHOP") {
		t.Error("10 distinct senders is below the hub threshold")
	}
}

func TestPayrollRule(t *testing.T) {
	var rows []RawRecord
	payday := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	for m := 0; m < 12; m++ {
		amount := 2990.0
		if m%2 == 1 {
			amount = 3010.0
		}
		rows = append(rows, rawTx(fmt.Sprintf("TX_PAY_%d", m), "EMPLOYER_E", "WORKER_W", amount, payday))
		payday = payday.AddDate(0, 1, 0)
	}
	legit := IdentifyLegitimateEntities(tableOf(rows), DefaultConfig())
	if !legit.Contains("WORKER_W") {
		t.Error("monthly salary receiver should be legitimate")
	}
	if legit.Contains("EMPLOYER_E") {
		t.Error("the paying side is not covered by the payroll rule")
	}
}

func TestPayrollRuleRejectsUnstableAmounts(t *testing.T) {
	var rows []RawRecord
	payday := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	for m := 0; m < 12; m++ {
		rows = append(rows, rawTx(fmt.Sprintf("TX_PAY_%d", m), "E", "W", 1000+float64(m)*500, payday))
		payday = payday.AddDate(0, 1, 0)
	}
	legit := IdentifyLegitimateEntities(tableOf(rows), DefaultConfig())
	if legit.Contains("W") {
		t.Error("wildly varying amounts must fail the payroll amount check")
	}
}

func TestPayrollRuleRejectsIrregularCadence(t *testing.T) {
	rows := []RawRecord{
		rawTx("1", "E", "W", 3000, testBase),
		rawTx("2", "E", "W", 3000, testBase.Add(2*24*time.Hour)), // 2-day gap
		rawTx("3", "E", "W", 3000, testBase.Add(32*24*time.Hour)),
	}
	legit := IdentifyLegitimateEntities(tableOf(rows), DefaultConfig())
	if legit.Contains("W") {
		t.Error("a gap outside [25, 35] days must fail the cadence check")
	}
}
