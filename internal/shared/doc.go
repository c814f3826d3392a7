// Package shared holds code used by more than one package that belongs to
// none of them.
//
// The testutil subpackage provides test helpers:
//
//   - WritePriceWorkbook builds an input spreadsheet of monthly fuel prices
//     that straddles the default cutoff and yields a full-rank design
//   - NewTestLogger returns a logger whose records can be inspected
//
// Example usage:
//
//	func TestRun(t *testing.T) {
//	    input := testutil.WritePriceWorkbook(t, t.TempDir(), testutil.PriceHeader, 30)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	    assert.Len(t, logs.Find("step_complete"), 6)
//	}
package shared
