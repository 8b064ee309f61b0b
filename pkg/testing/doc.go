// Package testing provides a test harness for reactron components.
//
// # Quick Start
//
// Create a tester, render an element, and make assertions on the resulting
// HTML document:
//
//	func TestCounter(t *testing.T) {
//	    tester := rtest.NewTesterWithT(t)
//	    tester.Render(core.Func(Counter, nil))
//
//	    tester.Click(rtest.ByClass("increment"))
//
//	    if got := tester.Find(rtest.ByClass("count")).Text(); got != "1" {
//	        t.Errorf("count = %q, want 1", got)
//	    }
//	}
//
// Event helpers dispatch through the document and settle the engine, so the
// next assertion observes the re-rendered tree.
//
// # Snapshot Testing
//
// Capture and compare the committed fiber tree and its HTML:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	REACTRON_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Time Slicing
//
// The tester's scheduler runs on a FakeClock. Use SetMaxSteps or the clock's
// auto-step to force a render across several frames.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import rtest "github.com/go-drift/reactron/pkg/testing"
package testing
