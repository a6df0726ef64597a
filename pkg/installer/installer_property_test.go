package installer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/windowsadmins/pcsetup/pkg/catalog"
	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/runner"
)

// outcomePM fails the install of every identifier listed in fail.
type outcomePM struct {
	fail map[string]bool
}

func (p outcomePM) Install(_ context.Context, ids ...string) (runner.Result, error) {
	if p.fail[ids[0]] {
		if len(ids[0])%2 == 0 {
			return runner.Result{ExitCode: -1}, runner.ErrInvocation
		}
		return runner.Result{ExitCode: 1}, nil
	}
	return runner.Result{}, nil
}

// genPlan generates an ordered package list, possibly with duplicates.
func genPlan() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 5)).Map(func(ns []int) []catalog.Item {
		items := make([]catalog.Item, len(ns))
		for i, n := range ns {
			items[i] = catalog.NewItem(fmt.Sprintf("pkg%d.id", n), fmt.Sprintf("Package %d", n))
		}
		return items
	})
}

func TestPropertyBatchInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	dir := t.TempDir()

	properties.Property("installed + failed equals the list length", prop.ForAll(
		func(items []catalog.Item, failMask []bool) bool {
			log := logging.New(nil)
			if err := log.Initialize(dir+"/count.log", logging.Header{}); err != nil {
				return false
			}
			defer log.Close()

			fail := map[string]bool{}
			for i, f := range failMask {
				if f && i < len(items) {
					fail[items[i].Identifier] = true
				}
			}
			inst := New(outcomePM{fail: fail}, log, time.Millisecond)
			pauses := 0
			inst.Sleep = func(time.Duration) { pauses++ }

			b := inst.InstallAll(context.Background(), items)
			return b.Installed+b.Failed == len(items) &&
				len(b.Results) == len(items) &&
				pauses == len(items)
		},
		genPlan(),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("per-item log entries follow input order", prop.ForAll(
		func(items []catalog.Item) bool {
			path := dir + "/order.log"
			log := logging.New(nil)
			if err := log.Initialize(path, logging.Header{}); err != nil {
				return false
			}
			defer log.Close()

			inst := New(outcomePM{}, log, 0)
			inst.Sleep = func(time.Duration) {}
			b := inst.InstallAll(context.Background(), items)

			var announced []string
			for _, e := range entries(t, path) {
				if name, ok := strings.CutPrefix(e, "INFO Installing: "); ok {
					announced = append(announced, name)
				}
			}
			if len(announced) != len(items) {
				return false
			}
			for i, item := range items {
				if announced[i] != item.DisplayName || b.Results[i].Item != item {
					return false
				}
			}
			return true
		},
		genPlan(),
	))

	properties.TestingRun(t)
}
