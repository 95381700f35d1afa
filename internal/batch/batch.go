// Package batch orders resolved page jobs for output and partitions them
// into named print batches.
package batch

import (
	"fmt"
	"sort"

	"github.com/shipdesk-io/labelengine/internal/picklist"
	"github.com/shipdesk-io/labelengine/internal/resolve"
)

// Reserved batch names. Every job lands in FullBatch; jobs whose identifier
// occurs fewer than Threshold times land in SmallBatch instead of a
// dedicated per-identifier batch.
const (
	FullBatch  = "full"
	SmallBatch = "small"

	// NoSKUGroup is the group key for jobs without a canonical identifier.
	NoSKUGroup = "NO_SKU"

	DefaultThreshold = 5
)

// Params controls partitioning. Zero-value SortMode falls back to the
// quantity-descending default.
type Params struct {
	Threshold int
	SortMode  picklist.SortMode
}

// Validate rejects unusable parameters before any work happens.
func (p Params) Validate() error {
	if p.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", p.Threshold)
	}
	if p.SortMode != "" && !p.SortMode.Valid() {
		return fmt.Errorf("unknown sort mode %q", p.SortMode)
	}
	return nil
}

// Assignment is the partition result. FullOrder is the complete output
// ordering; Boundaries lists positions in FullOrder where the group key
// changes, consumed by the rendering collaborator to insert separator
// pages. Batches holds the per-name job lists, Names their first-seen
// order.
type Assignment struct {
	FullOrder  []resolve.PageJob
	Boundaries []int
	Batches    map[string][]resolve.PageJob
	Names      []string
}

// Batch returns the jobs assigned to a batch name.
func (a *Assignment) Batch(name string) []resolve.PageJob {
	return a.Batches[name]
}

func (a *Assignment) append(name string, job resolve.PageJob) {
	if _, ok := a.Batches[name]; !ok {
		a.Names = append(a.Names, name)
	}
	a.Batches[name] = append(a.Batches[name], job)
}

// GroupKey returns the group a job sorts under.
func GroupKey(job resolve.PageJob) string {
	if job.CanonicalSKU == "" {
		return NoSKUGroup
	}
	return job.CanonicalSKU
}

// Partition orders jobs for output and splits them into named batches.
//
// Jobs with an identifier are sorted by identifier (alphabetical mode) or
// by total identifier quantity descending (default mode), page index
// breaking ties; jobs without an identifier keep their relative order and
// trail the sorted block. Occurrence counts are taken over the input list
// before sorting, so batch routing is independent of the sort mode.
func Partition(jobs []resolve.PageJob, params Params) (*Assignment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	totals := make(map[string]int)
	for _, job := range jobs {
		if job.CanonicalSKU == "" {
			continue
		}
		counts[job.CanonicalSKU]++
		totals[job.CanonicalSKU] += job.QuantityValue()
	}

	withSKU := make([]resolve.PageJob, 0, len(jobs))
	withoutSKU := make([]resolve.PageJob, 0)
	for _, job := range jobs {
		if job.CanonicalSKU == "" {
			withoutSKU = append(withoutSKU, job)
		} else {
			withSKU = append(withSKU, job)
		}
	}

	switch params.SortMode {
	case picklist.SortAlpha:
		sort.SliceStable(withSKU, func(i, j int) bool {
			if withSKU[i].CanonicalSKU != withSKU[j].CanonicalSKU {
				return withSKU[i].CanonicalSKU < withSKU[j].CanonicalSKU
			}
			return withSKU[i].PageIndex < withSKU[j].PageIndex
		})
	default:
		sort.SliceStable(withSKU, func(i, j int) bool {
			ti, tj := totals[withSKU[i].CanonicalSKU], totals[withSKU[j].CanonicalSKU]
			if ti != tj {
				return ti > tj
			}
			if withSKU[i].CanonicalSKU != withSKU[j].CanonicalSKU {
				return withSKU[i].CanonicalSKU < withSKU[j].CanonicalSKU
			}
			return withSKU[i].PageIndex < withSKU[j].PageIndex
		})
	}

	assignment := &Assignment{
		FullOrder: append(withSKU, withoutSKU...),
		Batches:   make(map[string][]resolve.PageJob),
	}

	previousGroup := ""
	for position, job := range assignment.FullOrder {
		group := GroupKey(job)
		if position > 0 && group != previousGroup {
			assignment.Boundaries = append(assignment.Boundaries, position)
		}
		previousGroup = group

		assignment.append(FullBatch, job)
		if job.CanonicalSKU != "" && counts[job.CanonicalSKU] >= params.Threshold {
			assignment.append(job.CanonicalSKU, job)
		} else {
			assignment.append(SmallBatch, job)
		}
	}

	return assignment, nil
}

// Verify checks the partition invariant: every job of the full batch is in
// exactly one of the small or per-identifier batches.
func (a *Assignment) Verify() error {
	partitioned := 0
	for name, jobs := range a.Batches {
		if name == FullBatch {
			continue
		}
		partitioned += len(jobs)
	}
	if full := len(a.Batches[FullBatch]); partitioned != full {
		return fmt.Errorf("partition mismatch: %d jobs across batches, %d in full set", partitioned, full)
	}
	return nil
}
