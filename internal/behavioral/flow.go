package behavioral

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// FlowStep is one destination reached after a target page.
type FlowStep struct {
	NextPage string `json:"next_page"`
	Visitors int64  `json:"visitors"`
}

const maxFlowResults = 10

// Flow reports, for siteID's visitors in [start, end), the pages most
// commonly visited immediately after targetPage (spec §4.9.5). Unlike
// original_source's forward/first_match sequence_next_node call, this
// walks each visitor's ordered pageviews directly in Go and takes the
// page immediately following the first occurrence of targetPage.
func (r *Runner) Flow(ctx context.Context, siteID string, start, end time.Time, targetPage string) ([]FlowStep, error) {
	if targetPage == "" {
		return nil, fmt.Errorf("behavioral: flow requires a non-empty page")
	}
	if !r.enabled {
		return nil, nil
	}

	rows, err := r.fetchEvents(ctx, siteID, start, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, visitorRows := range groupByVisitor(rows) {
		for i, row := range visitorRows {
			if row.EventName != "pageview" || row.Pathname != targetPage {
				continue
			}
			if i+1 < len(visitorRows) && visitorRows[i+1].EventName == "pageview" {
				counts[visitorRows[i+1].Pathname]++
			}
			break
		}
	}

	out := make([]FlowStep, 0, len(counts))
	for page, n := range counts {
		out = append(out, FlowStep{NextPage: page, Visitors: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Visitors != out[j].Visitors {
			return out[i].Visitors > out[j].Visitors
		}
		return out[i].NextPage < out[j].NextPage
	})
	if len(out) > maxFlowResults {
		out = out[:maxFlowResults]
	}
	return out, nil
}
