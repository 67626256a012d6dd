package dto

import (
	"time"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/constants"
)

type AcceptedResponse struct {
	Accepted bool   `json:"accepted"`
	Date     string `json:"date,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Force    bool   `json:"force"`
}

func NewRunOnceAccepted(req *RunOnceRequest) AcceptedResponse {
	return AcceptedResponse{Accepted: true, Date: req.Date.Format(constants.DateLayout), Force: req.Force}
}

func NewBackfillAccepted(req *BackfillRequest) AcceptedResponse {
	return AcceptedResponse{
		Accepted: true,
		Start:    req.Start.Format(constants.DateLayout),
		End:      req.End.Format(constants.DateLayout),
		Force:    req.Force,
	}
}

type CacheKindResponse struct {
	Kind         string `json:"kind"`
	Count        int64  `json:"count"`
	LatestUpdate string `json:"latest_update,omitempty"`
	PayloadBytes int64  `json:"payload_bytes"`
}

type CacheSummaryResponse struct {
	Kinds []CacheKindResponse `json:"kinds"`
	Total int64               `json:"total"`
}

func NewCacheSummaryResponse(sum []cache.KindSummary) CacheSummaryResponse {
	resp := CacheSummaryResponse{Kinds: make([]CacheKindResponse, 0, len(sum))}
	for _, s := range sum {
		k := CacheKindResponse{Kind: string(s.Kind), Count: s.Count, PayloadBytes: s.PayloadBytes}
		if s.LatestUpdate != nil {
			k.LatestUpdate = s.LatestUpdate.UTC().Format(time.RFC3339)
		}
		resp.Kinds = append(resp.Kinds, k)
		resp.Total += s.Count
	}
	return resp
}

type ClearCacheResponse struct {
	Kind    string `json:"kind"`
	Removed int64  `json:"removed"`
}

type DiagnosticsResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

func NewDiagnosticsResponse(lines []string) DiagnosticsResponse {
	if lines == nil {
		lines = []string{}
	}
	return DiagnosticsResponse{Lines: lines, Count: len(lines)}
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
