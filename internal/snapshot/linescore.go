package snapshot

// LineScore is the shrunk line score: the inning grid, run totals and the
// count for the current plate appearance.
type LineScore struct {
	CurrentInning int       `json:"currentInning,omitempty"`
	InningHalf    string    `json:"inningHalf,omitempty"`
	Balls         int       `json:"balls"`
	Strikes       int       `json:"strikes"`
	Outs          int       `json:"outs"`
	Innings       []Inning  `json:"innings"`
	Teams         LineTeams `json:"teams"`
}

type Inning struct {
	Num  int        `json:"num"`
	Home InningLine `json:"home"`
	Away InningLine `json:"away"`
}

// InningLine is one side of one inning. Runs is nil for a half not yet played.
type InningLine struct {
	Runs   *int `json:"runs,omitempty"`
	Hits   int  `json:"hits"`
	Errors int  `json:"errors"`
}

type LineTeams struct {
	Home LineTotals `json:"home"`
	Away LineTotals `json:"away"`
}

type LineTotals struct {
	Runs   int `json:"runs"`
	Hits   int `json:"hits"`
	Errors int `json:"errors"`
}

func (*LineScore) Kind() Kind { return KindLineScore }

func (l *LineScore) Shrink() {
	if l.Innings == nil {
		l.Innings = []Inning{}
	}
}

// DecodeLineScore decodes a raw or stored line score.
func DecodeLineScore(raw []byte) (*LineScore, error) {
	var l LineScore
	if err := decodeInto(KindLineScore, raw, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
